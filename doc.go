// Package apiward is the resilience layer shared by every outbound call a
// client library makes to a remote API. It classifies failures, recovers
// the transient ones, deduplicates concurrent identical work, and caches
// results with bounded memory.
//
// The package composes the subpackages into one Client:
//
//	client, err := apiward.New(apiward.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.Execute(ctx, func(ctx context.Context) (any, error) {
//	    return fetchOrders(ctx, client.HTTPSClient())
//	})
//
// Remote operations fail with transport-shaped errors (see
// apierror.HTTPError); the client never performs network I/O itself.
package apiward
