package apierror

// Response is the structured, user-facing rendering of a failure. It is the
// only error shape that crosses the outer boundary; raw internal errors and
// stack traces never do.
type Response struct {
	IsError bool           `json:"isError"`
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ToResponse renders any error into a Response. Unclassified errors are
// translated first, so the output always carries a kind-derived code.
func ToResponse(err error) Response {
	if err == nil {
		return Response{}
	}

	ae := Translate(err)

	code := ae.Code
	if code == "" {
		code = ae.Kind.String()
	}

	return Response{
		IsError: true,
		Message: ae.Message,
		Code:    code,
		Details: ae.Details,
	}
}
