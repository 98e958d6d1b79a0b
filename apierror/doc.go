// Package apierror classifies transport-level failures into a closed set
// of domain error kinds.
//
// The package provides three things: a kind-tagged Error type, a pure
// Translate function that maps a transport-shaped failure (HTTP status,
// headers, body) onto exactly one kind, and a ToResponse renderer that
// produces the structured shape callers are allowed to see. Classification
// is deterministic: the same input shape always yields the same kind.
package apierror
