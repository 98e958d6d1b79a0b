// Package observe provides the structured logger shared by the resilience
// components.
//
// The logger writes one JSON object per line to an injectable writer and is
// level-gated. Components accept a Logger at construction time; Nop is the
// default when none is supplied, so logging never becomes hidden global
// state.
package observe
