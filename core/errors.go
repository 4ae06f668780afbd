package core

import "errors"

// ErrRoutingExhausted is returned when a graph execution reaches its step
// ceiling before routing to termination. The turn ends; committed session
// state is unaffected.
var ErrRoutingExhausted = errors.New("recursion limit reached before routing completed")

// AuthRequiredMarker prefixes response text that encodes a pending
// authorization. The engine and transport layers match on this literal.
const AuthRequiredMarker = "AUTHORIZATION_REQUIRED:"
