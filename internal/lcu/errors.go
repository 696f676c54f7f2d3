package lcu

import "errors"

var ErrGatewayUnavailable = errors.New("no connection to the game client")
var ErrTransport = errors.New("game client request failed")
var ErrParse = errors.New("unexpected game client response")

// ErrNotFound marks a 404 from the game client: the resource genuinely
// isn't there, as opposed to the request not getting through. Always
// wrapped together with ErrTransport.
var ErrNotFound = errors.New("not present on the game client")
