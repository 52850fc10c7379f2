// internal/websocket/errors.go
package websocket

import "errors"

var (
	ErrHubClosed   = errors.New("websocket hub is closed")
	ErrNoUserID    = errors.New("websocket client has no user id")
	ErrUnsupported = errors.New("unsupported message type")
)
