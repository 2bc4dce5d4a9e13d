package websocket

import "errors"

var (
	ErrEncodeFailed = errors.New("failed to encode stream value")
	ErrWriteFailed  = errors.New("failed to write websocket frame")
)
