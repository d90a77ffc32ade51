package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrBadChatID  = errors.New("chat id must be a non-zero integer")
)
