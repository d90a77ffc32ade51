package model

import "errors"

// Sentinel kinds for record codec errors.
var (
	ErrEncodeRecord    = errors.New("encode record failed")
	ErrMalformedRecord = errors.New("malformed record")
)
