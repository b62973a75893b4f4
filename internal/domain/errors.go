package domain

import "errors"

var (
	ErrNotFound                = errors.New("record not found")
	ErrUnknownCollection       = errors.New("unknown collection")
	ErrStorageUnavailable      = errors.New("storage unavailable")
	ErrIllegalTransition       = errors.New("illegal status transition")
	ErrAllEndpointsUnreachable = errors.New("all endpoints unreachable")
)
