package domain

import "errors"

var (
	ErrKeyNotFound      = errors.New("key not found")
	ErrNoIdentity       = errors.New("identity not resolved")
	ErrInvalidThreadKey = errors.New("invalid thread key")
	ErrInvalidMessage   = errors.New("invalid message")
	ErrEmptyContent     = errors.New("message content is empty")
	ErrSendFailed       = errors.New("send failed")
	ErrFetchFailed      = errors.New("fetch failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUnknownEvent     = errors.New("unknown live event")
	ErrMalformedEvent   = errors.New("malformed live event")
)
