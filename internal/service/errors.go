package service

import "errors"

// Write paths reject with these; read paths degrade to empty results instead
// so a client polling for data it lost access to sees nothing rather than an
// error. NotFound is deliberately indistinguishable from Unauthorized on
// conversation reads, to avoid leaking which conversations exist.
var (
	ErrUnauthenticated  = errors.New("not authenticated")
	ErrUnauthorized     = errors.New("not a participant of this conversation")
	ErrNotFound         = errors.New("not found")
	ErrSelfConversation = errors.New("cannot start a conversation with yourself")
)
