package services

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to handlers. Store-level failures are wrapped
// in ErrStoreUnavailable so raw driver errors never reach a client.
var (
	ErrNoActiveRound    = errors.New("no active round")
	ErrNotJoined        = errors.New("must join round first")
	ErrInvalidAddress   = errors.New("invalid wallet address")
	ErrInvalidScore     = errors.New("score must be a non-negative integer")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// AlreadyPlayedError rejects a duplicate score submission and carries
// the stored score so the caller can show it without another read.
type AlreadyPlayedError struct {
	Score int
}

func (e *AlreadyPlayedError) Error() string {
	return "already played this round"
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
