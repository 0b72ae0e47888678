package engine

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers match the two category sentinels with errors.Is;
// the specific errors below wrap them so messages stay precise. NotFound is
// store.ErrNotFound, surfaced unchanged. Canvas and vote write races are
// resolved by last-write-wins and never raise a conflict error.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidOperation = errors.New("invalid operation")
)

var (
	ErrNotOwner        = fmt.Errorf("caller is not the room owner: %w", ErrUnauthorized)
	ErrWrongPassword   = fmt.Errorf("wrong room password: %w", ErrUnauthorized)
	ErrSelfKick        = fmt.Errorf("cannot kick yourself: %w", ErrInvalidOperation)
	ErrKickOwner       = fmt.Errorf("cannot kick the room owner: %w", ErrInvalidOperation)
	ErrSelfTransfer    = fmt.Errorf("cannot transfer ownership to yourself: %w", ErrInvalidOperation)
	ErrNotAMember      = fmt.Errorf("target is not a member of this room: %w", ErrInvalidOperation)
	ErrEmptyRoomName   = fmt.Errorf("room name must not be empty: %w", ErrInvalidOperation)
	ErrEmptyMemberName = fmt.Errorf("member name must not be empty: %w", ErrInvalidOperation)
	ErrObserverVote    = fmt.Errorf("observers cannot vote: %w", ErrInvalidOperation)
)
