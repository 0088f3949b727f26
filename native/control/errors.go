package control

import coreerrors "mosaicchain/core/errors"

var (
	errNotInitialised = coreerrors.New(coreerrors.KindInvariantViolation, "control: registry not initialised")

	ErrNotStarted     = coreerrors.New(coreerrors.KindNotFound, "control: community not started")
	ErrAlreadyStarted = coreerrors.New(coreerrors.KindStateConflict, "control: community already started")
	ErrInvalidAccount = coreerrors.New(coreerrors.KindValidation, "control: account required")
	ErrURLTooLong     = coreerrors.New(coreerrors.KindValidation, "control: url too long")
	ErrInvalidPct     = coreerrors.New(coreerrors.KindValidation, "control: vote percentage must be a positive multiple of 10%")
	ErrLeaderNotFound = coreerrors.New(coreerrors.KindNotFound, "control: leader not found")
	ErrVoteNotFound   = coreerrors.New(coreerrors.KindNotFound, "control: no vote for this leader")
	ErrNothingToClaim = coreerrors.New(coreerrors.KindNotFound, "control: nothing to claim")
	ErrLeaderInactive = coreerrors.New(coreerrors.KindStateConflict, "control: leader not active")
	ErrAlreadyVoted   = coreerrors.New(coreerrors.KindStateConflict, "control: already voted")
	ErrTooManyVotes   = coreerrors.New(coreerrors.KindStateConflict, "control: all allowed votes already cast")
	ErrPowerExhausted = coreerrors.New(coreerrors.KindStateConflict, "control: voting power exhausted")
	ErrHasVotes       = coreerrors.New(coreerrors.KindStateConflict, "control: leader still has votes")
	ErrHasUnclaimed   = coreerrors.New(coreerrors.KindStateConflict, "control: leader has unclaimed reward")
	ErrNoChanges      = coreerrors.New(coreerrors.KindStateConflict, "control: nothing changes")
)
