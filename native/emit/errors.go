package emit

import coreerrors "mosaicchain/core/errors"

var (
	errNilState = coreerrors.New(coreerrors.KindInvariantViolation, "emit: state not configured")
	errNoLedger = coreerrors.New(coreerrors.KindInvariantViolation, "emit: ledger or receivers not configured")

	ErrStatNotFound = coreerrors.New(coreerrors.KindNotFound, "emit: emitter not created for community")
	ErrStatExists   = coreerrors.New(coreerrors.KindStateConflict, "emit: emitter already exists")
	ErrUntimely     = coreerrors.New(coreerrors.KindStateConflict, "emit: reward period has not elapsed")
)
