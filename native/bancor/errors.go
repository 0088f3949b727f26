package bancor

import coreerrors "mosaicchain/core/errors"

var (
	ErrInvalidQuantity = coreerrors.New(coreerrors.KindValidation, "bancor: invalid quantity")
	ErrInvalidCurve    = coreerrors.New(coreerrors.KindValidation, "bancor: invalid curve parameters")
	ErrNoReserve       = coreerrors.New(coreerrors.KindStateConflict, "bancor: no reserve")
	ErrOverflow        = coreerrors.New(coreerrors.KindOverflow, "bancor: amount overflow")
	ErrDivisionByZero  = coreerrors.New(coreerrors.KindInvariantViolation, "bancor: division by zero")
)
