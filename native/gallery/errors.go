package gallery

import coreerrors "mosaicchain/core/errors"

var (
	errNilState = coreerrors.New(coreerrors.KindInvariantViolation, "gallery engine: state not configured")
	errNoLedger = coreerrors.New(coreerrors.KindInvariantViolation, "gallery engine: ledger not configured")

	ErrInvalidAccount      = coreerrors.New(coreerrors.KindValidation, "gallery: invalid account")
	ErrInvalidAmount       = coreerrors.New(coreerrors.KindValidation, "gallery: invalid amount")
	ErrInvalidRoyalty      = coreerrors.New(coreerrors.KindValidation, "gallery: incorrect royalty")
	ErrTooManyProviders    = coreerrors.New(coreerrors.KindValidation, "gallery: too many providers")
	ErrInclusionTooSmall   = coreerrors.New(coreerrors.KindValidation, "gallery: points are not enough for inclusion")
	ErrCostTooSmall        = coreerrors.New(coreerrors.KindValidation, "gallery: stake is worth less than the minimum mosaic cost")
	ErrSelfProvision       = coreerrors.New(coreerrors.KindValidation, "gallery: grantor == recipient")
	ErrInvalidFee          = coreerrors.New(coreerrors.KindValidation, "gallery: fee above 100%")
	ErrTooMuchAdvice       = coreerrors.New(coreerrors.KindValidation, "gallery: a surfeit of advice")
	ErrNoChanges           = coreerrors.New(coreerrors.KindValidation, "gallery: no changes in favorites")
	ErrNotLeader           = coreerrors.New(coreerrors.KindValidation, "gallery: account is not a leader")
	ErrSelfVote            = coreerrors.New(coreerrors.KindValidation, "gallery: cannot vote for own mosaic")
	ErrInvalidProvision    = coreerrors.New(coreerrors.KindValidation, "gallery: provision total below frozen points")
	ErrMosaicNotFound      = coreerrors.New(coreerrors.KindNotFound, "gallery: mosaic doesn't exist")
	ErrNothingToClaim      = coreerrors.New(coreerrors.KindNotFound, "gallery: nothing to claim")
	ErrNoProvision         = coreerrors.New(coreerrors.KindNotFound, "gallery: no points provided")
	ErrBalanceNotFound     = coreerrors.New(coreerrors.KindNotFound, "gallery: balance doesn't exist")
	ErrStatNotFound        = coreerrors.New(coreerrors.KindNotFound, "gallery: community gallery not initialised")
	ErrMosaicExists        = coreerrors.New(coreerrors.KindStateConflict, "gallery: mosaic already exists")
	ErrGalleryExists       = coreerrors.New(coreerrors.KindStateConflict, "gallery: community gallery already initialised")
	ErrCollectionClosed    = coreerrors.New(coreerrors.KindStateConflict, "gallery: collection period is over")
	ErrMosaicBanned        = coreerrors.New(coreerrors.KindStateConflict, "gallery: mosaic banned")
	ErrPrematureClaim      = coreerrors.New(coreerrors.KindStateConflict, "gallery: moderation period isn't over yet")
	ErrGemTypeMismatch     = coreerrors.New(coreerrors.KindStateConflict, "gallery: gem type mismatch")
	ErrRefillDisabled      = coreerrors.New(coreerrors.KindStateConflict, "gallery: can't refill the gem")
	ErrAlreadySlapped      = coreerrors.New(coreerrors.KindStateConflict, "gallery: leader already slapped the mosaic")
	ErrProvisionInUse      = coreerrors.New(coreerrors.KindStateConflict, "gallery: provided points are frozen")
	ErrOverdrawn           = coreerrors.New(coreerrors.KindInsufficientFunds, "gallery: overdrawn balance")
	ErrNotEnoughProvided   = coreerrors.New(coreerrors.KindInsufficientFunds, "gallery: not enough provided points")
	ErrInvalidFreezeState  = coreerrors.New(coreerrors.KindInvariantViolation, "gallery: invalid value of frozen points")
	ErrIssuerBalanceAbsent = coreerrors.New(coreerrors.KindInvariantViolation, "gallery: the issuer's balance doesn't exist")
)
