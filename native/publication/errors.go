package publication

import coreerrors "mosaicchain/core/errors"

var (
	errNilState = coreerrors.New(coreerrors.KindInvariantViolation, "publication: state not configured")
	errNoDeps   = coreerrors.New(coreerrors.KindInvariantViolation, "publication: gallery or ledger not configured")

	ErrInvalidPermlink = coreerrors.New(coreerrors.KindValidation, "publication: invalid permlink")
	ErrInvalidAccount  = coreerrors.New(coreerrors.KindValidation, "publication: author required")
	ErrHeaderTooLong   = coreerrors.New(coreerrors.KindValidation, "publication: header too long")
	ErrEmptyBody       = coreerrors.New(coreerrors.KindValidation, "publication: body is empty")
	ErrInvalidWeight   = coreerrors.New(coreerrors.KindValidation, "publication: weight must be within (0, 100%]")
	ErrSelfVote        = coreerrors.New(coreerrors.KindValidation, "publication: author can't vote for own message")
	ErrNothingToStake  = coreerrors.New(coreerrors.KindInsufficientFunds, "publication: no points available to stake")
	ErrMessageExists   = coreerrors.New(coreerrors.KindStateConflict, "publication: message already exists")
	ErrTooDeep         = coreerrors.New(coreerrors.KindStateConflict, "publication: reply nested too deep")
	ErrMessageNotFound = coreerrors.New(coreerrors.KindNotFound, "publication: message not found")
	ErrParentNotFound  = coreerrors.New(coreerrors.KindNotFound, "publication: parent message not found")
	ErrVoteNotFound    = coreerrors.New(coreerrors.KindNotFound, "publication: vote doesn't exist")
)
