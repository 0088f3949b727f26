package point

import coreerrors "mosaicchain/core/errors"

var (
	errNilState = coreerrors.New(coreerrors.KindInvariantViolation, "point engine: state not configured")

	ErrInvalidSymbol      = coreerrors.New(coreerrors.KindValidation, "point: invalid symbol")
	ErrInvalidAccount     = coreerrors.New(coreerrors.KindValidation, "point: invalid account")
	ErrInvalidAmount      = coreerrors.New(coreerrors.KindValidation, "point: amount must be positive")
	ErrSelfTransfer       = coreerrors.New(coreerrors.KindValidation, "point: cannot transfer to self")
	ErrCurrencyExists     = coreerrors.New(coreerrors.KindStateConflict, "point: currency already exists")
	ErrIssuerTaken        = coreerrors.New(coreerrors.KindStateConflict, "point: issuer already has a point")
	ErrCurrencyNotFound   = coreerrors.New(coreerrors.KindNotFound, "point: currency does not exist")
	ErrBalanceNotFound    = coreerrors.New(coreerrors.KindNotFound, "point: balance does not exist")
	ErrBalanceNotEmpty    = coreerrors.New(coreerrors.KindStateConflict, "point: balance is not zero")
	ErrIssuerCannotClose  = coreerrors.New(coreerrors.KindStateConflict, "point: issuer can't close")
	ErrOverdrawn          = coreerrors.New(coreerrors.KindInsufficientFunds, "point: overdrawn balance")
	ErrNoReserve          = coreerrors.New(coreerrors.KindStateConflict, "point: no reserve")
	ErrSupplyExceeded     = coreerrors.New(coreerrors.KindValidation, "point: quantity exceeds available supply")
	ErrZeroConversion     = coreerrors.New(coreerrors.KindValidation, "point: conversion yields zero")
	ErrUnauthorizedIssuer = coreerrors.New(coreerrors.KindValidation, "point: caller is not the issuer")
)
