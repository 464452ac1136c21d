package service

import "errors"

var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrProposalNotFound         = errors.New("pending update not found")
	ErrProposalAlreadyConfirmed = errors.New("update already confirmed")
)
