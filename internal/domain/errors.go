package domain

import "errors"

var (
	ErrNotFound      = errors.New("rental ledger: not found")
	ErrAlreadyExists = errors.New("rental ledger: already exists")
	ErrAlreadyClosed = errors.New("rental ledger: agreement already closed")
	ErrInvalidInput  = errors.New("rental ledger: invalid input")
)
