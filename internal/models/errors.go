package models

import "errors"

var (
	// ErrDuplicateQuote marks a store rejection caused by the unique date key
	ErrDuplicateQuote = errors.New("duplicate quote date")

	// ErrQuoteNotFound is returned when no quote exists for a date
	ErrQuoteNotFound = errors.New("quote not found")
)
