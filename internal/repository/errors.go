package repository

import "errors"

// ErrInsufficientPoints is returned by debit operations when the guarded
// update matched no row, i.e. the balance was below the requested amount.
var ErrInsufficientPoints = errors.New("insufficient points")
