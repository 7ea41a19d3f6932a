package app

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUsernameExists    = errors.New("username already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrUserNotFound      = errors.New("user not found")

	ErrPaperNotFound      = errors.New("paper not found")
	ErrProcessingFailed   = errors.New("document processing failed")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrGenerationFailed   = errors.New("answer generation failed")

	ErrSessionNotFound = errors.New("session not found")
	ErrForbidden       = errors.New("session belongs to another user")
)
