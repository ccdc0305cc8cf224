package services

import "errors"

// Expected business outcomes. Handlers map these to specific HTTP responses;
// anything else is treated as an upstream/internal failure.
var (
	ErrInvalidAccessType = errors.New("invalid course access type")
	ErrCourseNotFound    = errors.New("course not found")
	ErrOrderNotFound     = errors.New("payment order not found")
	ErrAlreadyPurchased  = errors.New("course already purchased")
	ErrCheckoutPending   = errors.New("a checkout for this course is already in progress")
	ErrFreeCourse        = errors.New("free courses cannot be purchased")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrInvalidSignature  = errors.New("payment signature verification failed")
	ErrPaymentFailed     = errors.New("payment already marked failed")
	ErrUserNotFound      = errors.New("user not found")
)
