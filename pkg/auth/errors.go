package auth

import "errors"

var (
	ErrMissingSecret  = errors.New("auth: jwt secret is required")
	ErrInvalidToken   = errors.New("auth: invalid token")
	ErrExpiredToken   = errors.New("auth: token expired")
	ErrMissingSubject = errors.New("auth: token has no subject")
)
