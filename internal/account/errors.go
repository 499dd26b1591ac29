package account

import "errors"

var (
	ErrNotFound      = errors.New("account: not found")
	ErrAlreadyExists = errors.New("account: already exists")
	ErrInvalidInput  = errors.New("account: invalid input")
	ErrUnauthorized  = errors.New("account: unauthorized")
)
