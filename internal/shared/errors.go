package shared

import "errors"

var (

	// common errors
	ErrorNotFound = errors.New("not found")

	ErrorAlreadyExists = errors.New("already exists")
)
