package errstore

import "errors"

var (
	ErrLoginNotUnique   = errors.New("login already exists")
	ErrNotFoundData     = errors.New("data not found")
	ErrBalanceNotEnough = errors.New("not enough diamonds on balance")
	// ErrConcurrentUpdate means a conditional update affected zero rows
	// because another writer got there first. Callers treat it as an
	// expected race, not a failure.
	ErrConcurrentUpdate = errors.New("row was changed by a concurrent update")
)
