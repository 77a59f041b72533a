package metropole

import "errors"

var (
	ErrLoginNotValid       = errors.New("login is not valid")
	ErrPasswordNotValid    = errors.New("password is not valid")
	ErrPasswordNotEqual    = errors.New("password is not equal")
	ErrUnauthenticated     = errors.New("session is not authenticated")
	ErrPackageNotAvailable = errors.New("package not found or inactive")
	ErrAmountNotValid      = errors.New("amount must be positive")
	ErrGateway             = errors.New("payment gateway request failed")
	ErrCodeNotValid        = errors.New("verification code is not valid")
	ErrCodeNotFound        = errors.New("verification code not found or expired")
	ErrSerialNotValid      = errors.New("serial is not valid")
)
