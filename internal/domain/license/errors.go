package license

import "errors"

var (
	ErrEmptyPayload     = errors.New("empty webhook payload")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrLicenseNotFound  = errors.New("license not found")
	ErrLicenseExists    = errors.New("license already exists")
)
