package observable

import "errors"

var (
	// ErrNilOwner is returned when a constructor receives a nil owner.
	ErrNilOwner = errors.New("observable: owner is nil")
	// ErrNotEnum is returned when the enumeration category is requested for a
	// type that is not a defined enumeration type.
	ErrNotEnum = errors.New("observable: type is not an enumeration")
)
