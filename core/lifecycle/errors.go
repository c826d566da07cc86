package lifecycle

import "errors"

var (
	// ErrInvalidSession is the one designed hard failure of session
	// establishment: the resolved snapshot did not pass validation.
	ErrInvalidSession = errors.New("lifecycle: invalid session")

	// ErrNoSession is returned when an operation needs an established session
	// context and none is present.
	ErrNoSession = errors.New("lifecycle: no session established")

	// ErrStoreKey is returned when a fresh store key could not be minted.
	ErrStoreKey = errors.New("lifecycle: failed to mint store key")
)
