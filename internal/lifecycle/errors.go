package lifecycle

import "errors"

var (
	// ErrNotLoaded is returned when an operation needs loaded content.
	ErrNotLoaded = errors.New("ad not loaded")
	// ErrLoadInProgress is returned when a load is requested while one is running.
	ErrLoadInProgress = errors.New("ad load already in progress")
	// ErrAlreadyShowing is returned when showing or reloading a displayed ad.
	ErrAlreadyShowing = errors.New("ad already showing")
	// ErrDismissed is returned when showing an ad that was already dismissed.
	ErrDismissed = errors.New("ad already dismissed")
	// ErrExpired is returned once an expiring ad has outlived its TTL.
	ErrExpired = errors.New("ad expired")
	// ErrDestroyed is returned for any operation on a destroyed ad.
	ErrDestroyed = errors.New("ad destroyed")
	// ErrInvalidTransition is returned for transitions the state machine does not define.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
)
