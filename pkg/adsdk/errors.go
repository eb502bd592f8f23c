package adsdk

import (
	"errors"

	"github.com/patrickwarner/adsdk/internal/catalog"
	"github.com/patrickwarner/adsdk/internal/lifecycle"
	"github.com/patrickwarner/adsdk/internal/tracking"
)

// ErrNotInitialized is reported through the load listener when an ad is
// loaded without an initialized SDK.
var ErrNotInitialized = errors.New("ad sdk not initialized")

// Lifecycle errors reported by LoadAd.
var (
	ErrNotLoaded      = lifecycle.ErrNotLoaded
	ErrLoadInProgress = lifecycle.ErrLoadInProgress
	ErrAlreadyShowing = lifecycle.ErrAlreadyShowing
	ErrDismissed      = lifecycle.ErrDismissed
	ErrExpired        = lifecycle.ErrExpired
	ErrDestroyed      = lifecycle.ErrDestroyed
)

// ErrDispatcherClosed is reported to tracking callbacks after Shutdown.
var ErrDispatcherClosed = tracking.ErrClosed

// ConfigError is the error type for unusable pattern configuration documents.
type ConfigError = catalog.ConfigError
