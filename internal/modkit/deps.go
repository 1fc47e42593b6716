// Package modkit provides module wiring and core deps
package modkit

import (
	"hubconnect/internal/core/dispatch"
	"hubconnect/internal/modkit/connkit"
	"hubconnect/internal/platform/config"
	"hubconnect/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf

	// Dispatcher runs every backend call; nil in modules that never call out
	Dispatcher *dispatch.Dispatcher

	// Kit is the shared connector plumbing; nil for plain service modules
	Kit *connkit.Kit
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check Dispatcher and Kit
func (d Deps) ZeroOK() bool { return true }
