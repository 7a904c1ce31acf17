// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/retest/internal/adapters/config"
	_ "go.trai.ch/retest/internal/adapters/discovery"
	_ "go.trai.ch/retest/internal/adapters/logger"
	_ "go.trai.ch/retest/internal/adapters/runner"
	_ "go.trai.ch/retest/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/retest/internal/app"
	_ "go.trai.ch/retest/internal/engine/assert"
	_ "go.trai.ch/retest/internal/engine/scheduler"
)
