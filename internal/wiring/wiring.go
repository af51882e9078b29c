// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/stagehand/internal/adapters/cas"
	_ "go.trai.ch/stagehand/internal/adapters/config"
	_ "go.trai.ch/stagehand/internal/adapters/fingerprint"
	_ "go.trai.ch/stagehand/internal/adapters/logger"
	_ "go.trai.ch/stagehand/internal/adapters/render"
	_ "go.trai.ch/stagehand/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/stagehand/internal/app"
	_ "go.trai.ch/stagehand/internal/engine/generator"
)
