package config

import (
	"github.com/openInula/inula-sub000/pkg/engine/script"
	"github.com/openInula/inula-sub000/pkg/engine/symbols"
)

// Conversion defaults.
const (
	DefaultAdapterSource   = symbols.DefaultAdapterSource
	DefaultFrameworkSource = symbols.DefaultFrameworkSource
	DefaultTargetExtension = script.DefaultTargetExtension
)

// Migrate defaults. Zero workers means one per CPU.
const (
	DefaultMigrateWorkers   = 0
	DefaultMigrateStateFile = ".vue2inula-state.json"
	DefaultCacheSizeMB      = 64
)

// Logging defaults.
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultLogMaxSizeMB  = 50
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)

// Telemetry defaults.
const (
	DefaultSampleRatio = 1.0
)
