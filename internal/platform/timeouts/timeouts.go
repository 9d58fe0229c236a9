// Package timeouts defines shared timeout constants used across commands.
package timeouts

import "time"

// StoreOpen caps the wait for a file lock when opening a bolt pool store.
const StoreOpen = time.Second

// ScenarioStep is the default budget for one scenario step.
const ScenarioStep = 10 * time.Second

// TelemetryShutdown limits how long commands wait for span export on exit.
const TelemetryShutdown = 5 * time.Second
