package configs

import "time"

// Sweep configures the built-in ticker that invokes the maintenance sweeps.
// The sweeps themselves carry no timing logic; in production an external
// scheduler may call the sweep endpoints instead, in which case the ticker
// can be disabled.
type Sweep struct {
	// Enabled turns the internal ticker on.
	Enabled bool `env:"ENABLED" envDefault:"true"`
	// CheckInterval is how often the budget and schedule check sweeps run.
	// Daily and monthly resets fire on UTC day and month rollover.
	CheckInterval time.Duration `env:"CHECK_INTERVAL" envDefault:"5m"`
}
