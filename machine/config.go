package machine

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/retromach/retromach/timing"
)

// Config carries the tunables of a machine that are read from the
// environment.
type Config struct {
	// Quantum is the length of one execution slice in main-clock ticks. The
	// driver never runs the CPU further than one quantum past the last
	// resolved time without giving the scheduler a chance to dispatch.
	Quantum timing.EmuDuration

	MonitorOn   bool
	MonitorPort int

	TraceOn   bool
	TracePath string
}

// DefaultQuantum is roughly one millisecond of emulated time.
const DefaultQuantum = timing.EmuDuration(timing.MainFreq / 1000)

// DefaultConfig returns the configuration used when the environment does not
// say otherwise.
func DefaultConfig() Config {
	return Config{
		Quantum:   DefaultQuantum,
		MonitorOn: true,
	}
}

// ConfigFromEnv loads a .env file if one is present and builds a Config from
// RETROMACH_* variables, falling back to defaults for anything unset.
func ConfigFromEnv() Config {
	// Missing .env files are fine; the process environment still applies.
	_ = godotenv.Load()

	c := DefaultConfig()

	if v, ok := os.LookupEnv("RETROMACH_QUANTUM"); ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			c.Quantum = timing.EmuDuration(n)
		}
	}

	if v, ok := os.LookupEnv("RETROMACH_MONITOR"); ok {
		c.MonitorOn = v != "0" && v != "false"
	}

	if v, ok := os.LookupEnv("RETROMACH_MONITOR_PORT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.MonitorPort = n
		}
	}

	if v, ok := os.LookupEnv("RETROMACH_TRACE"); ok && v != "" {
		c.TraceOn = true
		c.TracePath = v
	}

	return c
}
