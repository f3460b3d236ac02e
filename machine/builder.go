package machine

import (
	"github.com/rs/xid"

	"github.com/retromach/retromach/hostevent"
	"github.com/retromach/retromach/monitoring"
	"github.com/retromach/retromach/recording"
	"github.com/retromach/retromach/stateful"
	"github.com/retromach/retromach/timing"
)

// Builder can build a machine.
type Builder struct {
	name        string
	quantum     timing.EmuDuration
	monitorOn   bool
	monitorPort int
	traceOn     bool
	tracePath   string
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		name:      "machine",
		quantum:   DefaultQuantum,
		monitorOn: true,
	}
}

// WithConfig applies a Config to the builder.
func (b Builder) WithConfig(c Config) Builder {
	b.quantum = c.Quantum
	b.monitorOn = c.MonitorOn
	b.monitorPort = c.MonitorPort
	b.traceOn = c.TraceOn
	b.tracePath = c.TracePath
	return b
}

// WithName sets the name of the machine.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithQuantum sets the execution slice length in main-clock ticks.
func (b Builder) WithQuantum(q timing.EmuDuration) Builder {
	b.quantum = q
	return b
}

// WithoutMonitoring disables the monitoring server.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port used by the monitoring server. A port number
// of 0 lets the monitor pick one.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithTrace enables dispatch tracing into the SQLite database at path.
func (b Builder) WithTrace(path string) Builder {
	b.traceOn = true
	b.tracePath = path
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.quantum == 0 {
		panic("machine: quantum must be positive")
	}
}

// Build assembles the machine.
func (b Builder) Build() *Machine {
	b.parametersMustBeValid()

	m := &Machine{
		id:      xid.New().String(),
		name:    b.name,
		devices: make(map[string]timing.Schedulable),
		codec:   stateful.JSONCodec{},
	}

	m.sched = timing.NewScheduler()
	m.dist = hostevent.NewDistributor()
	m.driver = NewCPUDriver(m.sched, m.dist, b.quantum)

	if b.traceOn {
		m.recorder = recording.New(b.tracePath)
		m.sched.AcceptHook(recording.NewDispatchRecorder(m.recorder))
	}

	if b.monitorOn {
		m.monitor = monitoring.NewMonitor().WithPortNumber(b.monitorPort)
		m.monitor.RegisterDriver(m.driver)
		m.monitor.RegisterScheduler(m.sched)
		m.monitorAddr = m.monitor.StartServer()
	}

	return m
}
