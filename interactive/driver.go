// Package interactive provides a programmatic step/run/break/watch driver
// over a simkernel.Kernel. It is not a REPL or CLI: callers invoke Go
// methods directly, and any terminal rendering is the caller's concern.
// It doubles as an akita TickingComponent so the same driver can be
// dropped into a larger akita-simulated system.
package interactive

import (
	"strings"
	"sync"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/aionhdl/ir"
	"github.com/sarchlab/aionhdl/simkernel"
)

// OutcomeKind classifies the result of a Step/Run/Continue call.
type OutcomeKind uint8

const (
	// Stepped means the kernel advanced without finishing or hitting a
	// breakpoint.
	Stepped OutcomeKind = iota
	// BreakpointHit means a registered time breakpoint was reached.
	BreakpointHit
	// Finished means the kernel has no more pending events.
	Finished
)

// Outcome is the result of Step, Run, or Continue.
type Outcome struct {
	Kind OutcomeKind
	BPID uint32 // set when Kind == BreakpointHit
	Time simkernel.Time
}

type breakpoint struct {
	id     uint32
	timeFS uint64
}

// Driver wraps a simkernel.Kernel with breakpoints and a signal watch
// list, and doubles as an akita TickingComponent: Tick advances the
// kernel by one delta cycle per invocation, the same shape Core.Tick
// advances a processing element by one cycle.
type Driver struct {
	*sim.TickingComponent

	kernel      *simkernel.Kernel
	breakpoints []breakpoint
	nextBPID    uint32
	watches     []string
	initialized bool
	closeOnce   sync.Once
	closeErr    error
}

// DriverBuilder constructs a Driver using a With...().Build(name) fluent
// builder shape.
type DriverBuilder struct {
	engine sim.Engine
	freq   sim.Freq
	design *ir.Design
}

// NewDriverBuilder returns a builder defaulting to 1 GHz.
func NewDriverBuilder() DriverBuilder {
	return DriverBuilder{freq: 1 * sim.GHz}
}

func (b DriverBuilder) WithEngine(engine sim.Engine) DriverBuilder {
	b.engine = engine
	return b
}

func (b DriverBuilder) WithFreq(freq sim.Freq) DriverBuilder {
	b.freq = freq
	return b
}

func (b DriverBuilder) WithDesign(design *ir.Design) DriverBuilder {
	b.design = design
	return b
}

// Build constructs the Driver, elaborating a fresh simkernel.Kernel from
// the configured design. Close registers itself with atexit so an open
// waveform recorder still gets finalized if the process exits via
// atexit.Exit before the caller closes the driver explicitly.
func (b DriverBuilder) Build(name string) (*Driver, error) {
	kernel, err := simkernel.New(b.design)
	if err != nil {
		return nil, err
	}

	d := &Driver{kernel: kernel, nextBPID: 1}
	d.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, d)
	atexit.Register(func() { _ = d.Close() })
	return d, nil
}

// Close finalizes the kernel's attached waveform recorder, if any. Safe
// to call more than once (including from the atexit hook registered by
// Build) — only the first call finalizes.
func (d *Driver) Close() error {
	d.closeOnce.Do(func() {
		if rec := d.kernel.Recorder(); rec != nil {
			d.closeErr = rec.Finalize()
		}
	})
	return d.closeErr
}

// Tick advances the kernel by one delta cycle, priming it on first call.
// Returns whether the step produced any progress (an akita
// TickingComponent convention: false tells the engine this component has
// gone idle).
func (d *Driver) Tick(now sim.VTimeInSec) (madeProgress bool) {
	if !d.initialized {
		if err := d.kernel.Initialize(); err != nil {
			return false
		}
		d.initialized = true
	}
	if d.kernel.IsFinished() || !d.kernel.HasPendingEvents() {
		return false
	}
	result, err := d.kernel.StepDelta()
	if err != nil {
		return false
	}
	return result == simkernel.StepContinued
}

// Kernel exposes the wrapped kernel for callers that need direct access
// (waveform recorder attachment, signal injection before stepping starts).
func (d *Driver) Kernel() *simkernel.Kernel {
	return d.kernel
}

// Initialize runs the kernel's priming pass exactly once. Safe to call
// multiple times; Step, Run, Continue, Tick, Inspect and WatchedValues
// call it lazily.
func (d *Driver) Initialize() error {
	if d.initialized {
		return nil
	}
	if err := d.kernel.Initialize(); err != nil {
		return err
	}
	d.initialized = true
	return nil
}

// Step advances the simulation by exactly one delta cycle.
func (d *Driver) Step() (Outcome, error) {
	if err := d.Initialize(); err != nil {
		return Outcome{}, err
	}
	result, err := d.kernel.StepDelta()
	if err != nil {
		return Outcome{}, err
	}
	if result == simkernel.StepDone {
		return Outcome{Kind: Finished, Time: d.kernel.CurrentTime()}, nil
	}
	return Outcome{Kind: Stepped, Time: d.kernel.CurrentTime()}, nil
}

// Run advances the simulation by durationFS femtoseconds, stopping early
// if a breakpoint is hit or the simulation finishes.
func (d *Driver) Run(durationFS uint64) (Outcome, error) {
	if err := d.Initialize(); err != nil {
		return Outcome{}, err
	}
	targetFS := d.kernel.CurrentTime().FS + durationFS

	for {
		if d.kernel.IsFinished() || !d.kernel.HasPendingEvents() {
			return Outcome{Kind: Finished, Time: d.kernel.CurrentTime()}, nil
		}
		if bp, ok := d.checkBreakpoints(); ok {
			return Outcome{Kind: BreakpointHit, BPID: bp, Time: d.kernel.CurrentTime()}, nil
		}
		if d.kernel.CurrentTime().FS >= targetFS {
			return Outcome{Kind: Stepped, Time: d.kernel.CurrentTime()}, nil
		}
		result, err := d.kernel.StepDelta()
		if err != nil {
			return Outcome{}, err
		}
		if result == simkernel.StepDone {
			return Outcome{Kind: Finished, Time: d.kernel.CurrentTime()}, nil
		}
	}
}

// Continue runs until the next breakpoint or until the simulation
// finishes, with no time limit.
func (d *Driver) Continue() (Outcome, error) {
	if err := d.Initialize(); err != nil {
		return Outcome{}, err
	}
	for {
		if d.kernel.IsFinished() || !d.kernel.HasPendingEvents() {
			return Outcome{Kind: Finished, Time: d.kernel.CurrentTime()}, nil
		}
		if bp, ok := d.checkBreakpoints(); ok {
			return Outcome{Kind: BreakpointHit, BPID: bp, Time: d.kernel.CurrentTime()}, nil
		}
		result, err := d.kernel.StepDelta()
		if err != nil {
			return Outcome{}, err
		}
		if result == simkernel.StepDone {
			return Outcome{Kind: Finished, Time: d.kernel.CurrentTime()}, nil
		}
	}
}

// Inspect returns the formatted value of each named signal, looking up
// exact names first and falling back to a substring match over every
// flattened signal name.
func (d *Driver) Inspect(names ...string) map[string]string {
	_ = d.Initialize()
	out := make(map[string]string)
	for _, name := range names {
		if id, ok := d.kernel.FindSignal(name); ok {
			out[name] = FormatValue(d.kernel.SignalValue(id))
			continue
		}
		for _, info := range d.kernel.AllSignals() {
			if strings.Contains(info.Name, name) {
				out[info.Name] = FormatValue(d.kernel.SignalValue(info.ID))
			}
		}
	}
	return out
}

// AddBreakpoint registers a time breakpoint and returns its ID.
func (d *Driver) AddBreakpoint(timeFS uint64) uint32 {
	id := d.nextBPID
	d.nextBPID++
	d.breakpoints = append(d.breakpoints, breakpoint{id: id, timeFS: timeFS})
	return id
}

// Watch adds a signal to the watch list. Returns false if the signal does
// not currently resolve (it is still added, in case it appears later once
// more of the design has been elaborated into the kernel).
func (d *Driver) Watch(signal string) bool {
	_, ok := d.kernel.FindSignal(signal)
	d.watches = append(d.watches, signal)
	return ok
}

// Unwatch removes a signal from the watch list. Returns whether it was
// present.
func (d *Driver) Unwatch(signal string) bool {
	before := len(d.watches)
	kept := d.watches[:0]
	for _, w := range d.watches {
		if w != signal {
			kept = append(kept, w)
		}
	}
	d.watches = kept
	return len(d.watches) < before
}

// Watches returns the currently watched signal names, in insertion order.
func (d *Driver) Watches() []string {
	return append([]string(nil), d.watches...)
}

// WatchedValues returns the formatted value of every watched signal that
// currently resolves.
func (d *Driver) WatchedValues() map[string]string {
	_ = d.Initialize()
	out := make(map[string]string, len(d.watches))
	for _, name := range d.watches {
		if id, ok := d.kernel.FindSignal(name); ok {
			out[name] = FormatValue(d.kernel.SignalValue(id))
		}
	}
	return out
}

// Signals returns every flattened signal in the design.
func (d *Driver) Signals() []simkernel.SignalInfo {
	return d.kernel.AllSignals()
}

// Status summarizes the driver's current state.
type Status struct {
	Time         simkernel.Time
	SignalCount  int
	ProcessCount int
	PendingEvent bool
	Finished     bool
	Breakpoints  int
	Watches      int
}

// Status reports the current simulation and driver state.
func (d *Driver) Status() Status {
	return Status{
		Time:         d.kernel.CurrentTime(),
		SignalCount:  d.kernel.SignalCount(),
		ProcessCount: d.kernel.ProcessCount(),
		PendingEvent: d.kernel.HasPendingEvents(),
		Finished:     d.kernel.IsFinished(),
		Breakpoints:  len(d.breakpoints),
		Watches:      len(d.watches),
	}
}

// Time returns the kernel's current simulation time.
func (d *Driver) Time() simkernel.Time {
	return d.kernel.CurrentTime()
}

// checkBreakpoints returns the first breakpoint whose time has already
// been reached or passed.
func (d *Driver) checkBreakpoints() (uint32, bool) {
	current := d.kernel.CurrentTime().FS
	for _, bp := range d.breakpoints {
		if bp.timeFS <= current {
			return bp.id, true
		}
	}
	return 0, false
}
