package simkernel

import (
	"container/heap"
	"fmt"
	"strings"

	"github.com/sarchlab/aionhdl/fourval"
	"github.com/sarchlab/aionhdl/ir"
	"github.com/sarchlab/aionhdl/waveform"
)

// simProcess is a flattened process with its pre-computed metadata: the
// mapping from its defining module's SignalIDs to flat SimSignalIDs, and
// the set of signals that trigger it.
type simProcess struct {
	kind        ir.ProcessKind
	module      *ir.Module
	signalMap   map[ir.SignalID]SimSignalID
	body        ir.StmtID
	sensitivity []ir.SensitivityEntry
}

// simEvent is one scheduled signal write.
type simEvent struct {
	time   Time
	signal SimSignalID
	value  fourval.Vec
}

// eventQueue is a time-ordered min-heap of simEvents, built on
// container/heap.
type eventQueue []simEvent

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	return q[i].time.Before(q[j].time)
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x any)   { *q = append(*q, x.(simEvent)) }
func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// StepResult reports whether a delta-cycle step advanced the simulation
// or found nothing left to do.
type StepResult uint8

const (
	StepContinued StepResult = iota
	StepDone
)

// SimResult summarises a completed run.
type SimResult struct {
	FinalTime          Time
	FinishedByUser     bool
	TotalDeltas        uint64
	DisplayOutput      []string
	AssertionFailures  []string
}

// Kernel is the event-driven simulation engine over one flattened,
// elaborated design.
type Kernel struct {
	currentTime Time
	events      eventQueue
	signals     ir.Arena[SimSignalID, SimSignalState]
	processes   []simProcess
	recorder    waveform.Recorder
	types       *ir.TypeDB

	finished          bool
	displayOutput     []string
	assertionFailures []string

	timeLimit       *uint64
	sensitivityMap  map[SimSignalID][]int
	maxDeltaPerStep uint32
	totalDeltas     uint64
	primed          bool
}

// New flattens design's top module (its instance cells are not descended
// into) and builds the sensitivity map, returning a Kernel ready to run.
func New(design *ir.Design) (*Kernel, error) {
	if design.Modules.Len() == 0 {
		return nil, ErrNoTopModule
	}

	k := &Kernel{
		types:           design.Types,
		maxDeltaPerStep: 10_000,
		sensitivityMap:  make(map[SimSignalID][]int),
	}

	top := design.TopModule()
	parentMap := make(map[ir.SignalID]SimSignalID)
	k.flattenModule(top, "top", parentMap)
	k.buildSensitivityMap()

	return k, nil
}

// ScheduleAt queues an external write to a flattened signal at time t,
// the entry point a testbench driver (or the interactive debugger) uses
// to inject stimulus the design itself doesn't generate.
func (k *Kernel) ScheduleAt(t Time, sim SimSignalID, value fourval.Vec) {
	heap.Push(&k.events, simEvent{time: t, signal: sim, value: value})
}

// SetTimeLimit bounds the simulation to limitFS femtoseconds.
func (k *Kernel) SetTimeLimit(limitFS uint64) {
	k.timeLimit = &limitFS
}

// SetMaxDelta bounds the number of delta cycles executed within a single
// femtosecond, guarding against a combinational loop spinning forever.
func (k *Kernel) SetMaxDelta(max uint32) {
	k.maxDeltaPerStep = max
}

// SetRecorder attaches a waveform recorder, registering every already-
// flattened signal with it so the kernel can record changes from the next
// StepDelta onward.
func (k *Kernel) SetRecorder(rec waveform.Recorder) error {
	k.recorder = rec
	var regErr error
	k.signals.All(func(h SimSignalID, s SimSignalState) bool {
		if err := rec.RegisterSignal(int(h), s.Name, s.Value.Width()); err != nil {
			regErr = err
			return false
		}
		return true
	})
	return regErr
}

// Recorder returns the currently attached waveform recorder, or nil if
// none has been set.
func (k *Kernel) Recorder() waveform.Recorder {
	return k.recorder
}

// CurrentTime returns the kernel's current simulation time.
func (k *Kernel) CurrentTime() Time {
	return k.currentTime
}

// SignalValue returns the live value of a flattened signal.
func (k *Kernel) SignalValue(id SimSignalID) fourval.Vec {
	return k.signals.Get(id).Value
}

// FindSignal returns the flat ID of the first signal named name.
func (k *Kernel) FindSignal(name string) (SimSignalID, bool) {
	var found SimSignalID
	ok := false
	k.signals.All(func(h SimSignalID, s SimSignalState) bool {
		if s.Name == name {
			found, ok = h, true
			return false
		}
		return true
	})
	return found, ok
}

// SignalCount returns the number of flattened signals.
func (k *Kernel) SignalCount() int { return k.signals.Len() }

// ProcessCount returns the number of flattened processes.
func (k *Kernel) ProcessCount() int { return len(k.processes) }

// AllSignals returns every flattened signal's ID, name, and bit width, in
// arena order — the interactive driver's `signals` command lists these
// and matches watch/inspect patterns against them.
func (k *Kernel) AllSignals() []SignalInfo {
	out := make([]SignalInfo, 0, k.signals.Len())
	k.signals.All(func(h SimSignalID, s SimSignalState) bool {
		out = append(out, SignalInfo{ID: h, Name: s.Name, Width: s.Value.Width()})
		return true
	})
	return out
}

// IsFinished reports whether the kernel has already processed a $finish
// (or equivalent) and will not advance further.
func (k *Kernel) IsFinished() bool { return k.finished }

// HasPendingEvents reports whether the event queue still has work queued.
func (k *Kernel) HasPendingEvents() bool { return len(k.events) > 0 }

// TakeDisplayOutput drains and returns every $display line recorded since
// the last call.
func (k *Kernel) TakeDisplayOutput() []string {
	out := k.displayOutput
	k.displayOutput = nil
	return out
}

// TakeAssertionFailures drains and returns every assertion failure message
// recorded since the last call.
func (k *Kernel) TakeAssertionFailures() []string {
	out := k.assertionFailures
	k.assertionFailures = nil
	return out
}

// Run advances the simulation by durationFS femtoseconds.
func (k *Kernel) Run(durationFS uint64) (SimResult, error) {
	end := k.currentTime.FS + durationFS
	k.timeLimit = &end
	return k.runSimulation()
}

// RunToCompletion runs until the event queue empties or $finish fires.
func (k *Kernel) RunToCompletion() (SimResult, error) {
	return k.runSimulation()
}

// Initialize runs the initial and combinational priming pass exactly
// once. Run and RunToCompletion call it automatically; a driver that
// steps delta cycles directly (the interactive debugger) must call it
// itself before the first StepDelta.
func (k *Kernel) Initialize() error {
	if k.primed {
		return nil
	}
	if err := k.executeInitialProcesses(); err != nil {
		return err
	}
	if err := k.executeCombinationalProcesses(); err != nil {
		return err
	}
	k.primed = true
	return nil
}

func (k *Kernel) runSimulation() (SimResult, error) {
	if err := k.Initialize(); err != nil {
		return SimResult{}, err
	}

	deltasAtCurrentTime := uint32(0)
	for !k.finished && len(k.events) > 0 {
		if k.timeLimit != nil && k.events[0].time.FS > *k.timeLimit {
			break
		}

		nextFS := k.events[0].time.FS
		if nextFS != k.currentTime.FS {
			deltasAtCurrentTime = 0
		}

		result, err := k.StepDelta()
		if err != nil {
			return SimResult{}, err
		}
		deltasAtCurrentTime++

		if deltasAtCurrentTime >= k.maxDeltaPerStep {
			return SimResult{}, &DeltaCycleLimitError{FS: k.currentTime.FS, MaxDeltas: k.maxDeltaPerStep}
		}
		if result == StepDone {
			break
		}
	}

	if k.recorder != nil {
		if err := k.recorder.Finalize(); err != nil {
			return SimResult{}, err
		}
	}

	return SimResult{
		FinalTime:         k.currentTime,
		FinishedByUser:    k.finished,
		TotalDeltas:       k.totalDeltas,
		DisplayOutput:     k.displayOutput,
		AssertionFailures: k.assertionFailures,
	}, nil
}

// executeInitialProcesses runs every ProcessInitial body once, applying
// its writes immediately rather than deferring them to a delta cycle —
// an `initial` block's statements execute in program order at time zero.
func (k *Kernel) executeInitialProcesses() error {
	for idx := range k.processes {
		proc := &k.processes[idx]
		if proc.kind != ir.ProcessInitial {
			continue
		}

		ctx := newEvalContext(&k.signals, proc.signalMap, k.types, proc.module)
		var pending []PendingUpdate
		var display []string
		result, err := ExecStatement(ctx, proc.body, &pending, &display)
		if err != nil {
			return err
		}
		k.recordDisplay(display)

		for _, update := range pending {
			k.applyImmediate(update)
		}

		if result == ExecFinish {
			k.finished = true
			return nil
		}
	}
	return nil
}

// executeCombinationalProcesses runs every combinational process once so
// its outputs settle before the event-driven delta loop starts, scheduling
// whatever it writes at (fs=0, delta=1).
func (k *Kernel) executeCombinationalProcesses() error {
	for idx := range k.processes {
		proc := &k.processes[idx]
		if proc.kind != ir.ProcessCombinational {
			continue
		}

		ctx := newEvalContext(&k.signals, proc.signalMap, k.types, proc.module)
		var pending []PendingUpdate
		var display []string
		result, err := ExecStatement(ctx, proc.body, &pending, &display)
		if err != nil {
			return err
		}
		k.recordDisplay(display)

		for _, update := range pending {
			heap.Push(&k.events, simEvent{time: Time{FS: 0, Delta: 1}, signal: update.Target, value: k.resolveUpdateValue(update)})
		}

		if result == ExecFinish {
			k.finished = true
			return nil
		}
	}
	return nil
}

func (k *Kernel) recordDisplay(display []string) {
	k.displayOutput = append(k.displayOutput, display...)
	for _, msg := range display {
		if strings.HasPrefix(msg, "ASSERTION FAILED:") {
			k.assertionFailures = append(k.assertionFailures, msg)
		}
	}
}

func (k *Kernel) applyImmediate(update PendingUpdate) {
	sig := k.signals.Get(update.Target)
	if update.HasRange {
		for i := 0; i < update.High-update.Low+1 && i < update.Value.Width(); i++ {
			sig.Value = sig.Value.WithBit(update.Low+i, update.Value.Bit(i))
		}
	} else {
		sig.Value = update.Value
	}
	k.signals.Set(update.Target, sig)
}

func (k *Kernel) resolveUpdateValue(update PendingUpdate) fourval.Vec {
	if !update.HasRange {
		return update.Value
	}
	sig := k.signals.Get(update.Target)
	merged := sig.Value
	for i := 0; i < update.High-update.Low+1 && i < update.Value.Width(); i++ {
		merged = merged.WithBit(update.Low+i, update.Value.Bit(i))
	}
	return merged
}

// StepDelta executes a single delta-cycle step: it dequeues every event
// at the earliest scheduled time, applies the writes, wakes every process
// sensitive to a changed signal, and schedules whatever those processes
// produce onto the next delta cycle.
func (k *Kernel) StepDelta() (StepResult, error) {
	if k.finished || len(k.events) == 0 {
		return StepDone, nil
	}

	next := k.events[0].time
	if k.timeLimit != nil && next.FS > *k.timeLimit {
		return StepDone, nil
	}
	k.currentTime = next

	var batch []simEvent
	for len(k.events) > 0 && k.events[0].time == k.currentTime {
		evt := heap.Pop(&k.events).(simEvent)
		batch = append(batch, evt)
	}

	changed := make(map[SimSignalID]bool)
	for _, evt := range batch {
		sig := k.signals.Get(evt.signal)
		sig.Previous = sig.Value
		merged := mergeSignalValue(sig.Value, evt.value)
		if !merged.Equal(sig.Value) {
			sig.Value = merged
			changed[evt.signal] = true
		}
		k.signals.Set(evt.signal, sig)
	}

	if k.recorder != nil {
		for sig := range changed {
			k.recorder.RecordChange(k.currentTime.FS, int(sig), k.signals.Get(sig).Value)
		}
	}

	var allPending []PendingUpdate
	for _, idx := range k.findSensitiveProcesses(changed) {
		proc := &k.processes[idx]
		ctx := newEvalContext(&k.signals, proc.signalMap, k.types, proc.module)
		var pending []PendingUpdate
		var display []string
		result, err := ExecStatement(ctx, proc.body, &pending, &display)
		if err != nil {
			return StepDone, err
		}

		k.recordDisplay(display)
		allPending = append(allPending, pending...)

		if result == ExecFinish {
			k.finished = true
			return StepDone, nil
		}
	}

	nextDelta := k.currentTime.NextDelta()
	for _, update := range allPending {
		heap.Push(&k.events, simEvent{time: nextDelta, signal: update.Target, value: k.resolveUpdateValue(update)})
	}

	k.totalDeltas++
	return StepContinued, nil
}

func mergeSignalValue(current, incoming fourval.Vec) fourval.Vec {
	width := current.Width()
	if incoming.Width() < width {
		width = incoming.Width()
	}
	merged := current
	for i := 0; i < width; i++ {
		merged = merged.WithBit(i, incoming.Bit(i))
	}
	return merged
}

// findSensitiveProcesses returns every process index woken by a change in
// changed. A process with at least one edge-qualified sensitivity entry
// only wakes when one of its qualified signals actually made that edge
// transition; a plain (edge-none) entry wakes on any change, matching a
// Verilog signal-list sensitivity (`always @(a, b)`).
func (k *Kernel) findSensitiveProcesses(changed map[SimSignalID]bool) []int {
	seen := make(map[int]bool)
	var out []int
	candidates := make(map[int]bool)
	for sig := range changed {
		for _, idx := range k.sensitivityMap[sig] {
			candidates[idx] = true
		}
	}

	for idx := range candidates {
		proc := &k.processes[idx]
		woken := len(proc.sensitivity) == 0 // always @* / synthesized concurrent assign
		for _, entry := range proc.sensitivity {
			sim, ok := proc.signalMap[entry.Signal]
			if !ok || !changed[sim] {
				continue
			}
			if entry.Edge == ir.EdgeNone {
				woken = true
				continue
			}
			sig := k.signals.Get(sim)
			if checkEdge(sig.Previous, sig.Value, entry.Edge) {
				woken = true
			}
		}
		if woken && !seen[idx] {
			seen[idx] = true
			out = append(out, idx)
		}
	}
	return out
}

// checkEdge reports whether prev -> curr on bit 0 matches edge.
func checkEdge(prev, curr fourval.Vec, edge ir.Edge) bool {
	if prev.Width() == 0 || curr.Width() == 0 {
		return false
	}
	p, c := prev.Bit(0), curr.Bit(0)
	switch edge {
	case ir.EdgePosedge:
		return p == fourval.Zero && c == fourval.One
	case ir.EdgeNegedge:
		return p == fourval.One && c == fourval.Zero
	case ir.EdgeBoth:
		return (p == fourval.Zero && c == fourval.One) || (p == fourval.One && c == fourval.Zero)
	default:
		return false
	}
}

// flattenModule allocates flat SimSignalIDs for every signal in module
// (reusing any ID already bound in parentMap) and creates a simProcess for
// every ir.Process and concurrent assignment it declares. It does not
// descend into CellInstance cells: the signals and processes of
// instantiated child modules are not flattened.
func (k *Kernel) flattenModule(module *ir.Module, prefix string, parentMap map[ir.SignalID]SimSignalID) map[ir.SignalID]SimSignalID {
	signalMap := make(map[ir.SignalID]SimSignalID)

	module.Signals.All(func(id ir.SignalID, sig ir.Signal) bool {
		if existing, ok := parentMap[id]; ok {
			signalMap[id] = existing
			return true
		}
		width := safeBitWidth(k.types, sig.Type)
		name := fmt.Sprintf("%s.sig%d", prefix, int(id))
		init := initialValue(sig, width)
		sim := k.signals.Add(SimSignalState{Name: name, Value: init, Previous: init})
		signalMap[id] = sim
		return true
	})

	module.Processes.All(func(_ ir.ProcessID, proc ir.Process) bool {
		k.processes = append(k.processes, simProcess{
			kind:        proc.Kind,
			module:      module,
			signalMap:   signalMap,
			body:        proc.Body,
			sensitivity: proc.Sensitivity,
		})
		return true
	})

	for _, assign := range module.Concurrent {
		body := synthesizeAssignStmt(module, assign)
		k.processes = append(k.processes, simProcess{
			kind:      ir.ProcessCombinational,
			module:    module,
			signalMap: signalMap,
			body:      body,
		})
	}

	return signalMap
}

// synthesizeAssignStmt wraps a module-scope continuous assignment in a
// synthetic StmtAssign node so it can be executed by the same
// ExecStatement path as a process body.
func synthesizeAssignStmt(module *ir.Module, assign ir.ConcurrentAssign) ir.StmtID {
	return module.Stmts.Add(ir.Statement{
		Kind:       ir.StmtAssign,
		AssignKind: ir.AssignBlocking,
		Target:     assign.Target,
		Value:      assign.Value,
		Span:       assign.Span,
	})
}

func safeBitWidth(types *ir.TypeDB, id ir.TypeID) int {
	defer func() { recover() }()
	return types.BitWidth(id)
}

func initialValue(sig ir.Signal, width int) fourval.Vec {
	switch sig.Kind {
	case ir.SignalReg, ir.SignalLatch:
		return fourval.AllX(width)
	default:
		return fourval.New(width)
	}
}

// buildSensitivityMap inverts every process's sensitivity list (or, for
// a concurrent assignment's synthetic process, its value expression's
// read set) into sensitivityMap: signal -> processes woken by a change.
func (k *Kernel) buildSensitivityMap() {
	for idx := range k.processes {
		proc := &k.processes[idx]
		if len(proc.sensitivity) > 0 {
			for _, entry := range proc.sensitivity {
				sim, ok := proc.signalMap[entry.Signal]
				if !ok {
					continue
				}
				k.sensitivityMap[sim] = append(k.sensitivityMap[sim], idx)
			}
			continue
		}

		// Combinational processes with no explicit sensitivity list
		// (always @*, and every synthesized concurrent-assignment
		// process) are sensitive to every signal their body reads.
		reads := collectReadSignals(proc.module, proc.body)
		for sigID := range reads {
			sim, ok := proc.signalMap[sigID]
			if !ok {
				continue
			}
			k.sensitivityMap[sim] = append(k.sensitivityMap[sim], idx)
		}
	}
}

// collectReadSignals walks a statement tree and every expression it
// evaluates, recording every distinct ir.SignalID read.
func collectReadSignals(module *ir.Module, stmtID ir.StmtID) map[ir.SignalID]bool {
	out := make(map[ir.SignalID]bool)
	var walkExpr func(ir.ExprID)
	walkExpr = func(id ir.ExprID) {
		e := module.Exprs.Get(id)
		switch e.Kind {
		case ir.ExprSignal:
			out[e.Signal] = true
		case ir.ExprUnary:
			walkExpr(e.Operand)
		case ir.ExprBinary:
			walkExpr(e.Lhs)
			walkExpr(e.Rhs)
		case ir.ExprTernary:
			walkExpr(e.Cond)
			walkExpr(e.WhenTrue)
			walkExpr(e.WhenFalse)
		case ir.ExprConcat:
			for _, p := range e.Parts {
				walkExpr(p)
			}
		case ir.ExprRepeat:
			walkExpr(e.Count)
			for _, p := range e.Parts {
				walkExpr(p)
			}
		case ir.ExprIndex, ir.ExprSlice:
			walkExpr(e.Base)
			walkExpr(e.High)
			walkExpr(e.Low)
		case ir.ExprFuncCall:
			for _, a := range e.Args {
				walkExpr(a)
			}
		}
	}

	var walkStmt func(ir.StmtID)
	walkStmt = func(id ir.StmtID) {
		s := module.Stmts.Get(id)
		switch s.Kind {
		case ir.StmtAssign:
			walkExpr(s.Value)
		case ir.StmtIf:
			walkExpr(s.Cond)
			walkStmt(s.Then)
			if s.HasElse {
				walkStmt(s.Else)
			}
		case ir.StmtCase:
			walkExpr(s.Selector)
			for _, arm := range s.Arms {
				for _, v := range arm.Values {
					walkExpr(v)
				}
				walkStmt(arm.Body)
			}
		case ir.StmtBlock:
			for _, inner := range s.Stmts {
				walkStmt(inner)
			}
		case ir.StmtDisplay:
			for _, a := range s.Args {
				walkExpr(a)
			}
		case ir.StmtAssertion:
			walkExpr(s.AssertCond)
		}
	}
	walkStmt(stmtID)
	return out
}
