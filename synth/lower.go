// Package synth lowers a behavioural module (processes and concurrent
// assignments) into a synthesizable netlist of cells: the simulation
// kernel's IR, flattened into a gate-level form. An `initial` block has no
// synthesizable meaning and is skipped with a warning; a combinational
// process lowers to a mux chain per assigned signal, a sequential process
// to one Dff cell per assigned signal, and a latched process to a Latch
// cell per assigned signal.
package synth

import (
	"fmt"

	"github.com/sarchlab/aionhdl/diagnostics"
	"github.com/sarchlab/aionhdl/ir"
)

// Dff cell connection convention: Inputs = [D, CLK] (no reset) or
// [D, CLK, RST] / [D, CLK, RST, RST_VAL] (synchronous reset with an
// explicit reset value found in the body); Outputs = [Q].
//
// Latch cell convention: Inputs = [D], Outputs = [Q].
//
// Mux cell convention (matching ir.Cell's documented CellMux order):
// Inputs = [select, whenTrue, whenFalse], Outputs = [out].

type lowerCtx struct {
	src   *ir.Module // the behavioural module: read-only source of Exprs/Stmts
	out   *ir.Module // the netlist being built: Signals carry over 1:1, Cells accumulate
	types *ir.TypeDB
	sink  *diagnostics.Sink
}

// LowerModule synthesizes src's behavioural content into a new Module with
// the same signals and ports but whose value is carried entirely by Cells
// — no Processes, no Concurrent assignments. src itself is left untouched,
// since the same *ir.Module is also what the simulation kernel runs.
func LowerModule(src *ir.Module, types *ir.TypeDB, sink *diagnostics.Sink) *ir.Module {
	out := ir.NewModule(src.Name, src.Span)
	out.Params = append([]ir.Param(nil), src.Params...)
	out.Ports = append([]ir.SignalID(nil), src.Ports...)

	src.Signals.All(func(_ ir.SignalID, sig ir.Signal) bool {
		out.Signals.Add(sig)
		return true
	})

	ctx := &lowerCtx{src: src, out: out, types: types, sink: sink}

	for _, assign := range src.Concurrent {
		value := lowerExpr(ctx, assign.Value)
		wireSignalRef(ctx, assign.Target, value)
	}

	src.Processes.All(func(_ ir.ProcessID, proc ir.Process) bool {
		lowerProcess(ctx, proc)
		return true
	})

	return out
}

func lowerProcess(ctx *lowerCtx, proc ir.Process) {
	switch proc.Kind {
	case ir.ProcessSequential:
		lowerSequential(ctx, proc)
	case ir.ProcessCombinational:
		lowerCombinational(ctx, proc)
	case ir.ProcessLatched:
		lowerLatched(ctx, proc)
	case ir.ProcessInitial:
		ctx.sink.Warn("W101", "initial block skipped during synthesis (simulation only)", proc.Span)
	}
}

func lowerSequential(ctx *lowerCtx, proc ir.Process) {
	clock, reset := extractClockReset(proc.Sensitivity)
	assigned := collectAssignedSignals(ctx, proc.Body)

	for _, target := range assigned {
		width := ctx.types.BitWidth(ctx.out.Signals.Get(target).Type)

		dValue, ok := lowerStmtForSignal(ctx, proc.Body, target)
		if !ok {
			dValue = target // no path found: feedback, hold value
		}

		qOut := newWire(ctx, width, ir.SignalReg)
		inputs := []ir.SignalID{dValue}
		if clock != nil {
			inputs = append(inputs, clock.Signal)
		}
		if reset != nil {
			inputs = append(inputs, reset.Signal)
			if rstVal, ok := findResetValue(ctx, proc.Body, target, reset.Signal); ok {
				inputs = append(inputs, lowerExpr(ctx, rstVal))
			}
		}

		addCell(ctx, "dff", ir.CellDff, inputs, []ir.SignalID{qOut}, nil)
		wireToTarget(ctx, target, qOut)
	}
}

func lowerCombinational(ctx *lowerCtx, proc ir.Process) {
	assigned := collectAssignedSignals(ctx, proc.Body)
	for _, target := range assigned {
		value, ok := lowerStmtForSignal(ctx, proc.Body, target)
		if ok {
			wireToTarget(ctx, target, value)
			continue
		}

		ctx.sink.Warn("W102", fmt.Sprintf(
			"incomplete assignment in combinational process infers latch for signal %d", int(target)),
			proc.Span)
		width := ctx.types.BitWidth(ctx.out.Signals.Get(target).Type)
		addCell(ctx, "inferred_latch", ir.CellLatch, []ir.SignalID{target}, []ir.SignalID{target},
			[]int64{int64(width)})
	}
}

func lowerLatched(ctx *lowerCtx, proc ir.Process) {
	assigned := collectAssignedSignals(ctx, proc.Body)
	ctx.sink.Warn("W103", "partial sensitivity list infers latch", proc.Span)
	for _, target := range assigned {
		width := ctx.types.BitWidth(ctx.out.Signals.Get(target).Type)
		dValue, ok := lowerStmtForSignal(ctx, proc.Body, target)
		if !ok {
			dValue = target
		}
		addCell(ctx, "latch", ir.CellLatch, []ir.SignalID{dValue}, []ir.SignalID{target},
			[]int64{int64(width)})
	}
}

// lowerStmtForSignal walks stmt looking for whatever drives target,
// returning the SignalID carrying that value. An If with both branches
// assigning target becomes a Mux cell; a Case becomes a priority mux
// chain; a Block keeps the last assignment (sequential-within-a-cycle
// semantics collapse to "last write wins" once synthesized).
func lowerStmtForSignal(ctx *lowerCtx, stmtID ir.StmtID, target ir.SignalID) (ir.SignalID, bool) {
	s := ctx.src.Stmts.Get(stmtID)
	switch s.Kind {
	case ir.StmtAssign:
		if signalRefContains(s.Target, target) {
			return lowerExpr(ctx, s.Value), true
		}
		return 0, false

	case ir.StmtIf:
		thenVal, thenOK := lowerStmtForSignal(ctx, s.Then, target)
		var elseVal ir.SignalID
		elseOK := false
		if s.HasElse {
			elseVal, elseOK = lowerStmtForSignal(ctx, s.Else, target)
		}

		switch {
		case thenOK && elseOK:
			cond := lowerExpr(ctx, s.Cond)
			width := ctx.types.BitWidth(ctx.out.Signals.Get(thenVal).Type)
			out := newWire(ctx, width, ir.SignalWire)
			addCell(ctx, "if_mux", ir.CellMux, []ir.SignalID{cond, thenVal, elseVal}, []ir.SignalID{out}, nil)
			return out, true
		case thenOK:
			return thenVal, true
		case elseOK:
			return elseVal, true
		default:
			return 0, false
		}

	case ir.StmtCase:
		return lowerCaseForSignal(ctx, s, target)

	case ir.StmtBlock:
		var result ir.SignalID
		found := false
		for _, inner := range s.Stmts {
			if v, ok := lowerStmtForSignal(ctx, inner, target); ok {
				result, found = v, true
			}
		}
		return result, found

	default:
		// Wait/Assertion/Display/Finish/Delay/Forever/Nop are not
		// synthesizable and drive nothing.
		return 0, false
	}
}

func lowerCaseForSignal(ctx *lowerCtx, s ir.Statement, target ir.SignalID) (ir.SignalID, bool) {
	subject := lowerExpr(ctx, s.Selector)
	subjectWidth := ctx.types.BitWidth(ctx.out.Signals.Get(subject).Type)

	var current ir.SignalID
	haveCurrent := false
	for _, arm := range s.Arms {
		if len(arm.Values) == 0 { // default arm
			if v, ok := lowerStmtForSignal(ctx, arm.Body, target); ok {
				current, haveCurrent = v, true
			}
		}
	}

	for i := len(s.Arms) - 1; i >= 0; i-- {
		arm := s.Arms[i]
		if len(arm.Values) == 0 {
			continue // default already folded in above
		}
		armVal, ok := lowerStmtForSignal(ctx, arm.Body, target)
		if !ok {
			continue
		}

		for _, pattern := range arm.Values {
			patRef := lowerExpr(ctx, pattern)
			eqOut := newWire(ctx, 1, ir.SignalWire)
			addCell(ctx, "case_eq", ir.CellEq, []ir.SignalID{subject, patRef}, []ir.SignalID{eqOut},
				[]int64{int64(subjectWidth)})

			width := ctx.types.BitWidth(ctx.out.Signals.Get(armVal).Type)
			var fallback ir.SignalID
			if haveCurrent {
				fallback = current
			} else {
				fallback = newConstZero(ctx, width)
			}

			out := newWire(ctx, width, ir.SignalWire)
			addCell(ctx, "case_mux", ir.CellMux, []ir.SignalID{eqOut, armVal, fallback}, []ir.SignalID{out}, nil)
			current, haveCurrent = out, true
		}
	}

	return current, haveCurrent
}

// extractClockReset reads the first sensitivity entry as the clock and the
// second (if present) as a synchronous reset — the convention an
// always_ff/process sensitivity list follows in this subset.
func extractClockReset(sensitivity []ir.SensitivityEntry) (clock, reset *ir.SensitivityEntry) {
	if len(sensitivity) > 0 {
		clock = &sensitivity[0]
	}
	if len(sensitivity) > 1 {
		reset = &sensitivity[1]
	}
	return clock, reset
}

// findResetValue looks for the pattern `if (reset) target = value;` inside
// a sequential process body, returning the reset-branch expression.
func findResetValue(ctx *lowerCtx, stmtID ir.StmtID, target, resetSignal ir.SignalID) (ir.ExprID, bool) {
	s := ctx.src.Stmts.Get(stmtID)
	switch s.Kind {
	case ir.StmtIf:
		if exprReferencesSignal(ctx.src, s.Cond, resetSignal) {
			if v, ok := findAssignValue(ctx.src, s.Then, target); ok {
				return v, true
			}
		}
		return 0, false
	case ir.StmtBlock:
		for _, inner := range s.Stmts {
			if v, ok := findResetValue(ctx, inner, target, resetSignal); ok {
				return v, true
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

func findAssignValue(src *ir.Module, stmtID ir.StmtID, target ir.SignalID) (ir.ExprID, bool) {
	s := src.Stmts.Get(stmtID)
	switch s.Kind {
	case ir.StmtAssign:
		if signalRefContains(s.Target, target) {
			return s.Value, true
		}
		return 0, false
	case ir.StmtBlock:
		for _, inner := range s.Stmts {
			if v, ok := findAssignValue(src, inner, target); ok {
				return v, true
			}
		}
		return 0, false
	case ir.StmtIf:
		return findAssignValue(src, s.Then, target)
	default:
		return 0, false
	}
}

func exprReferencesSignal(src *ir.Module, exprID ir.ExprID, signal ir.SignalID) bool {
	e := src.Exprs.Get(exprID)
	switch e.Kind {
	case ir.ExprSignal:
		return e.Signal == signal
	case ir.ExprUnary:
		return exprReferencesSignal(src, e.Operand, signal)
	case ir.ExprBinary:
		return exprReferencesSignal(src, e.Lhs, signal) || exprReferencesSignal(src, e.Rhs, signal)
	case ir.ExprTernary:
		return exprReferencesSignal(src, e.Cond, signal) ||
			exprReferencesSignal(src, e.WhenTrue, signal) ||
			exprReferencesSignal(src, e.WhenFalse, signal)
	default:
		return false
	}
}

// collectAssignedSignals returns, in a stable deduplicated order, every
// signal assigned anywhere in stmt.
func collectAssignedSignals(ctx *lowerCtx, stmtID ir.StmtID) []ir.SignalID {
	seen := make(map[ir.SignalID]bool)
	var out []ir.SignalID
	var walk func(ir.StmtID)
	walk = func(id ir.StmtID) {
		s := ctx.src.Stmts.Get(id)
		switch s.Kind {
		case ir.StmtAssign:
			for _, sigID := range collectSignalRefIDs(s.Target) {
				if !seen[sigID] {
					seen[sigID] = true
					out = append(out, sigID)
				}
			}
		case ir.StmtIf:
			walk(s.Then)
			if s.HasElse {
				walk(s.Else)
			}
		case ir.StmtCase:
			for _, arm := range s.Arms {
				walk(arm.Body)
			}
		case ir.StmtBlock:
			for _, inner := range s.Stmts {
				walk(inner)
			}
		}
	}
	walk(stmtID)
	return out
}

func collectSignalRefIDs(ref ir.SignalRef) []ir.SignalID {
	switch ref.Kind {
	case ir.RefSignal:
		return []ir.SignalID{ref.Signal}
	case ir.RefSlice:
		return []ir.SignalID{ref.Base}
	case ir.RefConcat:
		var out []ir.SignalID
		for _, p := range ref.Parts {
			out = append(out, collectSignalRefIDs(p)...)
		}
		return out
	default:
		return nil
	}
}

func signalRefContains(ref ir.SignalRef, target ir.SignalID) bool {
	switch ref.Kind {
	case ir.RefSignal:
		return ref.Signal == target
	case ir.RefSlice:
		return ref.Base == target
	case ir.RefConcat:
		for _, p := range ref.Parts {
			if signalRefContains(p, target) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// wireSignalRef drives target (an l-value, possibly a slice/concat) from
// source. wireToTarget handles the common plain-signal case directly.
func wireSignalRef(ctx *lowerCtx, target ir.SignalRef, source ir.SignalID) {
	switch target.Kind {
	case ir.RefSignal:
		wireToTarget(ctx, target.Signal, source)

	case ir.RefSlice:
		high, hok := constIntFromExpr(ctx.src, target.High)
		low, lok := constIntFromExpr(ctx.src, target.Low)
		if !hok || !lok {
			width := ctx.types.BitWidth(ctx.out.Signals.Get(source).Type)
			out := newWire(ctx, width, ir.SignalWire)
			addBlackBox(ctx, []ir.SignalID{target.Base, source}, []ir.SignalID{out}, "unsynthesizable-dynamic-slice-write")
			wireToTarget(ctx, target.Base, out)
			return
		}
		merged := mergeSliceIntoBase(ctx, target.Base, source, high, low)
		wireToTarget(ctx, target.Base, merged)

	case ir.RefConcat:
		// Verilog/SV concat-assignment semantics: the first part gets the
		// most-significant bits of source, the last part the least.
		offset := 0
		for i := len(target.Parts) - 1; i >= 0; i-- {
			part := target.Parts[i]
			width := signalRefWidth(ctx, part)
			slice := sliceSignal(ctx, source, offset+width-1, offset)
			wireSignalRef(ctx, part, slice)
			offset += width
		}
	}
}

// mergeSliceIntoBase builds base's new value as Concat(base[width-1:high+1],
// source, base[low-1:0]) — base untouched above/below the written range,
// source in the middle.
func mergeSliceIntoBase(ctx *lowerCtx, base ir.SignalID, source ir.SignalID, high, low int) ir.SignalID {
	baseWidth := ctx.types.BitWidth(ctx.out.Signals.Get(base).Type)
	var parts []ir.SignalID
	if high+1 <= baseWidth-1 {
		parts = append(parts, sliceSignal(ctx, base, baseWidth-1, high+1))
	}
	parts = append(parts, source)
	if low-1 >= 0 {
		parts = append(parts, sliceSignal(ctx, base, low-1, 0))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	out := newWire(ctx, baseWidth, ir.SignalWire)
	addCell(ctx, "slice_merge", ir.CellConcat, parts, []ir.SignalID{out}, nil)
	return out
}

// sliceSignal extracts bits [high, low] of sig into a freshly allocated
// signal via a Slice cell, or returns sig unchanged if the range already
// covers its full width.
func sliceSignal(ctx *lowerCtx, sig ir.SignalID, high, low int) ir.SignalID {
	width := ctx.types.BitWidth(ctx.out.Signals.Get(sig).Type)
	if low == 0 && high == width-1 {
		return sig
	}
	out := newWire(ctx, high-low+1, ir.SignalWire)
	addCell(ctx, "slice", ir.CellSlice, []ir.SignalID{sig}, []ir.SignalID{out}, []int64{int64(high), int64(low)})
	return out
}

func signalRefWidth(ctx *lowerCtx, ref ir.SignalRef) int {
	switch ref.Kind {
	case ir.RefSignal:
		return ctx.types.BitWidth(ctx.out.Signals.Get(ref.Signal).Type)
	case ir.RefSlice:
		high, _ := constIntFromExpr(ctx.src, ref.High)
		low, _ := constIntFromExpr(ctx.src, ref.Low)
		return high - low + 1
	case ir.RefConcat:
		total := 0
		for _, p := range ref.Parts {
			total += signalRefWidth(ctx, p)
		}
		return total
	default:
		return 1
	}
}

// constIntFromExpr returns the integer value of exprID when it is a
// literal — the only shape synthesizable slice bounds take once
// elaboration has resolved parameters.
func constIntFromExpr(src *ir.Module, exprID ir.ExprID) (int, bool) {
	e := src.Exprs.Get(exprID)
	if e.Kind != ir.ExprLiteral {
		return 0, false
	}
	v, ok := e.Literal.ToU64()
	return int(v), ok
}

// addBlackBox records an unsynthesizable construct as a CellBlackBox,
// tagged for diagnostics and waveform annotation, per ir.Cell's
// BlackBoxTag convention.
func addBlackBox(ctx *lowerCtx, inputs, outputs []ir.SignalID, tag string) ir.CellID {
	return ctx.out.Cells.Add(ir.Cell{
		Name:        "blackbox",
		Kind:        ir.CellBlackBox,
		Inputs:      inputs,
		Outputs:     outputs,
		BlackBoxTag: tag,
	})
}

// wireToTarget redirects whichever cell currently drives source's output
// to instead drive target, avoiding an extra buffer cell when possible.
func wireToTarget(ctx *lowerCtx, target, source ir.SignalID) {
	if target == source {
		return
	}

	redirected := false
	n := ctx.out.Cells.Len()
	for i := 0; i < n; i++ {
		id := ir.CellID(i)
		cell := ctx.out.Cells.Get(id)
		for j, outSig := range cell.Outputs {
			if outSig == source {
				cell.Outputs[j] = target
				redirected = true
			}
		}
		if redirected {
			ctx.out.Cells.Set(id, cell)
			break
		}
	}

	if !redirected {
		width := ctx.types.BitWidth(ctx.out.Signals.Get(source).Type)
		addCell(ctx, "buf", ir.CellSlice, []ir.SignalID{source}, []ir.SignalID{target}, []int64{int64(width - 1), 0})
	}
}

func newWire(ctx *lowerCtx, width int, kind ir.SignalKind) ir.SignalID {
	ty := widthType(ctx.types, width)
	return ctx.out.Signals.Add(ir.Signal{Name: fmt.Sprintf("n%d", ctx.out.Signals.Len()), Type: ty, Kind: kind})
}

func newConstZero(ctx *lowerCtx, width int) ir.SignalID {
	out := newWire(ctx, width, ir.SignalWire)
	bits := make([]int64, width)
	addCell(ctx, "const", ir.CellConst, nil, []ir.SignalID{out}, bits)
	return out
}

func widthType(types *ir.TypeDB, width int) ir.TypeID {
	if width == 1 {
		return types.Bit()
	}
	return types.BitVec(width, false)
}

func addCell(ctx *lowerCtx, name string, kind ir.CellKind, inputs, outputs []ir.SignalID, params []int64) ir.CellID {
	return ctx.out.Cells.Add(ir.Cell{
		Name:    name,
		Kind:    kind,
		Inputs:  inputs,
		Outputs: outputs,
		Params:  params,
	})
}
