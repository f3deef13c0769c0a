package synth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/aionhdl/ir"
)

// DumpNetlist renders a synthesized module's cells as a table, one row per
// cell: name, kind, inputs, outputs, and any Params. Intended for `-dump`
// style CLI output and debugging a lowering pass's output by eye.
func DumpNetlist(m *ir.Module) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Netlist: %s (%d cells)", m.Name, m.Cells.Len()))
	t.AppendHeader(table.Row{"Cell", "Kind", "Inputs", "Outputs", "Params"})

	m.Cells.All(func(id ir.CellID, c ir.Cell) bool {
		row := table.Row{
			strconv.Itoa(int(id)) + ":" + c.Name,
			cellKindName(c.Kind, c.BlackBoxTag),
			signalList(c.Inputs),
			signalList(c.Outputs),
			paramList(c.Params),
		}
		t.AppendRow(row)
		return true
	})

	return t.Render()
}

func signalList(ids []ir.SignalID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ",")
}

func paramList(params []int64) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = strconv.FormatInt(p, 10)
	}
	return strings.Join(parts, ",")
}

func cellKindName(kind ir.CellKind, blackBoxTag string) string {
	switch kind {
	case ir.CellConst:
		return "const"
	case ir.CellNot:
		return "not"
	case ir.CellAnd:
		return "and"
	case ir.CellOr:
		return "or"
	case ir.CellXor:
		return "xor"
	case ir.CellAdd:
		return "add"
	case ir.CellSub:
		return "sub"
	case ir.CellMul:
		return "mul"
	case ir.CellEq:
		return "eq"
	case ir.CellLt:
		return "lt"
	case ir.CellShl:
		return "shl"
	case ir.CellShr:
		return "shr"
	case ir.CellMux:
		return "mux"
	case ir.CellDff:
		return "dff"
	case ir.CellLatch:
		return "latch"
	case ir.CellSlice:
		return "slice"
	case ir.CellConcat:
		return "concat"
	case ir.CellRepeat:
		return "repeat"
	case ir.CellInstance:
		return "instance"
	case ir.CellBlackBox:
		if blackBoxTag != "" {
			return "blackbox(" + blackBoxTag + ")"
		}
		return "blackbox"
	default:
		return "?"
	}
}
