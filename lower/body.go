package lower

import (
	"strconv"
	"strings"

	"github.com/sarchlab/aionhdl/ast"
	"github.com/sarchlab/aionhdl/consteval"
	"github.com/sarchlab/aionhdl/fourval"
	"github.com/sarchlab/aionhdl/ir"
)

// lowerBody lowers m's concurrent assignments and processes into ctx's
// module. Shared across all three dialects: once ports/signals are
// declared and literal lowering is dialect-dispatched, statement and
// process lowering are identical.
func lowerBody(ctx *Context, d Dialect, m *ast.Module) {
	for i := range m.Concurrent {
		s := &m.Concurrent[i]
		target := LowerLValue(ctx, d, s.Target)
		value := LowerExpr(ctx, d, s.Value)
		ctx.Module.Concurrent = append(ctx.Module.Concurrent, ir.ConcurrentAssign{
			Target: target,
			Value:  value,
			Span:   s.Span,
		})
	}

	for i := range m.Processes {
		p := &m.Processes[i]
		body := LowerStmt(ctx, d, p.Body)
		sens := LowerSensitivity(ctx, p.Sensitivity)
		ctx.Module.Processes.Add(ir.Process{
			Name:        p.Name,
			Kind:        classifyProcess(p),
			Body:        body,
			Sensitivity: sens,
			Span:        p.Span,
		})
	}
}

// literalWidth returns the explicit bit width encoded in a sized Verilog/
// SystemVerilog literal's source text ("8'hFF" -> 8), or the minimum
// width needed to hold an unsized literal's value if no size prefix is
// present.
func literalWidth(text string) int {
	clean := strings.ReplaceAll(text, "_", "")
	tick := strings.IndexByte(clean, '\'')
	if tick <= 0 {
		// No size prefix at all (a bare decimal, or an unsized based
		// literal like 'hFF): width comes from the parsed value.
		if tick == 0 {
			v, ok := consteval.ParseVerilogLiteral(clean)
			if !ok {
				return 32
			}
			if v < 0 {
				v = -v
			}
			return fourval.MinWidthForValue(uint64(v))
		}
		n, err := strconv.ParseUint(clean, 10, 64)
		if err != nil {
			return 32
		}
		return fourval.MinWidthForValue(n)
	}
	w, err := strconv.Atoi(clean[:tick])
	if err != nil || w <= 0 {
		return 32
	}
	return w
}

// vecFromSigned packs a folded literal value into a width-bit Vec,
// truncating to the low `width` bits the way Verilog literal truncation
// does.
func vecFromSigned(value int64, width int) fourval.Vec {
	return fourval.FromU64(width, uint64(value)&maskFor(width))
}

func maskFor(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}
