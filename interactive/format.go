package interactive

import (
	"fmt"

	"github.com/sarchlab/aionhdl/fourval"
)

// FormatValue renders a signal value the way a waveform viewer or REPL
// would: a lone bit as "0"/"1"/"x"/"z", a fully-known multi-bit value as
// hex ("8'hff"), and anything with an X/Z bit as binary ("4'bz0x1").
func FormatValue(v fourval.Vec) string {
	w := v.Width()
	if w == 1 {
		return v.Bit(0).String()
	}

	if hasUnknown(v) {
		return fmt.Sprintf("%d'b%s", w, v.String())
	}

	n, ok := v.ToU64()
	if !ok {
		return fmt.Sprintf("%d'b%s", w, v.String())
	}
	return fmt.Sprintf("%d'h%x", w, n)
}

func hasUnknown(v fourval.Vec) bool {
	for i := 0; i < v.Width(); i++ {
		if !v.Bit(i).IsKnown() {
			return true
		}
	}
	return false
}
