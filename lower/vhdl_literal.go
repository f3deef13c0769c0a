package lower

import (
	"strconv"
	"strings"

	"github.com/sarchlab/aionhdl/fourval"
)

// parseVHDLLiteral parses a VHDL-2008 literal: a plain decimal integer
// literal (with optional underscore separators), or a based bit-string
// literal such as X"FF", B"1010", or O"17". Unlike the Verilog family,
// VHDL bit-string literals carry no separate size prefix — their width is
// the number of bits the digit string expands to (4 bits per hex digit,
// 3 per octal digit, 1 per binary digit).
func parseVHDLLiteral(text string) (fourval.Vec, bool) {
	clean := strings.ReplaceAll(text, "_", "")

	if len(clean) >= 3 && clean[1] == '"' && clean[len(clean)-1] == '"' {
		base := clean[0]
		digits := clean[2 : len(clean)-1]
		return parseVHDLBitString(base, digits)
	}

	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return fourval.Vec{}, false
	}
	width := fourval.MinWidthForValue(uint64(n))
	return fourval.FromU64(width, uint64(n)), true
}

func parseVHDLBitString(base byte, digits string) (fourval.Vec, bool) {
	var bitsPerDigit int
	var radix int
	switch base {
	case 'b', 'B':
		bitsPerDigit, radix = 1, 2
	case 'o', 'O':
		bitsPerDigit, radix = 3, 8
	case 'x', 'X':
		bitsPerDigit, radix = 4, 16
	default:
		return fourval.Vec{}, false
	}

	width := len(digits) * bitsPerDigit
	if width == 0 {
		return fourval.Vec{}, false
	}

	vec := fourval.New(width)
	pos := width - bitsPerDigit
	for i := 0; i < len(digits); i, pos = i+1, pos-bitsPerDigit {
		d, err := strconv.ParseUint(string(digits[i]), radix, 8)
		if err != nil {
			return fourval.Vec{}, false
		}
		for b := 0; b < bitsPerDigit; b++ {
			vec.SetBit(pos+b, fourval.FromBit(uint((d>>uint(b))&1)))
		}
	}
	return vec, true
}
