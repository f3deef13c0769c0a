package lower

import "github.com/sarchlab/aionhdl/fourval"

// poisonVec is the substitute value lowering uses for any expression it
// cannot resolve, so a single bad reference doesn't stop the rest of a
// module from lowering.
func poisonVec() fourval.Vec {
	return fourval.AllX(1)
}
