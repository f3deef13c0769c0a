package ir

import "github.com/sarchlab/aionhdl/common"

// Design is the root of the IR: every elaborated module, the chosen top,
// and the shared type database and source map that every Span and TypeID
// in the design indexes into.
type Design struct {
	Modules Arena[ModuleID, *Module]
	Top     ModuleID

	Types  *TypeDB
	Source *common.SourceMap
}

// NewDesign creates an empty design with a fresh type database.
func NewDesign(source *common.SourceMap) *Design {
	return &Design{
		Types:  NewTypeDB(),
		Source: source,
	}
}

// AddModule allocates m into the design's module arena and returns its
// handle.
func (d *Design) AddModule(m *Module) ModuleID {
	return d.Modules.Add(m)
}

// ModuleByID returns the module at handle id.
func (d *Design) ModuleByID(id ModuleID) *Module {
	return d.Modules.Get(id)
}

// TopModule returns the design's top-level module.
func (d *Design) TopModule() *Module {
	return d.Modules.Get(d.Top)
}

// FindModule returns the handle of the first module named name, and
// whether one was found. Elaboration does not use it; it resolves
// instantiations through elaborate.Registry instead.
func (d *Design) FindModule(name string) (ModuleID, bool) {
	var found ModuleID
	ok := false
	d.Modules.All(func(h ModuleID, m *Module) bool {
		if m.Name == name {
			found = h
			ok = true
			return false
		}
		return true
	})
	return found, ok
}
