// Package elaborate resolves a design's module hierarchy into a single
// flattened-by-reference tree of module instances: it propagates
// parameter overrides down through instantiations, caches identically
// parameterised instantiations of the same module so they elaborate only
// once, and falls back to a black-box stand-in for any module name it
// cannot resolve or that would recurse into itself.
package elaborate

import (
	"fmt"
	"sort"

	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/diagnostics"
	"github.com/sarchlab/aionhdl/ir"
)

// Registry holds every module definition the elaborator can instantiate
// by name, populated from the output of the lower package before
// elaboration begins.
type Registry struct {
	byName map[string]*ir.Module
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*ir.Module)}
}

// Register adds m to the registry under its own Name. A later
// registration of the same name overwrites the earlier one, matching
// "last definition wins" re-elaboration semantics for iterative tool use.
func (r *Registry) Register(m *ir.Module) {
	r.byName[m.Name] = m
}

// Lookup returns the registered module named name.
func (r *Registry) Lookup(name string) (*ir.Module, bool) {
	m, ok := r.byName[name]
	return m, ok
}

// overrideKey is the instance-cache key: a module name paired with its
// normalised (sorted by interned parameter handle) override list, so two
// instantiations that pass the same overrides in a different source
// order still share a cache entry.
type overrideKey struct {
	module string
	args   string
}

// Builder elaborates a design's top module, using a fluent
// With...().Build(name) construction idiom: configuration methods
// return a modified copy of the Builder value, and the terminal Build
// call performs the actual work.
type Builder struct {
	registry *Registry
	types    *ir.TypeDB
	sink     *diagnostics.Sink
}

// NewBuilder creates an elaboration Builder over the given module
// registry, type database, and diagnostic sink.
func NewBuilder(registry *Registry, types *ir.TypeDB, sink *diagnostics.Sink) Builder {
	return Builder{registry: registry, types: types, sink: sink}
}

// WithRegistry returns a copy of b targeting a different module registry.
func (b Builder) WithRegistry(registry *Registry) Builder {
	b.registry = registry
	return b
}

// WithSink returns a copy of b reporting diagnostics to a different sink.
func (b Builder) WithSink(sink *diagnostics.Sink) Builder {
	b.sink = sink
	return b
}

// elaborator carries the mutable state a single Build call needs: the
// instance cache, the design under construction, and the cycle-detection
// stack of module names currently being elaborated.
type elaborator struct {
	registry   *Registry
	types      *ir.TypeDB
	sink       *diagnostics.Sink
	design     *ir.Design
	cache      map[overrideKey]ir.ModuleID
	inProgress map[string]bool
}

// Build elaborates the module named topName with the given parameter
// overrides, returning the resulting Design with Top set to the
// elaborated instance.
func (b Builder) Build(topName string, overrides ir.ConstEnv) *ir.Design {
	e := &elaborator{
		registry:   b.registry,
		types:      b.types,
		sink:       b.sink,
		design:     ir.NewDesign(common.NewSourceMap()),
		cache:      make(map[overrideKey]ir.ModuleID),
		inProgress: make(map[string]bool),
	}
	top := e.elaborateInstance(topName, overrides)
	e.design.Top = top
	return e.design
}

// elaborateInstance resolves a single instantiation of moduleName with
// the given overrides: a cycle (moduleName already in progress on this
// call stack) falls back to an uncached black box; a cache hit returns the
// existing ModuleID; an unknown name falls back to a black box; otherwise
// the module is cloned, and the result is cached and added to the design.
func (e *elaborator) elaborateInstance(moduleName string, overrides ir.ConstEnv) ir.ModuleID {
	key := overrideKey{module: moduleName, args: normaliseOverrides(overrides)}
	if e.inProgress[moduleName] {
		e.sink.Error("E401", "instantiation cycle detected at module `"+moduleName+"`", common.NoSpan)
		return e.design.AddModule(blackBox(moduleName))
	}

	if id, ok := e.cache[key]; ok {
		return id
	}

	def, ok := e.registry.Lookup(moduleName)
	if !ok {
		e.sink.Error("E402", "unknown module `"+moduleName+"`", common.NoSpan)
		id := e.design.AddModule(blackBox(moduleName))
		e.cache[key] = id
		return id
	}

	e.inProgress[moduleName] = true
	instance := cloneModule(def)
	bindParams(instance, overrides)
	id := e.design.AddModule(instance)
	e.cache[key] = id

	for ci, cell := range instance.Cells.Items() {
		if cell.Kind != ir.CellInstance {
			continue
		}
		childID := e.elaborateInstance(cell.InstanceModuleName, cell.InstanceOverrides)
		cell.InstanceOf = childID
		instance.Cells.Set(ir.CellID(ci), cell)
	}

	delete(e.inProgress, moduleName)
	return id
}

// blackBox builds a module stand-in for a name elaboration could not
// resolve: an empty module with no ports, so downstream passes have
// something to point an instance Cell at rather than needing to special
// case a nil ModuleID everywhere.
func blackBox(name string) *ir.Module {
	m := ir.NewModule(name, common.NoSpan)
	m.IsBlackBox = true
	return m
}

// cloneModule deep-copies def's structural content so two instantiations
// of the same source module never alias each other's signal/cell arenas.
// Setting InstanceOf on the clone's instance cells leaves def untouched.
func cloneModule(def *ir.Module) *ir.Module {
	clone := ir.NewModule(def.Name, def.Span)
	clone.Params = append([]ir.Param(nil), def.Params...)
	clone.Ports = append([]ir.SignalID(nil), def.Ports...)

	for _, s := range def.Signals.Items() {
		clone.Signals.Add(s)
	}
	for _, c := range def.Cells.Items() {
		clone.Cells.Add(c)
	}
	for _, p := range def.Processes.Items() {
		clone.Processes.Add(p)
	}
	for _, e := range def.Exprs.Items() {
		clone.Exprs.Add(e)
	}
	for _, s := range def.Stmts.Items() {
		clone.Stmts.Add(s)
	}
	clone.Concurrent = append([]ir.ConcurrentAssign(nil), def.Concurrent...)
	return clone
}

// bindParams leaves instance unchanged: parameter values are neither
// resolved against overrides or defaults nor stored on the clone, and no
// signal width is recomputed from them. Overrides affect elaboration only
// through the instance-cache key.
func bindParams(instance *ir.Module, overrides ir.ConstEnv) {
	_ = instance
	_ = overrides
}

// normaliseOverrides renders overrides as a sorted "ident=value;" string
// so the instance cache key doesn't depend on map iteration order.
func normaliseOverrides(overrides ir.ConstEnv) string {
	idents := make([]common.Ident, 0, len(overrides))
	for id := range overrides {
		idents = append(idents, id)
	}
	sort.Slice(idents, func(i, j int) bool { return idents[i] < idents[j] })

	out := ""
	for _, id := range idents {
		v := overrides[id]
		n, _ := v.ToInt64()
		out += fmt.Sprintf("%d=%d;", id, n)
	}
	return out
}
