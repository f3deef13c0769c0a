package elaborate_test

import (
	"testing"

	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/diagnostics"
	"github.com/sarchlab/aionhdl/elaborate"
	"github.com/sarchlab/aionhdl/ir"
)

func TestElaborateUnknownModuleFallsBackToBlackBox(t *testing.T) {
	registry := elaborate.NewRegistry()
	types := ir.NewTypeDB()
	sink := diagnostics.NewSink()

	design := elaborate.NewBuilder(registry, types, sink).Build("nonexistent", nil)
	if !design.TopModule().IsBlackBox {
		t.Fatal("expected unknown top module to elaborate to a black box")
	}
	if !sink.HasErrors() {
		t.Fatal("expected a diagnostic for the unknown module")
	}
}

func TestElaborateCycleFallsBackToBlackBox(t *testing.T) {
	registry := elaborate.NewRegistry()
	types := ir.NewTypeDB()
	sink := diagnostics.NewSink()

	self := ir.NewModule("ring", common.NoSpan)
	self.Cells.Add(ir.Cell{Name: "u0", Kind: ir.CellInstance, InstanceModuleName: "ring"})
	registry.Register(self)

	design := elaborate.NewBuilder(registry, types, sink).Build("ring", nil)
	top := design.TopModule()
	if top.IsBlackBox {
		t.Fatal("top-level ring module itself should elaborate normally")
	}

	child := top.Cells.Get(0)
	childModule := design.ModuleByID(child.InstanceOf)
	if !childModule.IsBlackBox {
		t.Fatal("the cyclic self-instantiation should fall back to a black box")
	}
	if !sink.HasErrors() {
		t.Fatal("expected a cycle diagnostic")
	}
}

func TestElaborateInstanceCacheSharesIdenticalOverrides(t *testing.T) {
	registry := elaborate.NewRegistry()
	types := ir.NewTypeDB()
	sink := diagnostics.NewSink()

	leaf := ir.NewModule("leaf", common.NoSpan)
	registry.Register(leaf)

	top := ir.NewModule("top", common.NoSpan)
	top.Cells.Add(ir.Cell{Name: "u0", Kind: ir.CellInstance, InstanceModuleName: "leaf"})
	top.Cells.Add(ir.Cell{Name: "u1", Kind: ir.CellInstance, InstanceModuleName: "leaf"})
	registry.Register(top)

	design := elaborate.NewBuilder(registry, types, sink).Build("top", nil)
	u0 := design.TopModule().Cells.Get(0).InstanceOf
	u1 := design.TopModule().Cells.Get(1).InstanceOf
	if u0 != u1 {
		t.Fatal("two identically-parameterised instantiations of leaf should share one elaborated module")
	}
}

func TestElaborateDistinctOverridesGetDistinctInstances(t *testing.T) {
	registry := elaborate.NewRegistry()
	types := ir.NewTypeDB()
	sink := diagnostics.NewSink()

	leaf := ir.NewModule("leaf", common.NoSpan)
	registry.Register(leaf)

	interner := common.NewInterner()
	width := interner.GetOrIntern("WIDTH")

	top := ir.NewModule("top", common.NoSpan)
	top.Cells.Add(ir.Cell{
		Name: "u0", Kind: ir.CellInstance, InstanceModuleName: "leaf",
		InstanceOverrides: ir.ConstEnv{width: ir.Int64(8)},
	})
	top.Cells.Add(ir.Cell{
		Name: "u1", Kind: ir.CellInstance, InstanceModuleName: "leaf",
		InstanceOverrides: ir.ConstEnv{width: ir.Int64(16)},
	})
	registry.Register(top)

	design := elaborate.NewBuilder(registry, types, sink).Build("top", nil)
	u0 := design.TopModule().Cells.Get(0).InstanceOf
	u1 := design.TopModule().Cells.Get(1).InstanceOf
	if u0 == u1 {
		t.Fatal("differently-parameterised instantiations of leaf must not share a cache entry")
	}
}
