package ir

import (
	"testing"

	"github.com/sarchlab/aionhdl/common"
)

func TestFindModuleByName(t *testing.T) {
	d := NewDesign(common.NewSourceMap())
	top := NewModule("top", common.NoSpan)
	alu := NewModule("alu", common.NoSpan)
	d.Top = d.AddModule(top)
	d.AddModule(alu)

	id, ok := d.FindModule("alu")
	if !ok {
		t.Fatal("expected to find alu")
	}
	if d.ModuleByID(id).Name != "alu" {
		t.Fatal("ModuleByID returned the wrong module")
	}
	if _, ok := d.FindModule("missing"); ok {
		t.Fatal("should not find a module that was never added")
	}
}

func TestTopModule(t *testing.T) {
	d := NewDesign(common.NewSourceMap())
	top := NewModule("top", common.NoSpan)
	d.Top = d.AddModule(top)
	if d.TopModule().Name != "top" {
		t.Fatal("TopModule() mismatch")
	}
}
