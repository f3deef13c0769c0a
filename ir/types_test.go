package ir

import "testing"

func TestTypeDBInternsStructurally(t *testing.T) {
	db := NewTypeDB()
	a := db.BitVec(8, false)
	b := db.BitVec(8, false)
	if a != b {
		t.Fatal("two requests for the same bit-vector shape should share a TypeID")
	}
	c := db.BitVec(8, true)
	if a == c {
		t.Fatal("signedness must distinguish types")
	}
}

func TestTypeDBBitWidth(t *testing.T) {
	db := NewTypeDB()
	if db.BitWidth(db.Bit()) != 1 {
		t.Fatal("Bit width should be 1")
	}
	wide := db.BitVec(32, false)
	if db.BitWidth(wide) != 32 {
		t.Fatal("BitVec width mismatch")
	}
	if db.BitWidth(db.Integer()) != 32 {
		t.Fatal("Integer width should be 32")
	}
}

func TestTypeDBBitWidthPanicsOnComposite(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for composite type width")
		}
	}()
	db := NewTypeDB()
	arr := db.Array(db.Bit(), 4)
	db.BitWidth(arr)
}

func TestTypeDBRecordFieldOrderPreserved(t *testing.T) {
	db := NewTypeDB()
	rec := db.Record([]Field{
		{Name: "valid", Type: db.Bit()},
		{Name: "data", Type: db.BitVec(8, false)},
	})
	got := db.Get(rec)
	if len(got.Fields) != 2 || got.Fields[0].Name != "valid" || got.Fields[1].Name != "data" {
		t.Fatalf("unexpected field order: %+v", got.Fields)
	}
}
