package ir

// TypeKind distinguishes the handful of value shapes the IR carries.
// Record and Array are composite; Real and String have no bit width; every
// other kind has a fixed bit width.
type TypeKind uint8

const (
	TypeBit TypeKind = iota
	TypeBitVec
	TypeInteger
	TypeReal
	TypeLogic
	TypeString
	TypeRecord
	TypeArray
)

// TypeID is a handle into a TypeDB.
type TypeID int

// Field is a single named member of a Record type.
type Field struct {
	Name string
	Type TypeID
}

// Type describes one IR value shape. Only the fields relevant to Kind are
// populated; the rest are zero.
type Type struct {
	Kind TypeKind

	// TypeBitVec
	Width  int
	Signed bool

	// TypeRecord
	Fields []Field

	// TypeArray
	Elem    TypeID
	Length  int
}

// TypeDB interns Type values the same way common.Interner interns strings:
// structurally identical types collapse to the same TypeID, so two modules
// that both declare `bit [7:0]` share a handle.
type TypeDB struct {
	types []Type
	index map[string]TypeID
}

// NewTypeDB creates an empty type database preloaded with the singleton Bit
// and Logic types, since almost every signal in a design references one of
// them.
func NewTypeDB() *TypeDB {
	db := &TypeDB{index: make(map[string]TypeID)}
	db.intern(Type{Kind: TypeBit})
	db.intern(Type{Kind: TypeLogic})
	return db
}

// Bit returns the TypeID of the singleton 1-bit Bit type.
func (db *TypeDB) Bit() TypeID { return 0 }

// LogicType returns the TypeID of the singleton 1-bit 4-valued Logic type.
func (db *TypeDB) LogicType() TypeID { return 1 }

// BitVec interns (or looks up) an unsigned/signed bit-vector type of the
// given width.
func (db *TypeDB) BitVec(width int, signed bool) TypeID {
	return db.intern(Type{Kind: TypeBitVec, Width: width, Signed: signed})
}

// Integer interns the singleton Integer type (a 32-bit signed scalar, per
// the Verilog `integer` / VHDL `integer` convention).
func (db *TypeDB) Integer() TypeID {
	return db.intern(Type{Kind: TypeInteger, Width: 32, Signed: true})
}

// Real interns the singleton Real type.
func (db *TypeDB) Real() TypeID {
	return db.intern(Type{Kind: TypeReal})
}

// StringType interns the singleton String type.
func (db *TypeDB) StringType() TypeID {
	return db.intern(Type{Kind: TypeString})
}

// Record interns a record (struct) type with the given fields, in order.
func (db *TypeDB) Record(fields []Field) TypeID {
	return db.intern(Type{Kind: TypeRecord, Fields: fields})
}

// Array interns an array type of `length` elements of type `elem`.
func (db *TypeDB) Array(elem TypeID, length int) TypeID {
	return db.intern(Type{Kind: TypeArray, Elem: elem, Length: length})
}

// Get returns the Type for id.
func (db *TypeDB) Get(id TypeID) Type {
	return db.types[id]
}

// BitWidth returns the total bit width of a Bit, Logic, BitVec or Integer
// type. Panics for Record and Array, whose size depends on layout decisions
// made by a later pass (synthesis flattens them before width matters), and
// for the sizeless Real and String types.
func (db *TypeDB) BitWidth(id TypeID) int {
	t := db.types[id]
	switch t.Kind {
	case TypeBit, TypeLogic:
		return 1
	case TypeBitVec:
		return t.Width
	case TypeInteger:
		return 32
	default:
		panic("ir: BitWidth called on a composite or sizeless type")
	}
}

func (db *TypeDB) intern(t Type) TypeID {
	key := typeKey(t)
	if id, ok := db.index[key]; ok {
		return id
	}
	id := TypeID(len(db.types))
	db.types = append(db.types, t)
	db.index[key] = id
	return id
}

func typeKey(t Type) string {
	switch t.Kind {
	case TypeBitVec:
		if t.Signed {
			return "bv:s:" + itoa(t.Width)
		}
		return "bv:u:" + itoa(t.Width)
	case TypeArray:
		return "arr:" + itoa(int(t.Elem)) + ":" + itoa(t.Length)
	case TypeRecord:
		key := "rec:"
		for _, f := range t.Fields {
			key += f.Name + "=" + itoa(int(f.Type)) + ";"
		}
		return key
	default:
		return "k:" + itoa(int(t.Kind))
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
