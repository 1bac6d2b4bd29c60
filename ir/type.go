package ir

type Type int

const (
	NullType Type = iota
	NumberType
	StringType
	BoolType
	ObjectType
	ArrayType
)

var typeNames = [...]string{
	NullType:   "Null",
	NumberType: "Number",
	StringType: "String",
	BoolType:   "Bool",
	ObjectType: "Object",
	ArrayType:  "Array",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "<unknown type>"
	}
	return typeNames[t]
}

// IsLeaf reports whether nodes of type t hold no child nodes.
func (t Type) IsLeaf() bool {
	return t != ObjectType && t != ArrayType
}
