// Package msgspec parses ROS .msg/.srv text definitions into a
// language-neutral IR, resolves cross-package references across a search
// path, and computes the canonical ROS MD5 fingerprint for a resolved
// message or service.
package msgspec

// PrimitiveKind enumerates the ROS primitive field/constant types.
type PrimitiveKind string

const (
	Bool     PrimitiveKind = "bool"
	Int8     PrimitiveKind = "int8"
	Int16    PrimitiveKind = "int16"
	Int32    PrimitiveKind = "int32"
	Int64    PrimitiveKind = "int64"
	UInt8    PrimitiveKind = "uint8"
	UInt16   PrimitiveKind = "uint16"
	UInt32   PrimitiveKind = "uint32"
	UInt64   PrimitiveKind = "uint64"
	Float32  PrimitiveKind = "float32"
	Float64  PrimitiveKind = "float64"
	String   PrimitiveKind = "string"
	Time     PrimitiveKind = "time"
	Duration PrimitiveKind = "duration"
)

// primitiveKinds is the set of recognized primitive type names, used by the
// parser to distinguish a primitive field/constant type from a message
// reference.
var primitiveKinds = map[string]PrimitiveKind{
	"bool": Bool, "int8": Int8, "int16": Int16, "int32": Int32, "int64": Int64,
	"uint8": UInt8, "uint16": UInt16, "uint32": UInt32, "uint64": UInt64,
	"float32": Float32, "float64": Float64, "string": String,
	"time": Time, "duration": Duration,
	// ROS1 byte/char are aliases kept for source compatibility; the
	// canonical fingerprint text must still use "byte"/"char", not the
	// uint8/int8 they alias to.
	"byte": PrimitiveKind("byte"), "char": PrimitiveKind("char"),
}

// ArrayKind describes whether a field is scalar, a dynamic array, or a
// fixed-size array.
type ArrayKind int

const (
	ArrayNone ArrayKind = iota
	ArrayDynamic
	ArrayFixed
)

// Type is a field or constant's declared type: either a ROS primitive or a
// reference to another message in the same resolution set.
type Type struct {
	Primitive PrimitiveKind // set when Package == "" && Name == ""
	Package   string        // set for a Message(pkg, name) reference
	Name      string        // set for a Message(pkg, name) reference
}

// IsMessage reports whether t references another message rather than a
// primitive.
func (t Type) IsMessage() bool {
	return t.Package != "" || t.Name != ""
}

// String renders the type the way it appears in canonical fingerprint text:
// "pkg/Name" for message references, the bare primitive name otherwise.
func (t Type) String() string {
	if t.IsMessage() {
		return t.Package + "/" + t.Name
	}
	return string(t.Primitive)
}

// Field is a single ordered member of a MessageSpec.
type Field struct {
	Name      string
	Kind      Type
	Array     ArrayKind
	ArraySize int // valid only when Array == ArrayFixed; must be > 0
}

// Constant is a single ordered named literal of a MessageSpec.
type Constant struct {
	Name    string
	Kind    PrimitiveKind
	Literal string // exact text as written in source_text, never re-rendered
}

// MessageSpec is the parsed, but not yet resolved, IR of one .msg file (or
// half of a .srv file).
type MessageSpec struct {
	Package    string
	Name       string
	Fields     []Field
	Constants  []Constant
	SourceText string
}

// FullName returns "package/Name", the canonical identifier for a message
// spec within a resolution set.
func (m *MessageSpec) FullName() string {
	return m.Package + "/" + m.Name
}

// ServiceSpec is the parsed, resolved IR of one .srv file: a request and a
// response message, both implicitly named "<ServiceName>Request" /
// "<ServiceName>Response" in the service's own package.
type ServiceSpec struct {
	Package  string
	Name     string
	Request  *MessageSpec
	Response *MessageSpec
}

// FullName returns "package/Name" for the service itself.
func (s *ServiceSpec) FullName() string {
	return s.Package + "/" + s.Name
}
