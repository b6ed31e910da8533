package schema

// Kind identifies the concrete type behind an Element
type Kind string

const (
	KindMessage   Kind = "message"
	KindEnum      Kind = "enum"
	KindService   Kind = "service"
	KindRPCMethod Kind = "rpcMethod"
)

// Valid reports whether k names one of the four element kinds
func (k Kind) Valid() bool {
	switch k {
	case KindMessage, KindEnum, KindService, KindRPCMethod:
		return true
	}
	return false
}

// ScalarType is a proto3 scalar value type
type ScalarType string

const (
	TypeDouble   ScalarType = "double"
	TypeFloat    ScalarType = "float"
	TypeInt32    ScalarType = "int32"
	TypeInt64    ScalarType = "int64"
	TypeUint32   ScalarType = "uint32"
	TypeUint64   ScalarType = "uint64"
	TypeSint32   ScalarType = "sint32"
	TypeSint64   ScalarType = "sint64"
	TypeFixed32  ScalarType = "fixed32"
	TypeFixed64  ScalarType = "fixed64"
	TypeSfixed32 ScalarType = "sfixed32"
	TypeSfixed64 ScalarType = "sfixed64"
	TypeBool     ScalarType = "bool"
	TypeString   ScalarType = "string"
	TypeBytes    ScalarType = "bytes"
)

// ScalarTypes lists every proto3 scalar type in declaration order
var ScalarTypes = []ScalarType{
	TypeDouble, TypeFloat,
	TypeInt32, TypeInt64, TypeUint32, TypeUint64,
	TypeSint32, TypeSint64,
	TypeFixed32, TypeFixed64, TypeSfixed32, TypeSfixed64,
	TypeBool, TypeString, TypeBytes,
}

// IsScalar reports whether typeName is a proto3 scalar type rather than a
// reference to a message or enum
func IsScalar(typeName string) bool {
	for _, t := range ScalarTypes {
		if string(t) == typeName {
			return true
		}
	}
	return false
}

// Label is the optional cardinality prefix of a field
type Label string

const (
	LabelNone     Label = ""
	LabelOptional Label = "optional"
	LabelRepeated Label = "repeated"
)

// Element is a node of the schema forest. It is implemented by *Message,
// *Enum, *Service and *RPCMethod.
type Element interface {
	GetID() string
	GetName() string
	GetParentID() string
	Kind() Kind
}

// Field is a single field of a message
type Field struct {
	ID      string                 `json:"id" yaml:"id"`
	Name    string                 `json:"name" yaml:"name"`
	Type    string                 `json:"type" yaml:"type"`
	Number  int                    `json:"number" yaml:"number"`
	Label   Label                  `json:"label,omitempty" yaml:"label,omitempty"`
	Options map[string]interface{} `json:"options,omitempty" yaml:"options,omitempty"`
	Comment string                 `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// EnumValue is a single named constant of an enum
type EnumValue struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Number  int    `json:"number" yaml:"number"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Enum is an enumeration, either top-level or nested in a message
type Enum struct {
	ID       string       `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	Values   []*EnumValue `json:"values" yaml:"values"`
	Comment  string       `json:"comment,omitempty" yaml:"comment,omitempty"`
	ParentID string       `json:"parentId,omitempty" yaml:"parentId,omitempty"`
}

func (e *Enum) GetID() string       { return e.ID }
func (e *Enum) GetName() string     { return e.Name }
func (e *Enum) GetParentID() string { return e.ParentID }
func (e *Enum) Kind() Kind          { return KindEnum }

// Message is a message definition. Nested messages and enums are owned by
// the message; ParentID on a child is only a lookup key.
type Message struct {
	ID       string     `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name"`
	Fields   []*Field   `json:"fields" yaml:"fields"`
	Messages []*Message `json:"messages" yaml:"messages"`
	Enums    []*Enum    `json:"enums" yaml:"enums"`
	Comment  string     `json:"comment,omitempty" yaml:"comment,omitempty"`
	ParentID string     `json:"parentId,omitempty" yaml:"parentId,omitempty"`
}

func (m *Message) GetID() string       { return m.ID }
func (m *Message) GetName() string     { return m.Name }
func (m *Message) GetParentID() string { return m.ParentID }
func (m *Message) Kind() Kind          { return KindMessage }

// RPCMethod is a single rpc of a service. Empty InputType or OutputType
// means the call carries no payload in that direction.
type RPCMethod struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	InputType       string `json:"inputType" yaml:"inputType"`
	OutputType      string `json:"outputType" yaml:"outputType"`
	ClientStreaming bool   `json:"clientStreaming,omitempty" yaml:"clientStreaming,omitempty"`
	ServerStreaming bool   `json:"serverStreaming,omitempty" yaml:"serverStreaming,omitempty"`
	Comment         string `json:"comment,omitempty" yaml:"comment,omitempty"`
	ParentID        string `json:"parentId,omitempty" yaml:"parentId,omitempty"`
}

func (r *RPCMethod) GetID() string       { return r.ID }
func (r *RPCMethod) GetName() string     { return r.Name }
func (r *RPCMethod) GetParentID() string { return r.ParentID }
func (r *RPCMethod) Kind() Kind          { return KindRPCMethod }

// Service is a service definition holding RPC methods
type Service struct {
	ID       string       `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	Methods  []*RPCMethod `json:"methods" yaml:"methods"`
	Comment  string       `json:"comment,omitempty" yaml:"comment,omitempty"`
	ParentID string       `json:"parentId,omitempty" yaml:"parentId,omitempty"`
}

func (s *Service) GetID() string       { return s.ID }
func (s *Service) GetName() string     { return s.Name }
func (s *Service) GetParentID() string { return s.ParentID }
func (s *Service) Kind() Kind          { return KindService }

// isNil reports whether el is nil or a typed nil pointer
func isNil(el Element) bool {
	switch v := el.(type) {
	case nil:
		return true
	case *Message:
		return v == nil
	case *Enum:
		return v == nil
	case *Service:
		return v == nil
	case *RPCMethod:
		return v == nil
	}
	return false
}
