package schema

import "github.com/google/uuid"

// NewID returns a fresh opaque element id
func NewID() string {
	return uuid.NewString()
}

// NewMessage creates an empty message with a fresh id
func NewMessage(name string) *Message {
	return &Message{
		ID:       NewID(),
		Name:     name,
		Fields:   make([]*Field, 0),
		Messages: make([]*Message, 0),
		Enums:    make([]*Enum, 0),
	}
}

// NewEnum creates an empty enum with a fresh id
func NewEnum(name string) *Enum {
	return &Enum{
		ID:     NewID(),
		Name:   name,
		Values: make([]*EnumValue, 0),
	}
}

// NewService creates a service without methods and with a fresh id
func NewService(name string) *Service {
	return &Service{
		ID:      NewID(),
		Name:    name,
		Methods: make([]*RPCMethod, 0),
	}
}

// NewRPCMethod creates a unary method with a fresh id
func NewRPCMethod(name, inputType, outputType string) *RPCMethod {
	return &RPCMethod{
		ID:         NewID(),
		Name:       name,
		InputType:  inputType,
		OutputType: outputType,
	}
}

// NewField creates a field with a fresh id
func NewField(name, typeName string, number int) *Field {
	return &Field{
		ID:     NewID(),
		Name:   name,
		Type:   typeName,
		Number: number,
	}
}

// NewEnumValue creates an enum value with a fresh id
func NewEnumValue(name string, number int) *EnumValue {
	return &EnumValue{
		ID:     NewID(),
		Name:   name,
		Number: number,
	}
}

// AddField appends a field and returns the message for chaining
func (m *Message) AddField(f *Field) *Message {
	m.Fields = append(m.Fields, f)
	return m
}

// AddValue appends a value and returns the enum for chaining
func (e *Enum) AddValue(v *EnumValue) *Enum {
	e.Values = append(e.Values, v)
	return e
}

// Prepare fills missing ids in el and its members and sets el's parentId.
// Nested members get parentIds pointing at their own container.
func Prepare(el Element, parentID string) {
	if isNil(el) {
		return
	}
	normalize(el, "")
	switch v := el.(type) {
	case *Message:
		v.ParentID = parentID
	case *Enum:
		v.ParentID = parentID
	case *Service:
		v.ParentID = parentID
	case *RPCMethod:
		v.ParentID = parentID
	}
}
