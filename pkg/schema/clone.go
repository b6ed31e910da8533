package schema

// Clone returns a deep copy of the model. Snapshots taken this way can be
// rendered while the original keeps being edited.
func (m *Model) Clone() *Model {
	return &Model{elements: CloneElements(m.elements)}
}

// CloneElements deep-copies a sequence of elements
func CloneElements(elements []Element) []Element {
	if elements == nil {
		return nil
	}
	out := make([]Element, 0, len(elements))
	for _, el := range elements {
		if c := CloneElement(el); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// CloneElement deep-copies a single element. Unknown implementations and
// nil values yield nil; nil members are dropped from the copy.
func CloneElement(el Element) Element {
	if isNil(el) {
		return nil
	}
	switch v := el.(type) {
	case *Message:
		return cloneMessage(v)
	case *Enum:
		return cloneEnum(v)
	case *Service:
		return cloneService(v)
	case *RPCMethod:
		c := *v
		return &c
	}
	return nil
}

func cloneMessage(m *Message) *Message {
	c := *m
	if m.Fields != nil {
		c.Fields = make([]*Field, 0, len(m.Fields))
		for _, f := range m.Fields {
			if f != nil {
				c.Fields = append(c.Fields, cloneField(f))
			}
		}
	}
	if m.Messages != nil {
		c.Messages = make([]*Message, 0, len(m.Messages))
		for _, nested := range m.Messages {
			if nested != nil {
				c.Messages = append(c.Messages, cloneMessage(nested))
			}
		}
	}
	if m.Enums != nil {
		c.Enums = make([]*Enum, 0, len(m.Enums))
		for _, enum := range m.Enums {
			if enum != nil {
				c.Enums = append(c.Enums, cloneEnum(enum))
			}
		}
	}
	return &c
}

func cloneField(f *Field) *Field {
	c := *f
	if f.Options != nil {
		c.Options = make(map[string]interface{}, len(f.Options))
		for k, v := range f.Options {
			c.Options[k] = v
		}
	}
	return &c
}

func cloneEnum(e *Enum) *Enum {
	c := *e
	if e.Values != nil {
		c.Values = make([]*EnumValue, 0, len(e.Values))
		for _, v := range e.Values {
			if v != nil {
				value := *v
				c.Values = append(c.Values, &value)
			}
		}
	}
	return &c
}

func cloneService(s *Service) *Service {
	c := *s
	if s.Methods != nil {
		c.Methods = make([]*RPCMethod, 0, len(s.Methods))
		for _, method := range s.Methods {
			if method != nil {
				mc := *method
				c.Methods = append(c.Methods, &mc)
			}
		}
	}
	return &c
}

// Assign overwrites dst with a deep copy of src. It reports false, leaving
// dst untouched, when either is nil or their kinds differ.
func Assign(dst, src Element) bool {
	if isNil(dst) || isNil(src) || dst.Kind() != src.Kind() {
		return false
	}
	switch d := dst.(type) {
	case *Message:
		*d = *cloneMessage(src.(*Message))
	case *Enum:
		*d = *cloneEnum(src.(*Enum))
	case *Service:
		*d = *cloneService(src.(*Service))
	case *RPCMethod:
		*d = *src.(*RPCMethod)
	default:
		return false
	}
	return true
}
