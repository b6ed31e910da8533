package schema

// ReplaceAttributes copies the editable attributes of src onto dst. The
// identity and placement of dst (id, parentId) and its child elements
// (nested messages, nested enums, methods) are kept. Fields and enum
// values are attributes and are replaced wholesale.
func ReplaceAttributes(dst, src Element) Outcome {
	if isNil(dst) || isNil(src) {
		return OutcomeInvalidElement
	}
	if dst.Kind() != src.Kind() {
		return OutcomeShapeMismatch
	}

	switch d := dst.(type) {
	case *Message:
		s := src.(*Message)
		d.Name = s.Name
		d.Comment = s.Comment
		d.Fields = make([]*Field, 0, len(s.Fields))
		for _, f := range s.Fields {
			if f == nil {
				continue
			}
			f = cloneField(f)
			fillID(&f.ID)
			d.Fields = append(d.Fields, f)
		}
	case *Enum:
		s := src.(*Enum)
		d.Name = s.Name
		d.Comment = s.Comment
		d.Values = make([]*EnumValue, 0, len(s.Values))
		for _, v := range s.Values {
			if v == nil {
				continue
			}
			value := *v
			fillID(&value.ID)
			d.Values = append(d.Values, &value)
		}
	case *Service:
		s := src.(*Service)
		d.Name = s.Name
		d.Comment = s.Comment
	case *RPCMethod:
		s := src.(*RPCMethod)
		d.Name = s.Name
		d.Comment = s.Comment
		d.InputType = s.InputType
		d.OutputType = s.OutputType
		d.ClientStreaming = s.ClientStreaming
		d.ServerStreaming = s.ServerStreaming
	default:
		return OutcomeInvalidElement
	}
	return OutcomeApplied
}
