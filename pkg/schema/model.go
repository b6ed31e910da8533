package schema

// Model holds a forest of top-level elements and the structural operations
// over it. A Model is not safe for concurrent use; pkg/session serializes
// access when several writers share one.
type Model struct {
	elements []Element
}

// NewModel creates a model whose top level holds the given elements in order
func NewModel(elements ...Element) *Model {
	m := &Model{elements: make([]Element, 0, len(elements))}
	for _, el := range elements {
		if !isNil(el) {
			m.elements = append(m.elements, el)
		}
	}
	return m
}

// Elements returns the top-level sequence in order. The slice is a copy but
// the elements are the live values held by the model.
func (m *Model) Elements() []Element {
	out := make([]Element, len(m.elements))
	copy(out, m.elements)
	return out
}

// Len returns the total number of elements at every nesting level
func (m *Model) Len() int {
	n := 0
	m.Walk(func(Element) bool {
		n++
		return true
	})
	return n
}

// AddElement appends el to the top level when parentID is empty. Otherwise
// el is appended to the parent's collection for its kind: nested messages,
// nested enums or methods. A missing parent or a parent without a matching
// collection leaves the forest unchanged.
func (m *Model) AddElement(el Element, parentID string) Outcome {
	if isNil(el) {
		return OutcomeInvalidElement
	}

	if parentID == "" {
		m.elements = append(m.elements, el)
		return OutcomeApplied
	}

	parent, ok := m.FindElementByID(parentID)
	if !ok {
		return OutcomeParentNotFound
	}

	switch p := parent.(type) {
	case *Message:
		switch child := el.(type) {
		case *Message:
			p.Messages = append(p.Messages, child)
			return OutcomeApplied
		case *Enum:
			p.Enums = append(p.Enums, child)
			return OutcomeApplied
		}
	case *Service:
		if child, ok := el.(*RPCMethod); ok {
			p.Methods = append(p.Methods, child)
			return OutcomeApplied
		}
	}

	return OutcomeShapeMismatch
}

// RemoveElement removes the element with the given id from the top level
// when parentID is empty, or from every child collection of the parent
// otherwise. Removing an absent id is a no-op.
func (m *Model) RemoveElement(id, parentID string) Outcome {
	if parentID == "" {
		remaining := filterElements(m.elements, id)
		if len(remaining) == len(m.elements) {
			return OutcomeNotFound
		}
		m.elements = remaining
		return OutcomeApplied
	}

	parent, ok := m.FindElementByID(parentID)
	if !ok {
		return OutcomeParentNotFound
	}

	removed := false
	switch p := parent.(type) {
	case *Message:
		if messages, n := filterMessages(p.Messages, id); n > 0 {
			p.Messages = messages
			removed = true
		}
		if enums, n := filterEnums(p.Enums, id); n > 0 {
			p.Enums = enums
			removed = true
		}
	case *Service:
		if methods, n := filterMethods(p.Methods, id); n > 0 {
			p.Methods = methods
			removed = true
		}
	default:
		return OutcomeShapeMismatch
	}

	if !removed {
		return OutcomeNotFound
	}
	return OutcomeApplied
}

// FindElementByID searches the top level first, then descends recursively
// into nested messages, nested enums and methods, in that order. It returns
// the first match.
func (m *Model) FindElementByID(id string) (Element, bool) {
	for _, el := range m.elements {
		if el.GetID() == id {
			return el, true
		}
	}
	found := searchNested(m.elements, id)
	return found, found != nil
}

// Reset clears the forest
func (m *Model) Reset() {
	m.elements = nil
}

// Walk visits every element depth-first in search order. Returning false
// from fn stops the walk.
func (m *Model) Walk(fn func(Element) bool) {
	for _, el := range m.elements {
		if !walk(el, fn) {
			return
		}
	}
}

func walk(el Element, fn func(Element) bool) bool {
	if !fn(el) {
		return false
	}
	for _, child := range children(el) {
		if !walk(child, fn) {
			return false
		}
	}
	return true
}

func searchNested(elements []Element, id string) Element {
	for _, el := range elements {
		if el.GetID() == id {
			return el
		}
		if found := searchNested(children(el), id); found != nil {
			return found
		}
	}
	return nil
}

// children lists nested messages, then nested enums, then methods. Nil
// members are skipped.
func children(el Element) []Element {
	switch v := el.(type) {
	case *Message:
		out := make([]Element, 0, len(v.Messages)+len(v.Enums))
		for _, msg := range v.Messages {
			if msg != nil {
				out = append(out, msg)
			}
		}
		for _, enum := range v.Enums {
			if enum != nil {
				out = append(out, enum)
			}
		}
		return out
	case *Service:
		out := make([]Element, 0, len(v.Methods))
		for _, method := range v.Methods {
			if method != nil {
				out = append(out, method)
			}
		}
		return out
	}
	return nil
}

func filterElements(elements []Element, id string) []Element {
	out := make([]Element, 0, len(elements))
	for _, el := range elements {
		if el.GetID() != id {
			out = append(out, el)
		}
	}
	return out
}

func filterMessages(messages []*Message, id string) ([]*Message, int) {
	out := make([]*Message, 0, len(messages))
	for _, msg := range messages {
		if msg == nil || msg.ID != id {
			out = append(out, msg)
		}
	}
	return out, len(messages) - len(out)
}

func filterEnums(enums []*Enum, id string) ([]*Enum, int) {
	out := make([]*Enum, 0, len(enums))
	for _, enum := range enums {
		if enum == nil || enum.ID != id {
			out = append(out, enum)
		}
	}
	return out, len(enums) - len(out)
}

func filterMethods(methods []*RPCMethod, id string) ([]*RPCMethod, int) {
	out := make([]*RPCMethod, 0, len(methods))
	for _, method := range methods {
		if method == nil || method.ID != id {
			out = append(out, method)
		}
	}
	return out, len(methods) - len(out)
}
