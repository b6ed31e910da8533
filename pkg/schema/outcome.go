package schema

import "errors"

var (
	// ErrParentNotFound is returned by Outcome.Err when the parent id did not resolve
	ErrParentNotFound = errors.New("parent element not found")
	// ErrShapeMismatch is returned by Outcome.Err when the parent cannot hold the element's kind
	ErrShapeMismatch = errors.New("parent cannot hold element of this kind")
	// ErrNotFound is returned by Outcome.Err when the target element does not exist
	ErrNotFound = errors.New("element not found")
	// ErrInvalidElement is returned by Outcome.Err for nil elements
	ErrInvalidElement = errors.New("invalid element")
)

// Outcome reports what a structural mutation did. Every outcome other than
// OutcomeApplied leaves the forest untouched.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeParentNotFound
	OutcomeShapeMismatch
	OutcomeNotFound
	OutcomeInvalidElement
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeParentNotFound:
		return "parent_not_found"
	case OutcomeShapeMismatch:
		return "shape_mismatch"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeInvalidElement:
		return "invalid_element"
	default:
		return "unknown"
	}
}

// Applied reports whether the mutation changed the forest
func (o Outcome) Applied() bool {
	return o == OutcomeApplied
}

// Err maps the outcome to a sentinel error, or nil when applied
func (o Outcome) Err() error {
	switch o {
	case OutcomeApplied:
		return nil
	case OutcomeParentNotFound:
		return ErrParentNotFound
	case OutcomeShapeMismatch:
		return ErrShapeMismatch
	case OutcomeNotFound:
		return ErrNotFound
	default:
		return ErrInvalidElement
	}
}
