package session

import (
	"sync"
	"time"

	"github.com/platinummonkey/protoboard/pkg/observability"
	"github.com/platinummonkey/protoboard/pkg/schema"
)

// Session owns one schema model. Every mutation runs under the session
// lock, one at a time, and readers only ever see deep copies.
type Session struct {
	mu        sync.Mutex
	id        string
	name      string
	model     *schema.Model
	revision  uint64
	saved     uint64
	updatedAt time.Time
	metrics   *observability.Metrics

	// persist serializes writes of this session to storage with its
	// deletion; closed is guarded by persist
	persist sync.Mutex
	closed  bool
}

// New creates a session over a copy of doc. metrics may be nil.
func New(doc *schema.Document, metrics *observability.Metrics) *Session {
	elements := schema.CloneElements(doc.Elements)
	schema.Normalize(elements)
	return &Session{
		id:        doc.ID,
		name:      doc.Name,
		model:     schema.NewModel(elements...),
		updatedAt: doc.UpdatedAt,
		metrics:   metrics,
	}
}

// ID returns the document id
func (s *Session) ID() string {
	return s.id
}

// Name returns the document name
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName renames the document
func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.name != name {
		s.name = name
		s.revision++
	}
}

// Apply runs fn against the model under the session lock. An applied
// outcome advances the revision and marks the session dirty.
func (s *Session) Apply(operation string, fn func(*schema.Model) schema.Outcome) schema.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome := fn(s.model)
	if outcome.Applied() {
		s.revision++
	}
	s.metrics.ObserveModelOperation(operation, outcome.String())
	return outcome
}

// AddElement adds a copy of el under parentID, filling missing ids on the
// copy. When the add is applied el is updated to match what the model
// holds, so callers can read the assigned ids back. A rejected add leaves
// el untouched.
func (s *Session) AddElement(el schema.Element, parentID string) schema.Outcome {
	return s.Apply("add", func(m *schema.Model) schema.Outcome {
		added := schema.CloneElement(el)
		schema.Prepare(added, parentID)
		outcome := m.AddElement(added, parentID)
		if outcome.Applied() {
			schema.Assign(el, added)
		}
		return outcome
	})
}

// RemoveElement removes the element with id from parentID, or from the
// top level when parentID is empty
func (s *Session) RemoveElement(id, parentID string) schema.Outcome {
	return s.Apply("remove", func(m *schema.Model) schema.Outcome {
		return m.RemoveElement(id, parentID)
	})
}

// FindElement returns a copy of the element with id
func (s *Session) FindElement(id string) (schema.Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.model.FindElementByID(id)
	if !ok {
		return nil, false
	}
	return schema.CloneElement(el), true
}

// Update applies fn to a copy of the element with id and copies the
// resulting attributes back. Child collections of the live element are
// left as they are. An error from fn discards the edit.
func (s *Session) Update(id string, fn func(schema.Element) error) (schema.Outcome, error) {
	var fnErr error
	outcome := s.Apply("update", func(m *schema.Model) schema.Outcome {
		live, ok := m.FindElementByID(id)
		if !ok {
			return schema.OutcomeNotFound
		}
		edited := schema.CloneElement(live)
		if fnErr = fn(edited); fnErr != nil {
			return schema.OutcomeInvalidElement
		}
		return schema.ReplaceAttributes(live, edited)
	})
	return outcome, fnErr
}

// Replace overwrites the attributes of the element with id with those of
// src. src must be of the same kind.
func (s *Session) Replace(id string, src schema.Element) schema.Outcome {
	return s.Apply("replace", func(m *schema.Model) schema.Outcome {
		live, ok := m.FindElementByID(id)
		if !ok {
			return schema.OutcomeNotFound
		}
		return schema.ReplaceAttributes(live, src)
	})
}

// Reset empties the model
func (s *Session) Reset() {
	s.Apply("reset", func(m *schema.Model) schema.Outcome {
		m.Reset()
		return schema.OutcomeApplied
	})
}

// Snapshot returns a deep copy of the top-level elements
func (s *Session) Snapshot() []schema.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return schema.CloneElements(s.model.Elements())
}

// Document returns a deep copy of the session as a document
func (s *Session) Document() *schema.Document {
	doc, _ := s.document()
	return doc
}

func (s *Session) document() (*schema.Document, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &schema.Document{
		ID:        s.id,
		Name:      s.name,
		Elements:  schema.CloneElements(s.model.Elements()),
		UpdatedAt: s.updatedAt,
	}, s.revision
}

// Dirty reports whether the session changed since it was last saved
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision != s.saved
}

// Revision counts applied mutations since the session was created
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// markSaved records that revision was persisted at updatedAt. Edits made
// after the snapshot was taken keep the session dirty.
func (s *Session) markSaved(revision uint64, updatedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if revision > s.saved {
		s.saved = revision
	}
	if updatedAt.After(s.updatedAt) {
		s.updatedAt = updatedAt
	}
}
