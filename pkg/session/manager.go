package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/protoboard/pkg/observability"
	"github.com/platinummonkey/protoboard/pkg/schema"
	"github.com/platinummonkey/protoboard/pkg/storage"
)

var sessionTracer = observability.Tracer("session")

var (
	// ErrExists is returned when creating a document whose id is taken
	ErrExists = errors.New("document already exists")

	// ErrClosed is returned when saving a session whose document was deleted
	ErrClosed = errors.New("session closed")
)

// Manager keeps one live session per document id on top of a store
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	store    storage.Store
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewManager creates a session manager. metrics may be nil.
func NewManager(store storage.Store, logger *observability.Logger, metrics *observability.Metrics) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		store:    store,
		logger:   logger,
		metrics:  metrics,
	}
}

// Create registers a new document and persists it. A missing id is
// generated.
func (m *Manager) Create(ctx context.Context, doc *schema.Document) (*Session, error) {
	if doc.ID == "" {
		doc.ID = schema.NewID()
	}
	ctx, span := sessionTracer.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("document.id", doc.ID)),
	)
	defer span.End()

	if err := storage.ValidateID(doc.ID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[doc.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrExists, doc.ID)
	}
	if _, err := m.load(ctx, doc.ID); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, doc.ID)
	} else if !errors.Is(err, storage.ErrNotFound) {
		recordError(span, err, "failed to check for existing document")
		return nil, err
	}

	s := New(doc, m.metrics)
	if err := m.save(ctx, s); err != nil {
		recordError(span, err, "failed to persist new document")
		return nil, err
	}
	m.sessions[s.ID()] = s
	m.updateGauge()

	m.logger.WithFields(map[string]interface{}{
		"document_id": s.ID(),
		"name":        s.Name(),
	}).Info("Document created")
	return s, nil
}

// Get returns the live session for id, loading it from the store on a miss
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	ctx, span := sessionTracer.Start(ctx, "Load",
		trace.WithAttributes(attribute.String("document.id", id)),
	)
	defer span.End()

	doc, err := m.load(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			recordError(span, err, "failed to load document")
		}
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// another caller may have loaded it meanwhile
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	s = New(doc, m.metrics)
	m.sessions[id] = s
	m.updateGauge()

	m.logger.WithField("document_id", id).Debug("Session loaded from storage")
	return s, nil
}

// Delete drops the live session and the stored document
func (m *Manager) Delete(ctx context.Context, id string) error {
	ctx, span := sessionTracer.Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("document.id", id)),
	)
	defer span.End()

	m.mu.Lock()
	s, live := m.sessions[id]
	delete(m.sessions, id)
	m.updateGauge()
	m.mu.Unlock()

	if live {
		// waits for an in-flight save and keeps later ones from
		// writing the document back
		s.persist.Lock()
		s.closed = true
		defer s.persist.Unlock()
	}

	start := time.Now()
	err := m.store.Delete(ctx, id)
	m.metrics.ObserveStorage("delete", start, err)
	if err != nil {
		// never saved is still a successful delete
		if live && errors.Is(err, storage.ErrNotFound) {
			err = nil
		} else {
			if !errors.Is(err, storage.ErrNotFound) {
				recordError(span, err, "failed to delete document")
			}
			return err
		}
	}

	m.logger.WithField("document_id", id).Info("Document deleted")
	return nil
}

// Save persists the session for id
func (m *Manager) Save(ctx context.Context, id string) error {
	ctx, span := sessionTracer.Start(ctx, "Save",
		trace.WithAttributes(attribute.String("document.id", id)),
	)
	defer span.End()

	s, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := m.save(ctx, s); err != nil {
		recordError(span, err, "failed to save document")
		return err
	}
	return nil
}

// SaveAll persists every dirty session and returns how many were saved.
// A failure for one session does not stop the others.
func (m *Manager) SaveAll(ctx context.Context) (int, error) {
	ctx, span := sessionTracer.Start(ctx, "SaveAll")
	defer span.End()

	m.mu.RLock()
	dirty := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s.Dirty() {
			dirty = append(dirty, s)
		}
	}
	m.mu.RUnlock()

	sort.Slice(dirty, func(i, j int) bool { return dirty[i].ID() < dirty[j].ID() })

	saved := 0
	var errs []error
	for _, s := range dirty {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := m.save(ctx, s); err != nil {
			if errors.Is(err, ErrClosed) {
				continue
			}
			m.logger.WithError(err).WithField("document_id", s.ID()).Error("Autosave failed")
			errs = append(errs, fmt.Errorf("save %s: %w", s.ID(), err))
			continue
		}
		saved++
	}

	span.SetAttributes(
		attribute.Int("sessions.dirty", len(dirty)),
		attribute.Int("sessions.saved", saved),
	)
	err := errors.Join(errs...)
	if err != nil {
		recordError(span, err, "autosave incomplete")
	}
	return saved, err
}

// List returns the stored documents, most recently updated first
func (m *Manager) List(ctx context.Context) ([]storage.Summary, error) {
	start := time.Now()
	summaries, err := m.store.List(ctx)
	m.metrics.ObserveStorage("list", start, err)
	return summaries, err
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) load(ctx context.Context, id string) (*schema.Document, error) {
	start := time.Now()
	doc, err := m.store.Load(ctx, id)
	m.metrics.ObserveStorage("load", start, err)
	return doc, err
}

func (m *Manager) save(ctx context.Context, s *Session) error {
	s.persist.Lock()
	defer s.persist.Unlock()
	if s.closed {
		return fmt.Errorf("%w: %s", ErrClosed, s.ID())
	}

	doc, revision := s.document()

	start := time.Now()
	err := m.store.Save(ctx, doc)
	m.metrics.ObserveStorage("save", start, err)
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
	}

	s.markSaved(revision, doc.UpdatedAt)
	m.logger.WithFields(map[string]interface{}{
		"document_id": doc.ID,
		"revision":    revision,
	}).Debug("Document saved")
	return nil
}

// updateGauge must be called with mu held
func (m *Manager) updateGauge() {
	if m.metrics != nil {
		m.metrics.SessionsActive.Set(float64(len(m.sessions)))
	}
}

func recordError(span trace.Span, err error, description string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, description)
}
