package api

import (
	"encoding/json"
	"time"

	"github.com/platinummonkey/protoboard/pkg/schema"
	"github.com/platinummonkey/protoboard/pkg/session"
)

// DocumentResponse is a document with its live editing state
type DocumentResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Elements  []json.RawMessage `json:"elements"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Dirty     bool              `json:"dirty"`
	Revision  uint64            `json:"revision"`
}

// RenameRequest is the body of PUT /api/v1/schemas/{id}
type RenameRequest struct {
	Name string `json:"name"`
}

// AddElementRequest is the body of POST /api/v1/schemas/{id}/elements
type AddElementRequest struct {
	ParentID string          `json:"parentId,omitempty"`
	Element  json.RawMessage `json:"element"`
}

// MutationResponse reports the outcome of a model mutation
type MutationResponse struct {
	Outcome string          `json:"outcome"`
	ID      string          `json:"id,omitempty"`
	Element json.RawMessage `json:"element,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// SaveResponse is returned after a document is persisted
type SaveResponse struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublishResponse lists where artifacts were published
type PublishResponse struct {
	Stem      string   `json:"stem"`
	Locations []string `json:"locations"`
}

func newDocumentResponse(s *session.Session) (*DocumentResponse, error) {
	doc := s.Document()
	elements, err := encodeElements(doc.Elements)
	if err != nil {
		return nil, err
	}
	return &DocumentResponse{
		ID:        doc.ID,
		Name:      doc.Name,
		Elements:  elements,
		UpdatedAt: doc.UpdatedAt,
		Dirty:     s.Dirty(),
		Revision:  s.Revision(),
	}, nil
}

func encodeElements(elements []schema.Element) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(elements))
	for _, el := range elements {
		data, err := schema.MarshalElementJSON(el)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}
