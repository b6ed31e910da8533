package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/platinummonkey/protoboard/pkg/httputil"
	"github.com/platinummonkey/protoboard/pkg/observability"
	"github.com/platinummonkey/protoboard/pkg/schema"
	"github.com/platinummonkey/protoboard/pkg/session"
	"github.com/platinummonkey/protoboard/pkg/storage"
)

// createSchema handles POST /api/v1/schemas
func (s *Server) createSchema(w http.ResponseWriter, r *http.Request) {
	var body json.RawMessage
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}

	doc, err := schema.DecodeDocument(body, schema.FormatJSON)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	sess, err := s.sessions.Create(r.Context(), doc)
	if err != nil {
		s.writeSessionError(w, r, err)
		return
	}

	resp, err := newDocumentResponse(sess)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, resp)
}

// listSchemas handles GET /api/v1/schemas
func (s *Server) listSchemas(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeSessionError(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []storage.Summary{}
	}
	httputil.WriteSuccess(w, summaries)
}

// getSchema handles GET /api/v1/schemas/{id}
func (s *Server) getSchema(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	resp, err := newDocumentResponse(sess)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, resp)
}

// renameSchema handles PUT /api/v1/schemas/{id}
func (s *Server) renameSchema(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	sess.SetName(req.Name)

	resp, err := newDocumentResponse(sess)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, resp)
}

// deleteSchema handles DELETE /api/v1/schemas/{id}
func (s *Server) deleteSchema(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.writeSessionError(w, r, err)
		return
	}
	httputil.WriteNoContent(w)
}

// resetSchema handles POST /api/v1/schemas/{id}/reset
func (s *Server) resetSchema(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	sess.Reset()
	s.writeOutcome(w, r, http.StatusOK, schema.OutcomeApplied, MutationResponse{})
}

// saveSchema handles POST /api/v1/schemas/{id}/save
func (s *Server) saveSchema(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := s.sessions.Save(r.Context(), sess.ID()); err != nil {
		s.writeSessionError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, SaveResponse{ID: sess.ID(), UpdatedAt: sess.Document().UpdatedAt})
}

// addElement handles POST /api/v1/schemas/{id}/elements
func (s *Server) addElement(w http.ResponseWriter, r *http.Request) {
	var req AddElementRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, string(req.Element), "element") {
		return
	}
	el, err := schema.UnmarshalElementJSON(req.Element)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	outcome := sess.AddElement(el, req.ParentID)
	resp := MutationResponse{}
	if outcome.Applied() {
		resp.ID = el.GetID()
	}
	s.writeMutation(w, r, http.StatusCreated, outcome, resp, el)
}

// getElement handles GET /api/v1/schemas/{id}/elements/{elementId}
func (s *Server) getElement(w http.ResponseWriter, r *http.Request) {
	elementID, ok := httputil.ParsePathStringOrError(w, r, "elementId")
	if !ok {
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	el, found := sess.FindElement(elementID)
	if !found {
		httputil.WriteNotFoundError(w, "element not found: "+elementID)
		return
	}

	data, err := schema.MarshalElementJSON(el)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, json.RawMessage(data))
}

// replaceElement handles PUT /api/v1/schemas/{id}/elements/{elementId}
func (s *Server) replaceElement(w http.ResponseWriter, r *http.Request) {
	elementID, ok := httputil.ParsePathStringOrError(w, r, "elementId")
	if !ok {
		return
	}
	var body json.RawMessage
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	el, err := schema.UnmarshalElementJSON(body)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	outcome := sess.Replace(elementID, el)
	var updated schema.Element
	if outcome.Applied() {
		updated, _ = sess.FindElement(elementID)
	}
	s.writeMutation(w, r, http.StatusOK, outcome, MutationResponse{ID: elementID}, updated)
}

// removeElement handles DELETE /api/v1/schemas/{id}/elements/{elementId}?parentId=
func (s *Server) removeElement(w http.ResponseWriter, r *http.Request) {
	elementID, ok := httputil.ParsePathStringOrError(w, r, "elementId")
	if !ok {
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	parentID := httputil.ParseQueryString(r, "parentId", "")
	outcome := sess.RemoveElement(elementID, parentID)
	s.writeOutcome(w, r, http.StatusOK, outcome, MutationResponse{ID: elementID})
}

// session resolves the {id} path variable to a live session, writing the
// error response when it cannot
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return nil, false
	}

	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.writeSessionError(w, r, err)
		return nil, false
	}
	return sess, true
}

// writeMutation embeds the JSON form of el in an applied mutation's response.
// el is nil when there is nothing to echo back.
func (s *Server) writeMutation(w http.ResponseWriter, r *http.Request, applied int, outcome schema.Outcome, resp MutationResponse, el schema.Element) {
	if outcome.Applied() && el != nil {
		data, err := schema.MarshalElementJSON(el)
		if err != nil {
			observability.FromContext(r.Context()).WithError(err).WithField("path", r.URL.Path).Error("Failed to encode mutated element")
			httputil.WriteInternalError(w, err)
			return
		}
		resp.Element = data
	}
	s.writeOutcome(w, r, applied, outcome, resp)
}

// writeOutcome writes a mutation response with the status its outcome maps to
func (s *Server) writeOutcome(w http.ResponseWriter, r *http.Request, applied int, outcome schema.Outcome, resp MutationResponse) {
	resp.Outcome = outcome.String()
	status := applied
	if err := outcome.Err(); err != nil {
		resp.Error = err.Error()
		status = outcomeStatus(outcome)
		observability.FromContext(r.Context()).WithFields(map[string]interface{}{
			"outcome": resp.Outcome,
			"path":    r.URL.Path,
		}).Debug("Mutation not applied")
	}
	httputil.WriteJSON(w, status, resp)
}

// outcomeStatus maps a rejected mutation to an HTTP status
func outcomeStatus(outcome schema.Outcome) int {
	switch outcome {
	case schema.OutcomeParentNotFound, schema.OutcomeNotFound:
		return http.StatusNotFound
	case schema.OutcomeShapeMismatch, schema.OutcomeInvalidElement:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusOK
	}
}

// writeSessionError maps manager and storage errors to responses
func (s *Server) writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, session.ErrClosed):
		httputil.WriteNotFoundError(w, err.Error())
	case errors.Is(err, storage.ErrInvalidID):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, session.ErrExists):
		httputil.WriteConflict(w, err.Error())
	default:
		observability.FromContext(r.Context()).WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		httputil.WriteInternalError(w, err)
	}
}
