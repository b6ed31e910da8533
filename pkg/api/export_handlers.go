package api

import (
	"net/http"

	"github.com/platinummonkey/protoboard/pkg/export"
	"github.com/platinummonkey/protoboard/pkg/httputil"
	"github.com/platinummonkey/protoboard/pkg/session"
)

// exportProto handles GET /api/v1/schemas/{id}/export/proto?inline=
func (s *Server) exportProto(w http.ResponseWriter, r *http.Request) {
	artifacts, ok := s.render(w, r)
	if !ok {
		return
	}
	writeArtifact(w, r, artifacts.ProtoFileName(), artifacts.Proto)
}

// exportDiagram handles GET /api/v1/schemas/{id}/export/diagram?inline=
func (s *Server) exportDiagram(w http.ResponseWriter, r *http.Request) {
	artifacts, ok := s.render(w, r)
	if !ok {
		return
	}
	writeArtifact(w, r, artifacts.DiagramFileName(), artifacts.Diagram)
}

// writeArtifact sends body as a download, or as plain text when the
// request asks for inline=true
func writeArtifact(w http.ResponseWriter, r *http.Request, filename, body string) {
	inline, err := httputil.ParseQueryBool(r, "inline", false)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	if inline {
		httputil.WriteText(w, http.StatusOK, body)
		return
	}
	httputil.WriteAttachment(w, filename, body)
}

// publishSchema handles POST /api/v1/schemas/{id}/publish
func (s *Server) publishSchema(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		httputil.WriteServiceUnavailable(w, "publishing is not configured")
		return
	}

	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	artifacts, ok := s.renderSession(w, r, sess)
	if !ok {
		return
	}

	locations, err := s.publisher.Publish(r.Context(), sess.ID(), artifacts)
	if err != nil {
		s.writeSessionError(w, r, err)
		return
	}

	s.logger.WithFields(map[string]interface{}{
		"document_id": sess.ID(),
		"locations":   locations,
	}).Info("Artifacts published")
	httputil.WriteSuccess(w, PublishResponse{Stem: artifacts.Stem, Locations: locations})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) (*export.Artifacts, bool) {
	sess, ok := s.session(w, r)
	if !ok {
		return nil, false
	}
	return s.renderSession(w, r, sess)
}

func (s *Server) renderSession(w http.ResponseWriter, r *http.Request, sess *session.Session) (*export.Artifacts, bool) {
	artifacts, err := s.renderer.Render(r.Context(), sess.Snapshot())
	if err != nil {
		s.writeSessionError(w, r, err)
		return nil, false
	}
	return artifacts, true
}
