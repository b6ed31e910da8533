// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Response Helpers
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteCreated(w, resource)
//	httputil.WriteAttachment(w, "greeter.proto", source)
//
// Error responses share one body shape, {"error": "...", "details": {...}}:
//
//	httputil.WriteBadRequest(w, "Invalid input")
//	httputil.WriteNotFoundError(w, "document not found")
//	httputil.WriteDetailedError(w, http.StatusMethodNotAllowed, err, map[string]string{"path": path})
//
// # Request Parsing
//
//	var req CreateSchemaRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//
//	id, ok := httputil.ParsePathStringOrError(w, r, "id")
//	parentID := httputil.ParseQueryString(r, "parentId", "")
//	inline, err := httputil.ParseQueryBool(r, "inline", false)
//
//	if !httputil.RequireNonEmpty(w, string(req.Element), "element") {
//		return
//	}
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.MaxBytesMiddleware(1<<20),
//	)
package httputil
