// Package api provides the HTTP API of the schema editor.
//
// # Overview
//
// Every route lives under /api/v1 and speaks JSON, except the export
// routes which return the generated text as an attachment.
//
//	POST   /schemas                              create a document
//	GET    /schemas                              list stored documents
//	GET    /schemas/{id}                         document with elements
//	PUT    /schemas/{id}                         rename
//	DELETE /schemas/{id}                         delete
//	POST   /schemas/{id}/elements                add an element
//	GET    /schemas/{id}/elements/{elementId}    find an element
//	PUT    /schemas/{id}/elements/{elementId}    replace element attributes
//	DELETE /schemas/{id}/elements/{elementId}    remove (?parentId=)
//	POST   /schemas/{id}/reset                   empty the forest
//	POST   /schemas/{id}/save                    persist now
//	GET    /schemas/{id}/export/proto            proto3 source
//	GET    /schemas/{id}/export/diagram          sequence diagram
//	POST   /schemas/{id}/publish                 render and publish
//
// Elements are encoded with a "kind" discriminator:
//
//	{"parentId": "...", "element": {"kind": "rpcMethod", "name": "SayHello",
//	  "inputType": "HelloRequest", "outputType": "HelloReply"}}
//
// # Outcomes
//
// Mutations answer with {"outcome": "..."}. Rejected mutations leave the
// document untouched and map to 404 (parent_not_found, not_found) or 422
// (shape_mismatch, invalid_element).
//
// # Usage
//
//	server := api.NewServer(sessions, renderer, publisher, logger)
//	observability.RegisterHealthRoutes(server.Router(), checker)
//	http.ListenAndServe(":8080", server)
package api
