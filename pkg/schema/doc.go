// Package schema provides the in-memory data model of a proto3 schema under edit.
//
// # Overview
//
// A schema is a forest of top-level elements. Each element is one of four kinds:
//
//   - Message: fields, nested messages and nested enums
//   - Enum: ordered values
//   - Service: ordered RPC methods
//   - RPCMethod: a leaf, normally held by a Service
//
// Every element carries an opaque id that is unique across the whole forest.
// Member order is insertion order and every operation preserves it.
//
// # Structural Operations
//
//	model := schema.NewModel()
//	greeter := schema.NewService("Greeter")
//	model.AddElement(greeter, "")
//	model.AddElement(schema.NewRPCMethod("SayHello", "HelloRequest", "HelloReply"), greeter.ID)
//
//	el, ok := model.FindElementByID(greeter.ID)
//	outcome := model.RemoveElement(greeter.ID, "")
//	model.Reset()
//
// Mutations never panic and never return errors. They report an Outcome
// instead; anything other than OutcomeApplied means the forest was left
// untouched:
//
//	if outcome := model.AddElement(enum, parentID); !outcome.Applied() {
//		log.Printf("enum dropped: %v", outcome.Err())
//	}
//
// Field-level edits are made directly on the element pointers held by the
// model. The model only mediates structure.
//
// # Documents
//
// Document pairs a forest with an id and name and serializes to JSON or
// YAML. Top-level elements carry a "kind" discriminator:
//
//	name: greeter
//	elements:
//	  - kind: service
//	    name: Greeter
//	    methods:
//	      - name: SayHello
//	        inputType: HelloRequest
//	        outputType: HelloReply
//
// # Related Packages
//
//   - pkg/protogen: proto3 text generation
//   - pkg/diagram: sequence diagram generation
//   - pkg/session: serialized editing over a shared model
package schema
