// Package session serializes editing of schema documents.
//
// A Session wraps one schema.Model. Mutations run one at a time under the
// session lock and report a schema.Outcome; readers get deep copies from
// Snapshot, FindElement and Document so generators never observe a
// half-applied edit.
//
//	s := session.New(doc, metrics)
//	svc := schema.NewService("Greeter")
//	if outcome := s.AddElement(svc, ""); !outcome.Applied() {
//		return outcome.Err()
//	}
//	proto := protogen.Generate(s.Snapshot())
//
// A Manager keeps the live sessions of a server keyed by document id. It
// loads documents from a storage.Store on first use and writes them back
// on Save or, for every dirty session, on SaveAll.
package session
