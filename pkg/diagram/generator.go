// Package diagram renders the RPC surface of a schema as a Mermaid
// sequence diagram.
package diagram

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/platinummonkey/protoboard/pkg/schema"
)

const (
	// Header is the diagram-type line every diagram starts with
	Header = "sequenceDiagram"

	// ClientParticipant is the caller side of every RPC
	ClientParticipant = "Client"

	// Extension is the file extension for generated diagrams
	Extension = ".mmd"
)

// Generate emits a request and a response arrow for every method of every
// top-level service. Participant lines are repeated for each method and
// types are written as stored, so an empty type stays empty.
func Generate(elements []schema.Element) string {
	var b strings.Builder
	b.WriteString(Header + "\n")

	for _, el := range elements {
		svc, ok := el.(*schema.Service)
		if !ok || svc == nil {
			continue
		}
		for _, method := range svc.Methods {
			if method == nil {
				continue
			}
			b.WriteString(fmt.Sprintf("  participant %s\n", ClientParticipant))
			b.WriteString(fmt.Sprintf("  participant %s\n", svc.Name))
			b.WriteString(fmt.Sprintf("  %s->>%s: %s(%s)\n", ClientParticipant, svc.Name, method.Name, method.InputType))
			b.WriteString(fmt.Sprintf("  %s-->>%s: %s\n", svc.Name, ClientParticipant, method.OutputType))
		}
	}

	return strings.TrimRightFunc(b.String(), unicode.IsSpace) + "\n"
}

// FileName returns stem with the diagram extension
func FileName(stem string) string {
	return stem + Extension
}
