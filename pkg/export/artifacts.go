package export

import (
	"github.com/platinummonkey/protoboard/pkg/diagram"
	"github.com/platinummonkey/protoboard/pkg/protogen"
)

// Artifacts are the generated outputs for one snapshot of a schema
type Artifacts struct {
	Stem    string `json:"stem"`
	Proto   string `json:"proto"`
	Diagram string `json:"diagram"`
}

// ProtoFileName returns the file name for the proto3 source
func (a *Artifacts) ProtoFileName() string {
	return a.Stem + protogen.Extension
}

// DiagramFileName returns the file name for the sequence diagram
func (a *Artifacts) DiagramFileName() string {
	return diagram.FileName(a.Stem)
}

// Files maps file names to contents
func (a *Artifacts) Files() map[string]string {
	return map[string]string{
		a.ProtoFileName():   a.Proto,
		a.DiagramFileName(): a.Diagram,
	}
}
