package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Format is a document serialization format
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported document extension %q", filepath.Ext(path))
	}
}

// Document is a persisted schema: a named forest of top-level elements
type Document struct {
	ID        string
	Name      string
	Elements  []Element
	UpdatedAt time.Time
}

// Model returns a model over the document's elements
func (d *Document) Model() *Model {
	return NewModel(d.Elements...)
}

type taggedMessage struct {
	Kind    Kind `json:"kind" yaml:"kind"`
	Message `yaml:",inline"`
}

type taggedEnum struct {
	Kind Kind `json:"kind" yaml:"kind"`
	Enum `yaml:",inline"`
}

type taggedService struct {
	Kind    Kind `json:"kind" yaml:"kind"`
	Service `yaml:",inline"`
}

type taggedRPCMethod struct {
	Kind      Kind `json:"kind" yaml:"kind"`
	RPCMethod `yaml:",inline"`
}

type kindHeader struct {
	Kind Kind `json:"kind" yaml:"kind"`
}

func tag(el Element) (interface{}, error) {
	if isNil(el) {
		return nil, fmt.Errorf("cannot encode nil element (%T)", el)
	}
	switch v := el.(type) {
	case *Message:
		return taggedMessage{Kind: KindMessage, Message: *v}, nil
	case *Enum:
		return taggedEnum{Kind: KindEnum, Enum: *v}, nil
	case *Service:
		return taggedService{Kind: KindService, Service: *v}, nil
	case *RPCMethod:
		return taggedRPCMethod{Kind: KindRPCMethod, RPCMethod: *v}, nil
	default:
		return nil, fmt.Errorf("cannot encode element of type %T", el)
	}
}

func tagAll(elements []Element) ([]interface{}, error) {
	out := make([]interface{}, 0, len(elements))
	for _, el := range elements {
		if isNil(el) {
			continue
		}
		tagged, err := tag(el)
		if err != nil {
			return nil, err
		}
		out = append(out, tagged)
	}
	return out, nil
}

// decodeTagged decodes one element once its kind is known
func decodeTagged(kind Kind, decode func(interface{}) error) (Element, error) {
	switch kind {
	case KindMessage:
		var t taggedMessage
		if err := decode(&t); err != nil {
			return nil, err
		}
		return &t.Message, nil
	case KindEnum:
		var t taggedEnum
		if err := decode(&t); err != nil {
			return nil, err
		}
		return &t.Enum, nil
	case KindService:
		var t taggedService
		if err := decode(&t); err != nil {
			return nil, err
		}
		return &t.Service, nil
	case KindRPCMethod:
		var t taggedRPCMethod
		if err := decode(&t); err != nil {
			return nil, err
		}
		return &t.RPCMethod, nil
	default:
		return nil, fmt.Errorf("unknown element kind %q", kind)
	}
}

type jsonDocument struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Elements  []json.RawMessage `json:"elements"`
}

// MarshalJSON writes the document with a kind discriminator on every
// top-level element
func (d *Document) MarshalJSON() ([]byte, error) {
	tagged, err := tagAll(d.Elements)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		ID        string        `json:"id"`
		Name      string        `json:"name"`
		UpdatedAt time.Time     `json:"updatedAt"`
		Elements  []interface{} `json:"elements"`
	}{d.ID, d.Name, d.UpdatedAt, tagged})
}

// UnmarshalJSON reads a document written by MarshalJSON
func (d *Document) UnmarshalJSON(data []byte) error {
	var wire jsonDocument
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	elements := make([]Element, 0, len(wire.Elements))
	for i, raw := range wire.Elements {
		el, err := UnmarshalElementJSON(raw)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		elements = append(elements, el)
	}

	d.ID = wire.ID
	d.Name = wire.Name
	d.UpdatedAt = wire.UpdatedAt
	d.Elements = elements
	return nil
}

// MarshalElementJSON encodes one element with its kind discriminator
func MarshalElementJSON(el Element) ([]byte, error) {
	tagged, err := tag(el)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tagged)
}

// UnmarshalElementJSON decodes one element carrying a kind discriminator
func UnmarshalElementJSON(data []byte) (Element, error) {
	var header kindHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, err
	}
	return decodeTagged(header.Kind, func(v interface{}) error {
		return json.Unmarshal(data, v)
	})
}

type yamlDocument struct {
	ID        string        `yaml:"id,omitempty"`
	Name      string        `yaml:"name"`
	UpdatedAt time.Time     `yaml:"updatedAt,omitempty"`
	Elements  []interface{} `yaml:"elements"`
}

// MarshalYAML implements yaml.Marshaler
func (d *Document) MarshalYAML() (interface{}, error) {
	tagged, err := tagAll(d.Elements)
	if err != nil {
		return nil, err
	}
	return yamlDocument{
		ID:        d.ID,
		Name:      d.Name,
		UpdatedAt: d.UpdatedAt,
		Elements:  tagged,
	}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Document) UnmarshalYAML(value *yaml.Node) error {
	var wire struct {
		ID        string      `yaml:"id"`
		Name      string      `yaml:"name"`
		UpdatedAt time.Time   `yaml:"updatedAt"`
		Elements  []yaml.Node `yaml:"elements"`
	}
	if err := value.Decode(&wire); err != nil {
		return err
	}

	elements := make([]Element, 0, len(wire.Elements))
	for i := range wire.Elements {
		node := &wire.Elements[i]
		var header kindHeader
		if err := node.Decode(&header); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		el, err := decodeTagged(header.Kind, node.Decode)
		if err != nil {
			return fmt.Errorf("element %d (line %d): %w", i, node.Line, err)
		}
		elements = append(elements, el)
	}

	d.ID = wire.ID
	d.Name = wire.Name
	d.UpdatedAt = wire.UpdatedAt
	d.Elements = elements
	return nil
}

// EncodeDocument serializes a document in the given format
func EncodeDocument(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// DecodeDocument parses a document and normalizes it: missing ids are
// generated and nested elements without a parentId get their holder's id.
func DecodeDocument(data []byte, format Format) (*Document, error) {
	doc := &Document{}
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, doc)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s document: %w", format, err)
	}

	Normalize(doc.Elements)
	return doc, nil
}

// LoadDocumentFile reads and decodes a JSON or YAML document from disk
func LoadDocumentFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	doc, err := DecodeDocument(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.ID == "" {
		doc.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// Normalize fills missing ids, drops nil members and sets parentId on
// nested elements that have none
func Normalize(elements []Element) {
	for _, el := range elements {
		normalize(el, "")
	}
}

func normalize(el Element, parentID string) {
	switch v := el.(type) {
	case *Message:
		fillID(&v.ID)
		fillParent(&v.ParentID, parentID)
		v.Fields = compactFields(v.Fields)
		for _, f := range v.Fields {
			fillID(&f.ID)
		}
		v.Messages = compactMessages(v.Messages)
		for _, nested := range v.Messages {
			normalize(nested, v.ID)
		}
		v.Enums = compactEnums(v.Enums)
		for _, enum := range v.Enums {
			normalize(enum, v.ID)
		}
	case *Enum:
		fillID(&v.ID)
		fillParent(&v.ParentID, parentID)
		values := make([]*EnumValue, 0, len(v.Values))
		for _, value := range v.Values {
			if value != nil {
				fillID(&value.ID)
				values = append(values, value)
			}
		}
		v.Values = values
	case *Service:
		fillID(&v.ID)
		fillParent(&v.ParentID, parentID)
		methods := make([]*RPCMethod, 0, len(v.Methods))
		for _, method := range v.Methods {
			if method != nil {
				normalize(method, v.ID)
				methods = append(methods, method)
			}
		}
		v.Methods = methods
	case *RPCMethod:
		fillID(&v.ID)
		fillParent(&v.ParentID, parentID)
	}
}

func fillID(id *string) {
	if *id == "" {
		*id = NewID()
	}
}

func fillParent(dst *string, parentID string) {
	if *dst == "" && parentID != "" {
		*dst = parentID
	}
}

func compactFields(fields []*Field) []*Field {
	out := make([]*Field, 0, len(fields))
	for _, f := range fields {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

func compactMessages(messages []*Message) []*Message {
	out := make([]*Message, 0, len(messages))
	for _, m := range messages {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func compactEnums(enums []*Enum) []*Enum {
	out := make([]*Enum, 0, len(enums))
	for _, e := range enums {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}
