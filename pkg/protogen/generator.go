package protogen

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/platinummonkey/protoboard/pkg/schema"
)

const (
	// EmptyType stands in for an rpc input or output with no payload
	EmptyType = "google.protobuf.Empty"

	// DefaultFileStem is used when the forest holds no service
	DefaultFileStem = "schema"

	// Extension is the file extension for generated proto sources
	Extension = ".proto"
)

var repeatedUnderscores = regexp.MustCompile(`_+`)

// Generate renders a forest as proto3 source text. Services come first,
// then messages, then enums, each group in original top-level order. Only
// direct fields are rendered for messages; nested messages and enums are
// not emitted.
func Generate(elements []schema.Element) string {
	var services []*schema.Service
	var messages []*schema.Message
	var enums []*schema.Enum

	for _, el := range elements {
		switch v := el.(type) {
		case *schema.Service:
			if v != nil {
				services = append(services, v)
			}
		case *schema.Message:
			if v != nil {
				messages = append(messages, v)
			}
		case *schema.Enum:
			if v != nil {
				enums = append(enums, v)
			}
		}
	}

	var b strings.Builder
	b.WriteString("syntax = \"proto3\";\n\n")

	for _, svc := range services {
		writeService(&b, svc)
	}
	for _, msg := range messages {
		writeMessage(&b, msg)
	}
	for _, enum := range enums {
		writeEnum(&b, enum)
	}

	return strings.TrimRightFunc(b.String(), unicode.IsSpace) + "\n"
}

func writeComment(b *strings.Builder, indent, comment string) {
	if comment != "" {
		b.WriteString(fmt.Sprintf("%s// %s\n", indent, comment))
	}
}

func writeService(b *strings.Builder, svc *schema.Service) {
	writeComment(b, "", svc.Comment)
	b.WriteString(fmt.Sprintf("service %s {\n", svc.Name))
	for _, method := range svc.Methods {
		if method == nil {
			continue
		}
		writeComment(b, "  ", method.Comment)
		b.WriteString(fmt.Sprintf("  rpc %s (%s%s) returns (%s%s);\n",
			method.Name,
			streamKeyword(method.ClientStreaming), payloadType(method.InputType),
			streamKeyword(method.ServerStreaming), payloadType(method.OutputType),
		))
	}
	b.WriteString("}\n\n")
}

func writeMessage(b *strings.Builder, msg *schema.Message) {
	writeComment(b, "", msg.Comment)
	b.WriteString(fmt.Sprintf("message %s {\n", msg.Name))
	for _, field := range msg.Fields {
		if field == nil {
			continue
		}
		writeComment(b, "  ", field.Comment)
		label := ""
		if field.Label != schema.LabelNone {
			label = string(field.Label) + " "
		}
		b.WriteString(fmt.Sprintf("  %s%s %s = %d;\n", label, field.Type, field.Name, field.Number))
	}
	b.WriteString("}\n\n")
}

func writeEnum(b *strings.Builder, enum *schema.Enum) {
	writeComment(b, "", enum.Comment)
	b.WriteString(fmt.Sprintf("enum %s {\n", enum.Name))
	for _, value := range enum.Values {
		if value == nil {
			continue
		}
		writeComment(b, "  ", value.Comment)
		b.WriteString(fmt.Sprintf("  %s = %d;\n", value.Name, value.Number))
	}
	b.WriteString("}\n\n")
}

func streamKeyword(streaming bool) string {
	if streaming {
		return "stream "
	}
	return ""
}

func payloadType(typeName string) string {
	if typeName == "" {
		return EmptyType
	}
	return typeName
}

// ServiceNameForFile derives a file stem from the first service in
// top-level order, converted to snake_case. Without a service it returns
// DefaultFileStem.
func ServiceNameForFile(elements []schema.Element) string {
	for _, el := range elements {
		if svc, ok := el.(*schema.Service); ok && svc != nil {
			return toSnakeCase(svc.Name)
		}
	}
	return DefaultFileStem
}

// FileName is ServiceNameForFile plus the .proto extension
func FileName(elements []schema.Element) string {
	return ServiceNameForFile(elements) + Extension
}

// toSnakeCase inserts an underscore before every uppercase letter,
// lowercases, strips one leading underscore and collapses runs
func toSnakeCase(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) {
			b.WriteRune('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	out := strings.TrimPrefix(b.String(), "_")
	return repeatedUnderscores.ReplaceAllString(out, "_")
}
