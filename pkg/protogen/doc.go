// Package protogen renders a schema forest as proto3 source text.
//
// Output is deterministic: services first, then messages, then enums, each
// group in the order the elements appear at the top level. Methods with an
// empty input or output type use google.protobuf.Empty. The generator never
// validates what it emits; field numbers and type references are written
// as given.
//
//	src := protogen.Generate(model.Elements())
//	name := protogen.FileName(model.Elements()) // "greeter.proto"
package protogen
