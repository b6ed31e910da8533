// Package cli implements protoboard-cli, the offline companion of the
// schema editor server.
//
// # Commands
//
// render: write the proto3 source and sequence diagram of a document
//
//	protoboard-cli render -in greeter.yaml -out ./gen
//	protoboard-cli render -in greeter.yaml -out ./gen -proto-only
//
// watch: re-render whenever the document changes on disk
//
//	protoboard-cli watch -in greeter.yaml -out ./gen -debounce 500ms
//
// name: print the file stem derived from the first service
//
//	protoboard-cli name -in greeter.yaml
//
// Documents are JSON or YAML, chosen by extension, in the same encoding
// the server stores. Logs go to stderr through logrus; written paths and
// names go to stdout.
package cli
