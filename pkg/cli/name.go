package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/platinummonkey/protoboard/pkg/protogen"
	"github.com/platinummonkey/protoboard/pkg/schema"
)

func newNameCommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "name",
		Description: "Print the file stem derived from the first service",
		Flags:       flag.NewFlagSet("name", flag.ContinueOnError),
		Out:         out,
	}
	input := cmd.Flags.String("in", "", "Schema document (.json, .yaml or .yml)")

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.parseFlags(args); err != nil {
			return err
		}
		if *input == "" {
			return errors.New("-in is required")
		}

		doc, err := schema.LoadDocumentFile(*input)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, protogen.ServiceNameForFile(doc.Elements))
		return nil
	}
	return cmd
}
