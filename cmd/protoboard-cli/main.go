package main

import (
	"context"
	"fmt"
	"os"

	"github.com/platinummonkey/protoboard/pkg/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
