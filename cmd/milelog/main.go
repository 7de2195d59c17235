package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"milelog/internal/faults"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "error:", faults.Diagnostic(err))
		}
		os.Exit(1)
	}
}
