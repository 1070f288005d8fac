package main

import (
	"os"

	"github.com/conneroisu/coda/cmd"
	codaerrors "github.com/conneroisu/coda/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(codaerrors.ExitCode(err))
	}
}
