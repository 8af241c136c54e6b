package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/unisima/ocr-extractor/cmd"
)

const version = "0.1.0"

func main() {
	root := cmd.NewRootCmd()

	// fang adds --version, completions and signal handling on top of cobra
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
