package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

func success(w io.Writer, format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

func failure(w io.Writer, format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(w, "✗ %s\n", fmt.Sprintf(format, args...))
}

func step(w io.Writer, format string, args ...interface{}) {
	color.New(color.FgBlue).Fprintf(w, "→ %s\n", fmt.Sprintf(format, args...))
}
