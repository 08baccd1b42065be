package cmd

import (
	"io"
	"strings"

	"github.com/fatih/color"
)

var depthColors = []*color.Color{
	color.New(color.FgCyan),
	color.New(color.FgYellow),
	color.New(color.FgGreen),
	color.New(color.FgMagenta),
	color.New(color.FgBlue),
	color.New(color.FgRed),
}

// printTree prints a rendered plan, coloring each line by its nesting depth.
func printTree(w io.Writer, rendered string) {
	for _, line := range strings.Split(rendered, "\n") {
		trimmed := strings.TrimLeft(line, "\t")
		depth := len(line) - len(trimmed)
		c := depthColors[depth%len(depthColors)]
		_, _ = io.WriteString(w, line[:depth])
		_, _ = c.Fprintln(w, trimmed)
	}
}
