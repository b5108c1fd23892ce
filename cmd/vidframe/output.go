package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/1broseidon/vidframe/internal/geometry"
)

// wantJSON reports whether command output should be JSON: always when
// asked for, and by default when stdout is not a terminal.
func wantJSON(flagJSON bool) bool {
	if flagJSON {
		return true
	}
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// parseSize accepts "1280x720" and "1280X720".
func parseSize(s string) (geometry.Size, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return geometry.Size{}, fmt.Errorf("invalid size %q (want WIDTHxHEIGHT)", s)
	}
	w, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	h, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return geometry.Size{}, fmt.Errorf("invalid size %q: width and height must be positive", s)
	}
	return geometry.Size{W: w, H: h}, nil
}

func formatRect(r *geometry.Rect) string {
	if r == nil {
		return "-"
	}
	return r.Round().String()
}
