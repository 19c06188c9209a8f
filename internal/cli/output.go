// Package cli provides output rendering shared by arc-trust commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Format represents an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses a format string, defaulting to text.
func ParseFormat(s string) Format {
	if s == "json" {
		return FormatJSON
	}
	return FormatText
}

// Renderable can render itself as text or a JSON value.
type Renderable interface {
	RenderText(w io.Writer, st Styles) error
	RenderJSON() any
}

// Styles holds the lipgloss styles used by text rendering. When stdout is
// not a terminal the styles are zero values and render plain.
type Styles struct {
	Title lipgloss.Style
	Key   lipgloss.Style
	Warn  lipgloss.Style
}

func newStyles(tty bool) Styles {
	if !tty {
		return Styles{}
	}
	return Styles{
		Title: lipgloss.NewStyle().Bold(true),
		Key:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// Output handles formatted rendering.
type Output struct {
	format Format
	w      io.Writer
	styles Styles
}

// NewOutput creates an output renderer for the given format.
func NewOutput(format Format, w io.Writer) *Output {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd())
	}
	return &Output{format: format, w: w, styles: newStyles(tty)}
}

// ViperGetter is the subset of viper.Viper we need.
type ViperGetter interface {
	GetString(key string) string
}

// NewOutputFromViper creates an output renderer from viper config,
// reading the "output" key for the format.
func NewOutputFromViper(v ViperGetter) *Output {
	return NewOutput(ParseFormat(v.GetString("output")), os.Stdout)
}

// Render outputs a renderable in the configured format.
func (o *Output) Render(r Renderable) error {
	if o.format == FormatJSON {
		enc := json.NewEncoder(o.w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.RenderJSON())
	}
	return r.RenderText(o.w, o.styles)
}

// Result starts a simple single-message result.
func (o *Output) Result(message string) *Result {
	return &Result{out: o, message: message}
}

// Result is a message plus ordered detail pairs.
type Result struct {
	out     *Output
	message string
	keys    []string
	values  []any
}

// With adds a detail key-value pair.
func (r *Result) With(key string, value any) *Result {
	r.keys = append(r.keys, key)
	r.values = append(r.values, value)
	return r
}

// Render outputs the result in the configured format.
func (r *Result) Render() error {
	return r.out.Render(r)
}

// RenderText writes the message and aligned details.
func (r *Result) RenderText(w io.Writer, st Styles) error {
	if _, err := fmt.Fprintln(w, st.Title.Render(r.message)); err != nil {
		return err
	}
	maxLen := 0
	for _, k := range r.keys {
		if len(k) > maxLen {
			maxLen = len(k)
		}
	}
	for i, k := range r.keys {
		label := fmt.Sprintf("%-*s", maxLen+1, k+":")
		if _, err := fmt.Fprintf(w, "  %s %v\n", st.Key.Render(label), r.values[i]); err != nil {
			return err
		}
	}
	return nil
}

// RenderJSON returns the message and details as one object.
func (r *Result) RenderJSON() any {
	out := make(map[string]any, len(r.keys)+1)
	out["message"] = r.message
	for i, k := range r.keys {
		out[toJSONKey(k)] = r.values[i]
	}
	return out
}
