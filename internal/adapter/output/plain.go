package output

import (
	"fmt"
	"io"
	"text/template"

	"github.com/jmylchreest/nowplaying/internal/mpd"
)

// DefaultTemplate is used when no custom template is configured.
const DefaultTemplate = "{{.StateName}}: {{.Artist}} - {{.Title}} [{{clock .Elapsed}}/{{clock .Duration}}] volume {{.Volume}}%\n"

// PlainFormatter formats a report through a text template.
type PlainFormatter struct {
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) (*PlainFormatter, error) {
	text := opts.Template
	if text == "" {
		text = DefaultTemplate
	}

	tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &PlainFormatter{template: tmpl}, nil
}

// Format writes the report as plain text.
func (f *PlainFormatter) Format(w io.Writer, r Report) error {
	return f.template.Execute(w, r)
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			if maxLen <= 0 || len(s) <= maxLen {
				return s
			}
			if maxLen <= 3 {
				return s[:maxLen]
			}
			return s[:maxLen-3] + "..."
		},
		"clock": mpd.Clock,
	}
}
