package report

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"ipal-monitor/internal/model"
	"ipal-monitor/internal/report/excel"
	"ipal-monitor/internal/report/html"
)

const defaultFilenameTemplate = "ipal_report_{{.Period}}_{{.Date}}"

// Registry resolves report writers by format name, file extension or MIME
// type. Lookups ignore case, surrounding space and a leading dot.
type Registry struct {
	writers []ReportWriter // registration order
	lookup  map[string]ReportWriter
}

// Output is the result of writing one report format.
type Output struct {
	Format string
	Path   string
	Err    error
}

// NewRegistry returns a registry holding the Excel and HTML writers.
// A nil location means Asia/Jakarta. An empty htmlTemplatePath selects the
// embedded template.
func NewRegistry(loc *time.Location, htmlTemplatePath string) *Registry {
	if loc == nil {
		loc, _ = time.LoadLocation("Asia/Jakarta")
	}

	r := &Registry{lookup: make(map[string]ReportWriter)}
	r.Register(excel.NewWriter(loc), "xls", "spreadsheet")
	r.Register(html.NewWriter(loc, htmlTemplatePath), "htm")
	return r
}

// Register adds w under its format name, extension, media type and aliases.
// A later registration wins a clashing key and replaces a writer of the same
// format in place.
func (r *Registry) Register(w ReportWriter, aliases ...string) {
	replaced := false
	for i, old := range r.writers {
		if old.Format() == w.Format() {
			r.writers[i] = w
			replaced = true
		}
	}
	if !replaced {
		r.writers = append(r.writers, w)
	}

	keys := append([]string{w.Format(), w.Extension(), mediaType(w.ContentType())}, aliases...)
	for _, k := range keys {
		if k = lookupKey(k); k != "" {
			r.lookup[k] = w
		}
	}
}

// Get returns the writer for a format name, extension or media type.
func (r *Registry) Get(name string) (ReportWriter, error) {
	w, ok := r.lookup[lookupKey(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported report format %q, supported formats: %s",
			name, strings.Join(r.Formats(), ", "))
	}
	return w, nil
}

// Has reports whether Get would resolve name.
func (r *Registry) Has(name string) bool {
	_, ok := r.lookup[lookupKey(name)]
	return ok
}

// Formats returns the canonical format names in registration order.
func (r *Registry) Formats() []string {
	names := make([]string, len(r.writers))
	for i, w := range r.writers {
		names[i] = w.Format()
	}
	return names
}

// WriteAll writes rep to dir once per requested format. Names resolving to
// the same writer produce one file. Failures are reported per format and do
// not stop the remaining writers.
func (r *Registry) WriteAll(rep *model.Report, dir, filenameTemplate string, names []string) []Output {
	outputs := make([]Output, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		w, err := r.Get(name)
		if err != nil {
			outputs = append(outputs, Output{Format: name, Err: err})
			continue
		}
		if seen[w.Format()] {
			continue
		}
		seen[w.Format()] = true

		path := filepath.Join(dir, Filename(filenameTemplate, rep.Period, rep.GeneratedAt, w))
		outputs = append(outputs, Output{Format: w.Format(), Path: path, Err: w.Write(rep, path)})
	}
	return outputs
}

// Filename builds the output file name for a report from a template with
// {{.Period}} and {{.Date}} placeholders, plus the writer's extension.
func Filename(template, period string, at time.Time, w ReportWriter) string {
	if template == "" {
		template = defaultFilenameTemplate
	}

	date := at.Format("20060102_150405")
	name := strings.NewReplacer(
		"{{.Date}}", date,
		"{{ .Date }}", date,
		"{{.Period}}", period,
		"{{ .Period }}", period,
	).Replace(template)

	return name + w.Extension()
}

func lookupKey(name string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".")
}

// mediaType strips parameters such as charset from a content type.
func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	return mt
}
