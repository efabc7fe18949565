package packager

import (
	"bytes"
	"io/ioutil"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/ndlib/bagger/bagit"
	"github.com/ndlib/bagger/store"
)

// Renderer turns a template and a model into the text of bag-info.txt.
// Render either returns the complete text or an error, never partial
// output.
type Renderer interface {
	Render(tmpl string, m *Model) ([]byte, error)
}

// DefaultBagInfoTemplate is used when a build does not name a template.
const DefaultBagInfoTemplate = `{{with .SourceOrganization}}Source-Organization: {{oneline .}}
{{end}}Contact-Name: {{oneline .SubmitterName}}
{{with .SubmitterEmail}}Contact-Email: {{oneline .}}
{{end}}{{with .Title}}External-Description: {{oneline .}}
{{end}}{{with .ExternalIdentifier}}External-Identifier: {{oneline .}}
{{end}}{{with .SubmissionID}}Internal-Sender-Identifier: {{oneline .}}
{{end}}{{with .PublisherID}}Publisher-ID: {{oneline .}}
{{end}}Submission-Date: {{.SubmissionDate}}
Bagging-Date: {{.BaggingDate}}
Bag-Size: {{.BagSize}}
Payload-Oxum: {{.PayloadOxum}}
Bag-Count: 1 of 1
`

// TextRenderer renders templates with text/template. Templates may use
// the function "oneline", which collapses any run of whitespace, including
// newlines, into a single space so a value cannot break the tag file.
type TextRenderer struct{}

var templateFuncs = template.FuncMap{
	"oneline": func(s string) string { return strings.Join(strings.Fields(s), " ") },
}

// Render implements Renderer. The output must be a well formed tag file.
func (TextRenderer) Render(tmpl string, m *Model) ([]byte, error) {
	t, err := template.New("bag-info").Funcs(templateFuncs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}
	var buf bytes.Buffer
	if err = t.Execute(&buf, m); err != nil {
		return nil, errors.Wrap(err, "execute")
	}
	if _, err = bagit.ReadLabelsAndValues(buf.Bytes()); err != nil {
		return nil, errors.Wrap(err, "rendered text")
	}
	return buf.Bytes(), nil
}

// TemplateLoader fetches bag-info templates from a store. The key of each
// template is its name.
type TemplateLoader struct {
	S store.ROStore
}

// Load returns the text of the named template. The empty name is the
// DefaultBagInfoTemplate.
func (tl TemplateLoader) Load(name string) (string, error) {
	if name == "" {
		return DefaultBagInfoTemplate, nil
	}
	if tl.S == nil {
		return "", &TemplateError{Name: name, Err: errors.New("no template store configured")}
	}
	rac, size, err := tl.S.Open(name)
	if err != nil {
		return "", &TemplateError{Name: name, Err: err}
	}
	defer rac.Close()
	b, err := ioutil.ReadAll(store.NewReader(rac))
	if err != nil {
		return "", &TemplateError{Name: name, Err: err}
	}
	if int64(len(b)) != size {
		return "", &TemplateError{Name: name, Err: errors.Errorf("read %d of %d bytes", len(b), size)}
	}
	return string(b), nil
}
