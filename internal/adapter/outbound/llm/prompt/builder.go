package prompt

import (
	"bytes"
	"embed"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Builder constructs prompts for reply drafting.
type Builder struct {
	templates *template.Template
}

// NewBuilder parses all embedded templates and returns a Builder.
func NewBuilder() (*Builder, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &Builder{templates: tmpl}, nil
}

// DraftInput holds data for the draft prompt template.
type DraftInput struct {
	PostText string
}

// BuildDraftPrompt renders the reply drafting template with the given input.
// The instructions are in Persian, matching the language of the replies the
// model is asked to produce.
func (b *Builder) BuildDraftPrompt(input DraftInput) (string, error) {
	var buf bytes.Buffer
	if err := b.templates.ExecuteTemplate(&buf, "draft.tmpl", input); err != nil {
		return "", err
	}
	return buf.String(), nil
}
