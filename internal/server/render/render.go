// Package render turns a segment's status into the HTML page served to
// viewers.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/dmitrijs2005/nowstatus/internal/server/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

const imagePrefix = "data:image/png;base64,"

type Renderer struct {
	owner       string
	placeholder *template.Template
	status      *template.Template
}

type pageData struct {
	Owner    string
	Label    string
	Title    string
	Text     string
	ImageURI template.URL
}

// NewRenderer parses the page templates. owner is the name shown in the
// page heading.
func NewRenderer(owner string) *Renderer {
	return &Renderer{
		owner:       owner,
		placeholder: template.Must(template.ParseFS(templatesFS, "templates/placeholder.html")),
		status:      template.Must(template.ParseFS(templatesFS, "templates/status.html")),
	}
}

// Render produces the page for st. The absent status gets the placeholder
// page. Title and text are HTML-escaped; the image tag is always present.
func (r *Renderer) Render(seg models.Segment, st models.Status) ([]byte, error) {
	data := pageData{Owner: r.owner}
	tmpl := r.placeholder

	if !st.IsAbsent() {
		tmpl = r.status
		data.Label = seg.Label()
		data.Title = st.Title
		data.Text = st.Text
		data.ImageURI = imageURI(st.Image)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s page: %w", seg, err)
	}
	return buf.Bytes(), nil
}

// imageURI builds the data URI for image. Anything outside the base64
// alphabet yields an empty payload, which browsers show as a broken image.
func imageURI(image string) template.URL {
	if !isBase64(image) {
		return template.URL(imagePrefix)
	}
	return template.URL(imagePrefix + image)
}

func isBase64(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '+', c == '/', c == '=', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
