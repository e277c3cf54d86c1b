// Package wrapper splices generated or passthrough content into header/footer
// wrapper templates.
package wrapper

import (
	"errors"
	"os"
	"strings"

	ferrors "git.home.luguber.info/inful/cosmodrome/internal/foundation/errors"
)

// DefaultMarker separates the header from the footer in a wrapper template.
const DefaultMarker = "<!-- CONTENT -->"

// ErrMalformedTemplate is returned when a template does not contain the marker.
var ErrMalformedTemplate = errors.New("malformed template: placeholder marker not found")

// Template is a wrapper split at its placeholder marker.
type Template struct {
	Header string
	Footer string
}

// ParseTemplate splits text at the first occurrence of marker. Everything after
// that occurrence, including any further markers, belongs to the footer.
func ParseTemplate(text, marker string) (Template, error) {
	if marker == "" {
		marker = DefaultMarker
	}
	header, footer, found := strings.Cut(text, marker)
	if !found {
		return Template{}, ferrors.TemplateError("wrapper template has no placeholder").
			WithContext("marker", marker).
			WithCause(ErrMalformedTemplate).
			Build()
	}
	return Template{Header: header, Footer: footer}, nil
}

// LoadTemplate reads and parses a wrapper template file.
func LoadTemplate(path, marker string) (Template, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the site configuration
	if err != nil {
		return Template{}, ferrors.WrapError(err, ferrors.CategoryConfig, "read wrapper template").
			Fatal().
			WithContext("path", path).
			Build()
	}
	tpl, err := ParseTemplate(string(data), marker)
	if err != nil {
		if classified, ok := ferrors.AsClassified(err); ok {
			return Template{}, classified.WithContext("path", path)
		}
		return Template{}, err
	}
	return tpl, nil
}

// Splice returns header + content + footer.
func (t Template) Splice(content string) string {
	var b strings.Builder
	b.Grow(len(t.Header) + len(content) + len(t.Footer))
	b.WriteString(t.Header)
	b.WriteString(content)
	b.WriteString(t.Footer)
	return b.String()
}

// Splice parses text and splices content into it in one call.
func Splice(text, marker, content string) (string, error) {
	tpl, err := ParseTemplate(text, marker)
	if err != nil {
		return "", err
	}
	return tpl.Splice(content), nil
}
