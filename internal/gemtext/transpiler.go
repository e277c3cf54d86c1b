package gemtext

import (
	"html"
	"strconv"
	"strings"
)

// imageExtensions are rendered as <img> when a link target ends with one of them.
var imageExtensions = []string{"jpg", "gif", "png", "svg", "webp"}

// Options controls how links and text are rendered.
type Options struct {
	// MarkupExtension is the source extension (without dot) of local pages.
	MarkupExtension string
	// HTMLExtension replaces MarkupExtension in local link targets.
	HTMLExtension string
	// RawText disables HTML escaping of line content and link attributes.
	RawText bool
}

// DefaultOptions returns the options matching the default site layout.
func DefaultOptions() Options {
	return Options{MarkupExtension: "gmi", HTMLExtension: "html"}
}

// State is the render context for one document. The zero value is the
// state at the start of a document.
type State struct {
	InList  bool
	InQuote bool
	InPre   bool
}

// Open reports whether any block is still waiting for its closing tag.
func (s State) Open() bool {
	return s.InList || s.InQuote || s.InPre
}

// Transpiler renders gemtext directives as HTML fragments.
type Transpiler struct {
	opts Options
}

// NewTranspiler creates a Transpiler. Empty extensions fall back to DefaultOptions.
func NewTranspiler(opts Options) *Transpiler {
	def := DefaultOptions()
	if opts.MarkupExtension == "" {
		opts.MarkupExtension = def.MarkupExtension
	}
	if opts.HTMLExtension == "" {
		opts.HTMLExtension = def.HTMLExtension
	}
	return &Transpiler{opts: opts}
}

// Step applies one directive to s. raw is the untrimmed source line, emitted
// as-is inside a preformatted block.
func (t *Transpiler) Step(s State, d Directive, raw string) (State, []string) {
	if s.InPre {
		if d.Kind == KindFence {
			s.InPre = false
			return s, []string{"</pre>"}
		}
		return s, []string{t.text(raw)}
	}

	var out []string
	if s.InList && d.Kind != KindListItem {
		out = append(out, "</ul>")
		s.InList = false
	}
	if s.InQuote && d.Kind != KindQuote {
		out = append(out, "</blockquote>")
		s.InQuote = false
	}

	switch d.Kind {
	case KindFence:
		s.InPre = true
		out = append(out, "<pre>")
	case KindListItem:
		if !s.InList {
			out = append(out, "<ul>")
			s.InList = true
		}
		out = append(out, "<li>"+t.text(d.Text)+"</li>")
	case KindQuote:
		if !s.InQuote {
			out = append(out, "<blockquote>")
			s.InQuote = true
		}
		out = append(out, t.text(d.Text)+"<br/>")
	case KindHeader:
		level := strconv.Itoa(d.Level)
		out = append(out, "<h"+level+">"+t.text(d.Text)+"</h"+level+">")
	case KindLink:
		out = append(out, t.link(d.Target, d.Description))
	case KindBlank:
		out = append(out, "<br/>")
	default:
		out = append(out, "<p>"+t.text(d.Text)+"</p>")
	}
	return s, out
}

// Finish returns the closing tags for every block still open in s.
func (t *Transpiler) Finish(s State) []string {
	var out []string
	if s.InPre {
		out = append(out, "</pre>")
	}
	if s.InList {
		out = append(out, "</ul>")
	}
	if s.InQuote {
		out = append(out, "</blockquote>")
	}
	return out
}

// Render transpiles a document given as lines into HTML fragments.
func (t *Transpiler) Render(lines []string) []string {
	var (
		state State
		out   = make([]string, 0, len(lines))
	)
	for _, raw := range lines {
		var frags []string
		state, frags = t.Step(state, Classify(strings.TrimSpace(raw)), raw)
		out = append(out, frags...)
	}
	return append(out, t.Finish(state)...)
}

// RenderDocument transpiles a whole document and joins the fragments with newlines.
func (t *Transpiler) RenderDocument(doc string) string {
	return strings.Join(t.Render(SplitLines(doc)), "\n")
}

func (t *Transpiler) link(target, desc string) string {
	for _, ext := range imageExtensions {
		if hasSuffixFold(target, "."+ext) {
			return `<div><img src="` + t.attr(target) + `" alt="` + t.attr(desc) + `">` + t.text(desc) + `</div>`
		}
	}
	href := target
	if strings.HasPrefix(target, "/") && hasSuffixFold(target, "."+t.opts.MarkupExtension) {
		href = target[:len(target)-len(t.opts.MarkupExtension)] + t.opts.HTMLExtension
	}
	return `<div><a href="` + t.attr(href) + `">` + t.text(desc) + `</a></div>`
}

func (t *Transpiler) text(s string) string {
	if t.opts.RawText {
		return s
	}
	return html.EscapeString(s)
}

func (t *Transpiler) attr(s string) string {
	if t.opts.RawText {
		return strings.ReplaceAll(s, `"`, "&#34;")
	}
	return html.EscapeString(s)
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
