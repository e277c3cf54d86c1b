package gemtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, doc string) []string {
	t.Helper()
	return NewTranspiler(DefaultOptions()).Render(SplitLines(doc))
}

func TestRender_ListGrouping(t *testing.T) {
	got := render(t, "* a\n* b\n# Header")
	assert.Equal(t, []string{"<ul>", "<li>a</li>", "<li>b</li>", "</ul>", "<h1>Header</h1>"}, got)
}

func TestRender_QuoteBlock(t *testing.T) {
	got := render(t, "A quote\n> one\n> two\n- Yuri Gagarin")
	assert.Equal(t, []string{
		"<p>A quote</p>",
		"<blockquote>", "one<br/>", "two<br/>", "</blockquote>",
		"<p>- Yuri Gagarin</p>",
	}, got)
}

func TestRender_ListThenQuoteCloseEachOther(t *testing.T) {
	got := render(t, "* a\n> q\n* b")
	assert.Equal(t, []string{
		"<ul>", "<li>a</li>", "</ul>",
		"<blockquote>", "q<br/>", "</blockquote>",
		"<ul>", "<li>b</li>", "</ul>",
	}, got)
}

func TestRender_Preformatted(t *testing.T) {
	got := render(t, "```\n  # not a header\n* nor a list\n```\ntext")
	assert.Equal(t, []string{"<pre>", "  # not a header", "* nor a list", "</pre>", "<p>text</p>"}, got)
}

func TestRender_FenceClosesOpenList(t *testing.T) {
	got := render(t, "* a\n```\nx\n```")
	assert.Equal(t, []string{"<ul>", "<li>a</li>", "</ul>", "<pre>", "x", "</pre>"}, got)
}

func TestRender_BlankLineClosesList(t *testing.T) {
	got := render(t, "* a\n\n* b")
	assert.Equal(t, []string{"<ul>", "<li>a</li>", "</ul>", "<br/>", "<ul>", "<li>b</li>", "</ul>"}, got)
}

// Unterminated blocks are closed at end of document rather than left open.
func TestRender_ClosesBlocksAtEndOfDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		last string
	}{
		{"list", "* a\n* b", "</ul>"},
		{"quote", "> a", "</blockquote>"},
		{"pre", "```\ncode", "</pre>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, tt.doc)
			require.NotEmpty(t, got)
			assert.Equal(t, tt.last, got[len(got)-1])
			assert.NoError(t, CheckBalanced(strings.Join(got, "\n")))
		})
	}
}

func TestRender_Headers(t *testing.T) {
	got := render(t, "3\n### 2\n## 1\n# Poehali!\n#### 0")
	assert.Equal(t, []string{"<p>3</p>", "<h3>2</h3>", "<h2>1</h2>", "<h1>Poehali!</h1>", "<p>#### 0</p>"}, got)
}

func TestRender_Links(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"local gemtext rewritten", "=> /about.gmi About", `<div><a href="/about.html">About</a></div>`},
		{"nested local path", "=> /posts/first.gmi First post", `<div><a href="/posts/first.html">First post</a></div>`},
		{"relative gemtext untouched", "=> about.gmi About", `<div><a href="about.gmi">About</a></div>`},
		{"remote link", "=> https://github.com/yaky-dev/cosmodrome Cosmodrome on GitHub", `<div><a href="https://github.com/yaky-dev/cosmodrome">Cosmodrome on GitHub</a></div>`},
		{"no description", "=> /", `<div><a href="/"></a></div>`},
		{"mixed case image", "=> http://x/pic.PNG My Picture", `<div><img src="http://x/pic.PNG" alt="My Picture">My Picture</div>`},
		{"webp image", "=> /img/a.webp", `<div><img src="/img/a.webp" alt=""></div>`},
		{"uppercase gemtext extension", "=> /NEWS.GMI News", `<div><a href="/NEWS.html">News</a></div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string{tt.want}, render(t, tt.line))
		})
	}
}

func TestRender_EscapesText(t *testing.T) {
	got := render(t, "a <b> & c\n=> /x?a=1&b=2 \"q\"")
	assert.Equal(t, []string{
		"<p>a &lt;b&gt; &amp; c</p>",
		`<div><a href="/x?a=1&amp;b=2">&#34;q&#34;</a></div>`,
	}, got)
}

func TestRender_RawText(t *testing.T) {
	tr := NewTranspiler(Options{RawText: true})
	assert.Equal(t, []string{"<p><em>hi</em></p>"}, tr.Render([]string{"<em>hi</em>"}))
}

func TestRender_CustomExtensions(t *testing.T) {
	tr := NewTranspiler(Options{MarkupExtension: "gemini", HTMLExtension: "htm"})
	assert.Equal(t, []string{`<div><a href="/a.htm">A</a></div>`}, tr.Render([]string{"=> /a.gemini A"}))
}

func TestRender_Idempotent(t *testing.T) {
	doc := "## About\n\n* Post 1\n* Post 2\n> quote\n```\nart\n```\n=> /about.gmi About"
	tr := NewTranspiler(DefaultOptions())
	assert.Equal(t, tr.RenderDocument(doc), tr.RenderDocument(doc))
}

func TestRenderDocument_Sample(t *testing.T) {
	doc := "## About\n\nThis is a sample page\n\n### Posts:\n* Post 1\n* Post 2\n\nA quote\n> The Earth is blue\n- Yuri Gagarin\n\n```\nSome table\n```"
	want := strings.Join([]string{
		"<h2>About</h2>",
		"<br/>",
		"<p>This is a sample page</p>",
		"<br/>",
		"<h3>Posts:</h3>",
		"<ul>", "<li>Post 1</li>", "<li>Post 2</li>", "</ul>",
		"<br/>",
		"<p>A quote</p>",
		"<blockquote>", "The Earth is blue<br/>", "</blockquote>",
		"<p>- Yuri Gagarin</p>",
		"<br/>",
		"<pre>", "Some table", "</pre>",
	}, "\n")
	got := NewTranspiler(DefaultOptions()).RenderDocument(doc)
	assert.Equal(t, want, got)
	assert.NoError(t, CheckBalanced(got))
}

func TestStep_IsPure(t *testing.T) {
	tr := NewTranspiler(DefaultOptions())
	start := State{}
	next, frags := tr.Step(start, Directive{Kind: KindListItem, Text: "x"}, "* x")
	assert.Equal(t, State{}, start)
	assert.Equal(t, State{InList: true}, next)
	assert.Equal(t, []string{"<ul>", "<li>x</li>"}, frags)
	assert.True(t, next.Open())

	closed, frags := tr.Step(next, Directive{Kind: KindBlank}, "")
	assert.False(t, closed.Open())
	assert.Equal(t, []string{"</ul>", "<br/>"}, frags)
}

func TestFinish_Empty(t *testing.T) {
	assert.Empty(t, NewTranspiler(DefaultOptions()).Finish(State{}))
}

// Any mix of directives renders to balanced markup.
func TestRender_AlwaysBalanced(t *testing.T) {
	pieces := []string{"* item", "> quote", "```", "# h", "=> /a.gmi a", "", "text", "=> /p.png"}
	tr := NewTranspiler(DefaultOptions())
	// Enumerate every sequence of three pieces.
	for _, a := range pieces {
		for _, b := range pieces {
			for _, c := range pieces {
				doc := []string{a, b, c}
				out := strings.Join(tr.Render(doc), "\n")
				require.NoError(t, CheckBalanced(out), "doc=%q out=%q", doc, out)
			}
		}
	}
}
