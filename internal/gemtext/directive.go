package gemtext

import "strings"

// FenceToken opens and closes a preformatted block.
const FenceToken = "```"

// Kind identifies the directive a line carries.
type Kind int

const (
	KindPlainText Kind = iota
	KindBlank
	KindHeader
	KindListItem
	KindQuote
	KindLink
	KindFence
)

var kindNames = map[Kind]string{
	KindPlainText: "text",
	KindBlank:     "blank",
	KindHeader:    "header",
	KindListItem:  "list_item",
	KindQuote:     "quote",
	KindLink:      "link",
	KindFence:     "fence",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Directive is the classification of one trimmed line.
//
// Text holds the content after the prefix token for headers, list items and
// quotes, and the whole line for plain text. Target and Description are only
// set for links.
type Directive struct {
	Kind        Kind
	Level       int
	Text        string
	Target      string
	Description string
}

// Classify determines the directive of a line that has already been trimmed
// of surrounding whitespace. It never fails: anything unrecognized is plain text.
func Classify(line string) Directive {
	if strings.HasPrefix(line, FenceToken) {
		return Directive{Kind: KindFence}
	}

	prefix, content, found := strings.Cut(line, " ")
	if !found {
		prefix, content = "", line
	}

	switch prefix {
	case "*":
		return Directive{Kind: KindListItem, Text: content}
	case ">":
		return Directive{Kind: KindQuote, Text: content}
	case "#", "##", "###":
		return Directive{Kind: KindHeader, Level: len(prefix), Text: content}
	case "=>":
		target, desc, _ := strings.Cut(strings.TrimLeft(content, " \t"), " ")
		return Directive{Kind: KindLink, Target: target, Description: strings.TrimSpace(desc)}
	}

	if line == "" {
		return Directive{Kind: KindBlank}
	}
	return Directive{Kind: KindPlainText, Text: line}
}
