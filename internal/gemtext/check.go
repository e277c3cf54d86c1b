package gemtext

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ErrUnbalanced is returned by CheckBalanced for mismatched or unclosed tags.
var ErrUnbalanced = errors.New("unbalanced html")

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "source": {}, "track": {}, "wbr": {},
}

// CheckBalanced tokenizes an HTML fragment and verifies that every non-void
// start tag is closed in order.
func CheckBalanced(fragment string) error {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var stack []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return err
			}
			if len(stack) > 0 {
				return fmt.Errorf("%w: <%s> not closed", ErrUnbalanced, stack[len(stack)-1])
			}
			return nil
		case html.StartTagToken:
			name, _ := z.TagName()
			if _, void := voidElements[string(name)]; !void {
				stack = append(stack, string(name))
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if _, void := voidElements[string(name)]; void {
				continue
			}
			if len(stack) == 0 {
				return fmt.Errorf("%w: unexpected </%s>", ErrUnbalanced, name)
			}
			if top := stack[len(stack)-1]; top != string(name) {
				return fmt.Errorf("%w: </%s> closes <%s>", ErrUnbalanced, name, top)
			}
			stack = stack[:len(stack)-1]
		}
	}
}
