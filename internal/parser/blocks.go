package parser

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// fencedPayload returns the trimmed body of the first fenced block in reply
// that holds an edit batch. With a lang, only fences tagged with it
// (case-insensitive) are considered and the body may open an array or an
// object; without one, any fence whose body opens an array matches.
func fencedPayload(reply []byte, lang string) (string, bool) {
	var payload string
	found := false
	root := goldmark.DefaultParser().Parse(text.NewReader(reply))

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		fenced, ok := node.(*ast.FencedCodeBlock)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		if lang != "" && !strings.EqualFold(string(fenced.Language(reply)), lang) {
			return ast.WalkSkipChildren, nil
		}

		var body strings.Builder
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			body.Write(line.Value(reply))
		}
		trimmed := strings.TrimSpace(body.String())
		if !opensPayload(trimmed, lang != "") {
			return ast.WalkSkipChildren, nil
		}

		payload, found = trimmed, true
		return ast.WalkStop, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return "", false
	}
	return payload, found
}

func opensPayload(body string, tagged bool) bool {
	if strings.HasPrefix(body, "[") {
		return true
	}
	return tagged && strings.HasPrefix(body, "{")
}
