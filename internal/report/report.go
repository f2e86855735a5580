// Package report renders a generated diagram as a Markdown or HTML document.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/plantuml"
)

// Input is everything a report shows.
type Input struct {
	Description string
	Type        diagram.Type
	Markup      string
	Encoded     plantuml.Encoded
}

// Build renders in as Markdown.
func Build(in Input) string {
	var b strings.Builder

	title := "Diagram"
	if in.Type != "" {
		title = strings.ToUpper(string(in.Type[:1])) + string(in.Type[1:]) + " diagram"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if desc := strings.TrimSpace(in.Description); desc != "" {
		b.WriteString("## Description\n\n")
		b.WriteString(desc)
		b.WriteString("\n\n")
	}

	b.WriteString("## Diagram\n\n")
	if in.Encoded.URL == "" {
		b.WriteString("_No diagram available._\n\n")
	} else {
		fmt.Fprintf(&b, "![%s](%s)\n\n", title, in.Encoded.URL)
		fmt.Fprintf(&b, "[Open in PlantUML server](%s)\n\n", in.Encoded.URL)
	}

	if in.Markup != "" {
		fence := fenceFor(in.Markup)
		b.WriteString("## Source\n\n")
		fmt.Fprintf(&b, "%splantuml\n%s\n%s\n", fence, strings.TrimRight(in.Markup, "\n"), fence)
	}
	return b.String()
}

// fenceFor returns a backtick fence longer than any run inside s.
func fenceFor(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return strings.Repeat("`", max(3, longest+1))
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
}

// HTML converts Markdown to an HTML fragment.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := newMarkdown().Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; color: #24292f; }
img { max-width: 100%; border: 1px solid #d0d7de; border-radius: 6px; }
pre { padding: 1rem; overflow: auto; border-radius: 6px; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Page renders in as a standalone HTML page.
func Page(in Input) (string, error) {
	body, err := HTML(Build(in))
	if err != nil {
		return "", err
	}
	title := "Diagram"
	if in.Type != "" {
		title = string(in.Type) + " diagram"
	}

	var buf bytes.Buffer
	err = pageTmpl.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body)})
	if err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	return buf.String(), nil
}
