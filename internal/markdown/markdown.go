// Package markdown builds the markdown snippets emitted by the built-in blocks.
package markdown

import (
	"fmt"
	"net/url"
	"strings"
)

const shieldsBase = "https://img.shields.io"

// Bold wraps text in **
func Bold(text string) string {
	return "**" + text + "**"
}

// Link renders an inline link
func Link(text, href string) string {
	return fmt.Sprintf("[%s](%s)", text, href)
}

// Code wraps text in backticks
func Code(text string) string {
	return "`" + text + "`"
}

// Image renders an image with an empty alt text
func Image(src string) string {
	return fmt.Sprintf("![](%s)", src)
}

// CodeBlock fences code. The body is emitted as given, so callers supply the
// leading newline.
func CodeBlock(lang, code string) string {
	return "```" + lang + code + "\n```"
}

// Shield describes a static shields.io badge
type Shield struct {
	Label   string
	Message string
	Color   string
	Href    string
}

// String renders the badge image wrapped in a link to Href
func (s Shield) String() string {
	q := url.Values{}
	q.Set("label", s.Label)
	if s.Message != "" {
		q.Set("message", s.Message)
	}
	if s.Color != "" {
		q.Set("color", s.Color)
	}
	// Encode sorts by key
	src := shieldsBase + "/static/v1?" + q.Encode()
	return Link(Image(src), s.Href)
}

// NpmVersionShield describes an npm version badge
type NpmVersionShield struct {
	PackageName string
	Color       string
	LabelColor  string
}

// String renders the badge linked to the package's npm page
func (s NpmVersionShield) String() string {
	q := url.Values{}
	if s.Color != "" {
		q.Set("color", s.Color)
	}
	if s.LabelColor != "" {
		q.Set("labelColor", s.LabelColor)
	}

	src := shieldsBase + "/npm/v/" + s.PackageName
	if len(q) > 0 {
		src += "?" + q.Encode()
	}
	return Link(Image(src), "https://www.npmjs.com/package/"+s.PackageName)
}

// TableBuilder accumulates rows of a pipe table
type TableBuilder struct {
	cols []string
	rows [][]string
}

// Table starts a table with the given header columns
func Table(cols ...string) *TableBuilder {
	return &TableBuilder{cols: cols}
}

// AddRow appends a row and returns the builder
func (t *TableBuilder) AddRow(cells ...string) *TableBuilder {
	t.rows = append(t.rows, cells)
	return t
}

// String renders the header and divider lines followed by one line per row
func (t *TableBuilder) String() string {
	divider := make([]string, len(t.cols))
	for i := range divider {
		divider[i] = "---"
	}

	body := make([]string, len(t.rows))
	for i, row := range t.rows {
		body[i] = strings.Join(row, " | ")
	}

	return strings.Join(t.cols, " | ") + "\n" +
		strings.Join(divider, " | ") + "\n" +
		strings.Join(body, "\n")
}
