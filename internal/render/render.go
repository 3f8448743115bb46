// Package render fills placeholder tokens in parsed template text.
package render

import (
	"fmt"
	"strings"

	"github.com/talgya/backstory/internal/catalog"
)

// Context maps tokens to pre-formatted values. Aliased markers share a token,
// so {N} and {RULER} both read the Subject value.
type Context map[catalog.Token]string

// With returns a copy of c with tok set to value.
func (c Context) With(tok catalog.Token, value string) Context {
	out := make(Context, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	out[tok] = value
	return out
}

// Rendered is a filled title/description pair.
type Rendered struct {
	Title string
	Desc  string
}

// MissingPlaceholderError names the first token a template needs that the
// context does not supply, or supplies as an empty string. Marker is the spelling used in the template.
type MissingPlaceholderError struct {
	Marker   string
	Token    catalog.Token
	Template string
}

func (e *MissingPlaceholderError) Error() string {
	if e.Template != "" {
		return fmt.Sprintf("template %s: no value for {%s} (%s)", e.Template, e.Marker, e.Token)
	}
	return fmt.Sprintf("no value for {%s} (%s)", e.Marker, e.Token)
}

// Render fills both halves of a template from one context. Every token is
// checked before any output is built, so an error never comes with partial
// text.
func Render(t catalog.Template, ctx Context) (Rendered, error) {
	for _, text := range []catalog.Text{t.Title, t.Desc} {
		if err := check(text, ctx); err != nil {
			err.Template = t.ID
			return Rendered{}, err
		}
	}
	return Rendered{Title: fill(t.Title, ctx), Desc: fill(t.Desc, ctx)}, nil
}

// RenderText fills a single text, such as a dynasty name pattern.
func RenderText(text catalog.Text, ctx Context) (string, error) {
	if err := check(text, ctx); err != nil {
		return "", err
	}
	return fill(text, ctx), nil
}

func check(text catalog.Text, ctx Context) *MissingPlaceholderError {
	for _, seg := range text.Segments {
		if !seg.IsToken() {
			continue
		}
		if v, ok := ctx[seg.Token]; !ok || v == "" {
			return &MissingPlaceholderError{Marker: seg.Marker, Token: seg.Token}
		}
	}
	return nil
}

func fill(text catalog.Text, ctx Context) string {
	var b strings.Builder
	b.Grow(len(text.Raw))
	for _, seg := range text.Segments {
		if seg.IsToken() {
			b.WriteString(ctx[seg.Token])
		} else {
			b.WriteString(seg.Literal)
		}
	}
	return b.String()
}
