package catalog

import (
	"fmt"
	"strings"
)

// Problem is one structural defect found while loading a catalog.
type Problem struct {
	Category string
	Key      string
	Message  string
}

func (p Problem) String() string {
	if p.Key != "" {
		return fmt.Sprintf("%s[%s]: %s", p.Category, p.Key, p.Message)
	}
	return fmt.Sprintf("%s: %s", p.Category, p.Message)
}

// ValidationError lists every structural defect of a catalog. It is fatal:
// a catalog that fails validation is never returned.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return fmt.Sprintf("catalog validation failed (%d problems): %s", len(e.Problems), strings.Join(parts, "; "))
}

// Has reports whether a problem was recorded for the category and key.
func (e *ValidationError) Has(category, key string) bool {
	for _, p := range e.Problems {
		if p.Category == category && p.Key == key {
			return true
		}
	}
	return false
}

type tokenSet map[Token]bool

func newTokenSet(tokens ...Token) tokenSet {
	s := make(tokenSet, len(tokens))
	for _, t := range tokens {
		s[t] = true
	}
	return s
}

func (s tokenSet) with(tokens ...Token) tokenSet {
	out := make(tokenSet, len(s)+len(tokens))
	for t := range s {
		out[t] = true
	}
	for _, t := range tokens {
		out[t] = true
	}
	return out
}

// Tokens each category's templates may reference. The engine's helpers fill
// exactly these, so a catalog that validates can always be rendered by them.
var (
	dynastyTokens      = newTokenSet(TokenSubject)
	foundingTokens     = newTokenSet(TokenSubject, TokenFaction, TokenTitle)
	coronationTokens   = foundingTokens.with(TokenPredecessor)
	deathTokens        = newTokenSet(TokenSubject, TokenSubjectShort, TokenFaction)
	diseaseDeathTokens = deathTokens.with(TokenDisease)
	successionTokens   = newTokenSet(TokenSubject, TokenFaction, TokenPredecessor)
	reignTokens        = newTokenSet(
		TokenSubject, TokenSubjectShort, TokenFaction, TokenPlace, TokenEnemy,
		TokenAdjective, TokenCreature, TokenArtifact, TokenDisease, TokenRebel,
	)
)

type validator struct {
	problems []Problem
	failed   map[string]bool // categories that could not be decoded
}

// newValidator starts from problems already found while decoding. Their
// categories are treated as failed.
func newValidator(problems []Problem) *validator {
	v := &validator{failed: make(map[string]bool)}
	for _, p := range problems {
		v.problems = append(v.problems, p)
		v.failed[p.Category] = true
	}
	return v
}

// add records a problem. Categories that failed to decode already have one,
// so follow-on problems for them are dropped.
func (v *validator) add(category, key, format string, args ...any) {
	if v.failed[category] {
		return
	}
	v.problems = append(v.problems, Problem{
		Category: category,
		Key:      key,
		Message:  fmt.Sprintf(format, args...),
	})
}

// fail records a category-level problem and suppresses the rest for it.
func (v *validator) fail(category, format string, args ...any) {
	if v.failed[category] {
		return
	}
	v.add(category, "", format, args...)
	v.failed[category] = true
}

func (v *validator) err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}

// plain checks a sequence of plain strings, which may not contain markers.
func (v *validator) plain(category, key string, items []string, required bool) []string {
	if required && len(items) == 0 {
		v.add(category, key, "must not be empty")
	}
	for i, item := range items {
		if strings.TrimSpace(item) == "" {
			v.add(category, key, "item %d is blank", i)
			continue
		}
		text, err := ParseText(item)
		if err != nil {
			v.add(category, key, "item %d: %v", i, err)
			continue
		}
		if toks := text.Tokens(); len(toks) > 0 {
			v.add(category, key, "item %d: plain entries may not contain placeholders", i)
		}
	}
	return items
}

// text parses one template string and checks its tokens against allowed.
func (v *validator) text(category, key string, index int, field, raw string, allowed tokenSet) Text {
	if strings.TrimSpace(raw) == "" {
		v.add(category, key, "item %d: %s is blank", index, field)
		return Text{Raw: raw}
	}
	text, err := ParseText(raw)
	if err != nil {
		v.add(category, key, "item %d: %s: %v", index, field, err)
		return Text{Raw: raw}
	}
	for _, seg := range text.Segments {
		if seg.IsToken() && !allowed[seg.Token] {
			v.add(category, key, "item %d: %s: placeholder {%s} is not allowed here", index, field, seg.Marker)
		}
	}
	return text
}

func (v *validator) templates(category, key string, raws []rawTemplate, allowed tokenSet, required bool) []Template {
	if required && len(raws) == 0 {
		v.add(category, key, "must not be empty")
	}
	out := make([]Template, 0, len(raws))
	for i, r := range raws {
		out = append(out, Template{
			ID:    templateID(category, key, i),
			Title: v.text(category, key, i, "title", r.Title, allowed),
			Desc:  v.text(category, key, i, "desc", r.Desc, allowed),
		})
	}
	return out
}

func (v *validator) patterns(category, key string, items []string, allowed tokenSet, required bool) []Text {
	if required && len(items) == 0 {
		v.add(category, key, "must not be empty")
	}
	out := make([]Text, 0, len(items))
	for i, item := range items {
		out = append(out, v.text(category, key, i, "pattern", item, allowed))
	}
	return out
}

func templateID(category, key string, index int) string {
	if key == "" {
		return fmt.Sprintf("%s#%d", category, index)
	}
	return fmt.Sprintf("%s/%s#%d", category, key, index)
}
