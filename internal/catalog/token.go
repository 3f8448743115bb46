// Placeholder grammar for template text.
// Markers are written as {N}, {FACTION}, {} and so on; each marker maps to a
// Token, and several markers may alias the same Token so that one context
// value feeds every spelling of it.
package catalog

import (
	"fmt"
	"strings"
)

// Token identifies a placeholder slot in template text.
type Token uint8

const (
	TokenNone         Token = iota // Literal segment, not a placeholder
	TokenSubject                   // {N} {RULER} {}: the subject's name as the caller formats it
	TokenSubjectShort              // {S} {NAME}: short form of the subject's name
	TokenPredecessor               // {P} {DEAD}
	TokenRebel                     // {REBEL}
	TokenFaction                   // {F} {FACTION}
	TokenTitle                     // {T}: title of office
	TokenPlace                     // {PLACE}
	TokenAdjective                 // {ADJ}
	TokenEnemy                     // {ENEMY}
	TokenCreature                  // {BEAST}
	TokenArtifact                  // {ARTIFACT}
	TokenDisease                   // {D} {PLAGUE}
)

// Kind is the semantic type of a token's value.
type Kind uint8

const (
	KindNone Kind = iota
	KindName
	KindFactionName
	KindOfficeTitle
	KindPlaceName
	KindAdjectiveOfOrigin
	KindEnemyGroup
	KindCreatureName
	KindArtifactName
	KindDiseaseName
)

var markerTokens = map[string]Token{
	"":         TokenSubject,
	"N":        TokenSubject,
	"RULER":    TokenSubject,
	"S":        TokenSubjectShort,
	"NAME":     TokenSubjectShort,
	"P":        TokenPredecessor,
	"DEAD":     TokenPredecessor,
	"REBEL":    TokenRebel,
	"F":        TokenFaction,
	"FACTION":  TokenFaction,
	"T":        TokenTitle,
	"PLACE":    TokenPlace,
	"ADJ":      TokenAdjective,
	"ENEMY":    TokenEnemy,
	"BEAST":    TokenCreature,
	"ARTIFACT": TokenArtifact,
	"D":        TokenDisease,
	"PLAGUE":   TokenDisease,
}

var tokenNames = map[Token]string{
	TokenNone:         "none",
	TokenSubject:      "subject",
	TokenSubjectShort: "subject-short",
	TokenPredecessor:  "predecessor",
	TokenRebel:        "rebel",
	TokenFaction:      "faction",
	TokenTitle:        "title",
	TokenPlace:        "place",
	TokenAdjective:    "adjective",
	TokenEnemy:        "enemy",
	TokenCreature:     "creature",
	TokenArtifact:     "artifact",
	TokenDisease:      "disease",
}

// LookupMarker returns the token for a marker name (the text between braces).
func LookupMarker(marker string) (Token, bool) {
	t, ok := markerTokens[marker]
	return t, ok
}

// String returns the token's name.
func (t Token) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", uint8(t))
}

// Kind returns the semantic type of the token's value.
func (t Token) Kind() Kind {
	switch t {
	case TokenSubject, TokenSubjectShort, TokenPredecessor, TokenRebel:
		return KindName
	case TokenFaction:
		return KindFactionName
	case TokenTitle:
		return KindOfficeTitle
	case TokenPlace:
		return KindPlaceName
	case TokenAdjective:
		return KindAdjectiveOfOrigin
	case TokenEnemy:
		return KindEnemyGroup
	case TokenCreature:
		return KindCreatureName
	case TokenArtifact:
		return KindArtifactName
	case TokenDisease:
		return KindDiseaseName
	default:
		return KindNone
	}
}

// Segment is one piece of parsed template text: either a literal run or a
// placeholder. Marker keeps the spelling used in the source text.
type Segment struct {
	Literal string
	Token   Token
	Marker  string
}

// IsToken reports whether the segment is a placeholder.
func (s Segment) IsToken() bool {
	return s.Token != TokenNone
}

// Text is template text parsed once at load time.
type Text struct {
	Raw      string
	Segments []Segment
}

// String returns the unparsed source text.
func (t Text) String() string {
	return t.Raw
}

// Tokens returns the distinct tokens referenced by the text in order of first
// appearance.
func (t Text) Tokens() []Token {
	var out []Token
	seen := make(map[Token]bool)
	for _, seg := range t.Segments {
		if seg.IsToken() && !seen[seg.Token] {
			seen[seg.Token] = true
			out = append(out, seg.Token)
		}
	}
	return out
}

// SyntaxError reports a malformed or unknown placeholder marker.
type SyntaxError struct {
	Text   string
	Offset int
	Marker string
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Marker != "" {
		return fmt.Sprintf("%s {%s} at offset %d in %q", e.Reason, e.Marker, e.Offset, e.Text)
	}
	return fmt.Sprintf("%s at offset %d in %q", e.Reason, e.Offset, e.Text)
}

// ParseText splits raw template text into literal and placeholder segments.
// A '{' always opens a marker; a lone '}' is literal.
func ParseText(raw string) (Text, error) {
	text := Text{Raw: raw}
	rest := raw
	offset := 0

	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			text.Segments = append(text.Segments, Segment{Literal: rest})
			break
		}
		if open > 0 {
			text.Segments = append(text.Segments, Segment{Literal: rest[:open]})
		}

		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			return Text{}, &SyntaxError{Text: raw, Offset: offset + open, Reason: "unterminated marker"}
		}
		marker := rest[open+1 : open+closing]
		tok, ok := LookupMarker(marker)
		if !ok {
			return Text{}, &SyntaxError{Text: raw, Offset: offset + open, Marker: marker, Reason: "unknown marker"}
		}
		text.Segments = append(text.Segments, Segment{Token: tok, Marker: marker})

		consumed := open + closing + 1
		rest = rest[consumed:]
		offset += consumed
	}

	return text, nil
}

// MustParseText is ParseText for literals known to be valid.
func MustParseText(raw string) Text {
	t, err := ParseText(raw)
	if err != nil {
		panic(err)
	}
	return t
}
