package stockroom

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/PaesslerAG/jsonpath"
	"github.com/sahilm/fuzzy"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalize lower-cases s and removes diacritics: "Résistance" becomes
// "resistance".
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// tokenize splits normalized s into words.
func tokenize(s string) []string {
	return strings.FieldsFunc(normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// markdownText returns the readable text of a markdown document, without
// markup nor link targets.
func markdownText(src []byte) string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))
	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(src))
			b.WriteByte(' ')
		case *ast.String:
			b.Write(n.Value)
			b.WriteByte(' ')
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// terms are the normalized search fragments of a definition.
type terms struct {
	id     string
	name   string
	tokens []string // sorted, unique
}

func newTerms(d *Definition) *terms {
	t := &terms{id: normalize(d.ID), name: normalize(d.Name)}
	var words []string
	words = append(words, tokenize(d.ID)...)
	words = append(words, tokenize(d.Name)...)
	words = append(words, tokenize(d.Summary)...)
	for _, l := range d.Labels {
		words = append(words, tokenize(l)...)
	}
	for _, v := range d.Attributes {
		words = append(words, tokenize(v)...)
	}
	if d.Body != "" {
		words = append(words, tokenize(markdownText([]byte(d.Body)))...)
	}
	slices.Sort(words)
	t.tokens = slices.Compact(words)
	return t
}

// withPrefix returns the refs having a word that starts with prefix.
func (x *Index) withPrefix(prefix string) map[Ref]bool {
	found := make(map[Ref]bool)
	i, _ := slices.BinarySearch(x.words, prefix)
	for ; i < len(x.words) && strings.HasPrefix(x.words[i], prefix); i++ {
		for _, r := range x.postings[x.words[i]] {
			found[r] = true
		}
	}
	return found
}

// Match is a search result.
type Match struct {
	Def   *Definition
	Score int
	Fuzzy bool // found by the fuzzy fallback
}

// Search finds the definitions matching all words of query: each word must
// start a word of the id, name, summary, labels, attribute values or body.
// Case and diacritics are ignored. Results are ranked: exact id, id prefix,
// name prefix, then the others; ties are ordered by kind then id.
//
// When nothing matches, a fuzzy match over ids and names is attempted.
func (x *Index) Search(query string) []Match {
	words := tokenize(query)
	if len(words) == 0 {
		return nil
	}
	q := normalize(strings.TrimSpace(query))

	candidates := x.withPrefix(words[0])
	for _, w := range words[1:] {
		if len(candidates) == 0 {
			break
		}
		next := x.withPrefix(w)
		maps.DeleteFunc(candidates, func(r Ref, _ bool) bool { return !next[r] })
	}

	var matches []Match
	for _, r := range x.refs {
		if !candidates[r] {
			continue
		}
		t := x.terms[r]
		score := 1
		switch {
		case t.id == q:
			score = 100
		case strings.HasPrefix(t.id, q):
			score = 50
		case strings.HasPrefix(t.name, q):
			score = 25
		}
		matches = append(matches, Match{Def: x.defs[r], Score: score})
	}
	if len(matches) == 0 {
		return x.fuzzySearch(query)
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return compareRef(a.Def.Ref(), b.Def.Ref())
	})
	return matches
}

func (x *Index) fuzzySearch(query string) []Match {
	data := make([]string, len(x.refs))
	for i, r := range x.refs {
		data[i] = x.terms[r].id + " " + x.terms[r].name
	}
	var matches []Match
	// fuzzy.Find returns matches sorted by decreasing score, stable on data order.
	for _, m := range fuzzy.Find(normalize(query), data) {
		matches = append(matches, Match{Def: x.defs[x.refs[m.Index]], Score: m.Score, Fuzzy: true})
	}
	return matches
}

// Where returns the definitions, of kind or of any kind if empty, for which
// the JSONPath expression selects something: a true boolean, a non-empty list
// or any other value. Each definition is seen as a document of its front
// matter fields plus "kind", "id" and "missing".
//
//	$.attributes.package          parts with a package attribute
//	$.labels[?(@ == "smd")]       parts labelled smd
func (x *Index) Where(ctx context.Context, kind Kind, expr string) ([]*Definition, error) {
	eval, err := jsonpath.New(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", expr, err)
	}
	var list []*Definition
	for _, d := range x.All(kind) {
		v, err := eval(ctx, d.Document())
		if err != nil {
			// unknown keys are reported as errors: nothing selected.
			continue
		}
		if selected(v) {
			list = append(list, d)
		}
	}
	return list, ctx.Err()
}

func selected(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}
