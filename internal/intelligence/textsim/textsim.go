// Package textsim computes TF-IDF cosine similarity between short issue texts.
//
// A Vectorizer is bound to the corpus it was built from. Callers build a new
// one whenever the corpus changes; scores from different vectorizers are not
// comparable.
package textsim

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MinTokenRunes is the shortest token kept by Tokenize.
const MinTokenRunes = 2

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"been": {}, "but": {}, "by": {}, "for": {}, "from": {}, "has": {},
	"have": {}, "he": {}, "her": {}, "his": {}, "in": {}, "into": {}, "is": {},
	"it": {}, "its": {}, "of": {}, "on": {}, "or": {}, "our": {}, "she": {},
	"that": {}, "the": {}, "their": {}, "there": {}, "they": {}, "this": {},
	"to": {}, "was": {}, "we": {}, "were": {}, "with": {}, "near": {},
	"very": {}, "since": {}, "not": {}, "no": {}, "my": {}, "me": {},
	"so": {}, "do": {}, "does": {}, "did": {}, "all": {}, "any": {},
	"also": {}, "there's": {}, "please": {}, "than": {}, "too": {},
}

// Tokenize normalises text and splits it into comparable terms. Accents are
// folded, case is lowered, stop words and one-letter tokens are dropped and
// simple plurals are reduced ("potholes" -> "pothole").
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range norm.NFKD.String(text) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}

	fields := strings.FieldsFunc(b.String(), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < MinTokenRunes {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, stem(f))
	}
	return tokens
}

func stem(tok string) string {
	switch {
	case len(tok) > 4 && strings.HasSuffix(tok, "ies"):
		return tok[:len(tok)-3] + "y"
	case len(tok) > 3 && strings.HasSuffix(tok, "s") &&
		!strings.HasSuffix(tok, "ss") && !strings.HasSuffix(tok, "us"):
		return tok[:len(tok)-1]
	}
	return tok
}

// Term is one weighted dimension of a Vector.
type Term struct {
	Text   string
	Weight float64
}

// Vector is an L2-normalised sparse TF-IDF vector, sorted by term.
type Vector []Term

// Vectorizer holds document frequencies for one corpus.
type Vectorizer struct {
	docs int
	df   map[string]int
}

// NewVectorizer builds the vocabulary and document frequencies of corpus.
func NewVectorizer(corpus []string) *Vectorizer {
	v := &Vectorizer{
		docs: len(corpus),
		df:   make(map[string]int),
	}
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			v.df[tok]++
		}
	}
	return v
}

// Documents returns the corpus size.
func (v *Vectorizer) Documents() int {
	return v.docs
}

// VocabularySize returns the number of distinct terms in the corpus.
func (v *Vectorizer) VocabularySize() int {
	return len(v.df)
}

// IDF returns the smoothed inverse document frequency ln((1+n)/(1+df))+1.
// Terms outside the corpus use df=0.
func (v *Vectorizer) IDF(term string) float64 {
	n := float64(v.docs)
	df := float64(v.df[term])
	return math.Log((1+n)/(1+df)) + 1
}

// Vectorize returns the TF-IDF vector of text. Empty text yields a nil vector.
func (v *Vectorizer) Vectorize(text string) Vector {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}

	vec := make(Vector, 0, len(tf))
	var norm2 float64
	for term, count := range tf {
		w := float64(count) * v.IDF(term)
		vec = append(vec, Term{Text: term, Weight: w})
		norm2 += w * w
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i].Text < vec[j].Text })

	l2 := math.Sqrt(norm2)
	if l2 == 0 {
		return nil
	}
	for i := range vec {
		vec[i].Weight /= l2
	}
	return vec
}

// Similarity is the cosine similarity of a and b under this corpus.
func (v *Vectorizer) Similarity(a, b string) float64 {
	return Cosine(v.Vectorize(a), v.Vectorize(b))
}

// Cosine returns the cosine similarity of two normalised vectors, clipped to
// [0,1]. Empty vectors give 0.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Text == b[j].Text:
			dot += a[i].Weight * b[j].Weight
			i++
			j++
		case a[i].Text < b[j].Text:
			i++
		default:
			j++
		}
	}

	if dot < 0 || math.IsNaN(dot) {
		return 0
	}
	if dot > 1 {
		return 1
	}
	return dot
}
