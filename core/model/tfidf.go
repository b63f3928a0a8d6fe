package model

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// tfidfVocabSize caps the embedding dimensionality at the most frequent
// vocabulary terms.
const tfidfVocabSize = 512

// tfidfParams embeds code text into a fixed dense vector space. Terms and
// IDF are index-aligned; the term lookup map is rebuilt lazily after a
// JSON decode.
type tfidfParams struct {
	Terms []string  `json:"terms"`
	IDF   []float64 `json:"idf"`

	once  sync.Once
	index map[string]int
}

// fitTFIDF builds the vocabulary from document frequencies: the top terms
// by df, ties broken lexically, then re-sorted lexically so the embedding
// dimensions are stable and readable. IDF uses the smoothed form so unseen
// terms never divide by zero.
func fitTFIDF(docs []string) *tfidfParams {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range tokenizeCode(doc) {
			seen[tok] = struct{}{}
		}
		for tok := range seen {
			df[tok]++
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > tfidfVocabSize {
		terms = terms[:tfidfVocabSize]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return &tfidfParams{Terms: terms, IDF: idf}
}

// embed maps content into the fitted space as an L2-normalized tf-idf
// vector. Content sharing no vocabulary with the corpus embeds to nil.
func (t *tfidfParams) embed(content string) []float64 {
	idx := t.lookup()
	vec := make([]float64, len(t.Terms))
	hit := false
	for _, tok := range tokenizeCode(content) {
		if i, ok := idx[tok]; ok {
			vec[i]++
			hit = true
		}
	}
	if !hit {
		return nil
	}
	norm := 0.0
	for i := range vec {
		vec[i] *= t.IDF[i]
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

func (t *tfidfParams) lookup() map[string]int {
	t.once.Do(func() {
		t.index = make(map[string]int, len(t.Terms))
		for i, term := range t.Terms {
			t.index[term] = i
		}
	})
	return t.index
}

// tokenizeCode splits source into lowercase word tokens plus in-order
// bigrams joined by a space. Single-character tokens carry no signal and
// are dropped.
func tokenizeCode(content string) []string {
	words := make([]string, 0, 64)
	var b strings.Builder
	flush := func() {
		if b.Len() >= 2 {
			words = append(words, strings.ToLower(b.String()))
		}
		b.Reset()
	}
	for _, r := range content {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	out := make([]string, 0, 2*len(words))
	out = append(out, words...)
	for i := 0; i+1 < len(words); i++ {
		out = append(out, words[i]+" "+words[i+1])
	}
	return out
}

// cosineDistance assumes unit-normalized inputs of equal length.
func cosineDistance(a, b []float64) float64 {
	dot := 0.0
	for i := range a {
		dot += a[i] * b[i]
	}
	return max(0, 1-dot)
}
