// Package signal turns collected record bodies into a numeric feature
// matrix (TF-IDF over unigrams and bigrams) and aggregate per-feature
// statistics.
package signal

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Vectorizer computes TF-IDF weights over a corpus. The vocabulary is
// capped at MaxFeatures terms, keeping the most frequent; both single
// words and adjacent word pairs are terms.
type Vectorizer struct {
	maxFeatures int
	vocab       map[string]int
	idf         []float64
	terms       []string
}

// NewVectorizer creates a vectorizer with the given vocabulary cap.
func NewVectorizer(maxFeatures int) *Vectorizer {
	return &Vectorizer{maxFeatures: maxFeatures}
}

// Terms returns the fitted vocabulary in column order.
func (v *Vectorizer) Terms() []string {
	return v.terms
}

// Fit builds the vocabulary and inverse document frequencies from the
// corpus.
func (v *Vectorizer) Fit(docs []string) {
	totalFreq := make(map[string]int)
	docFreq := make(map[string]int)

	for _, doc := range docs {
		counts := termCounts(doc)
		for term, n := range counts {
			totalFreq[term] += n
			docFreq[term]++
		}
	}

	// Keep the most frequent terms, alphabetical on ties
	terms := make([]string, 0, len(totalFreq))
	for term := range totalFreq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if totalFreq[terms[i]] != totalFreq[terms[j]] {
			return totalFreq[terms[i]] > totalFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.maxFeatures > 0 && len(terms) > v.maxFeatures {
		terms = terms[:v.maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.terms = terms
	v.vocab = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.vocab[term] = i
		// Smoothed idf keeps unseen terms finite
		v.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
}

// Transform maps each document to its L2-normalized TF-IDF row. Documents
// with no in-vocabulary terms map to a zero row.
func (v *Vectorizer) Transform(docs []string) [][]float64 {
	matrix := make([][]float64, len(docs))
	for i, doc := range docs {
		row := make([]float64, len(v.terms))
		for term, count := range termCounts(doc) {
			if j, ok := v.vocab[term]; ok {
				row[j] = float64(count) * v.idf[j]
			}
		}
		normalize(row)
		matrix[i] = row
	}
	return matrix
}

// FitTransform fits the vocabulary and transforms the same corpus.
func (v *Vectorizer) FitTransform(docs []string) [][]float64 {
	v.Fit(docs)
	return v.Transform(docs)
}

func normalize(row []float64) {
	var sum float64
	for _, x := range row {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range row {
		row[i] /= norm
	}
}

// termCounts returns unigram and bigram counts for one document.
func termCounts(doc string) map[string]int {
	tokens := tokenize(doc)
	counts := make(map[string]int, len(tokens)*2)
	for i, tok := range tokens {
		counts[tok]++
		if i+1 < len(tokens) {
			counts[tok+" "+tokens[i+1]]++
		}
	}
	return counts
}

// tokenize lowercases and splits on non-alphanumeric runs, dropping
// single-character tokens and stopwords.
func tokenize(doc string) []string {
	fields := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) < 2 || stopwords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

var stopwords = map[string]bool{
	"a": true, "about": true, "above": true, "after": true, "again": true,
	"all": true, "am": true, "an": true, "and": true, "any": true,
	"are": true, "as": true, "at": true, "be": true, "because": true,
	"been": true, "before": true, "being": true, "below": true, "between": true,
	"both": true, "but": true, "by": true, "can": true, "did": true,
	"do": true, "does": true, "doing": true, "down": true, "during": true,
	"each": true, "few": true, "for": true, "from": true, "further": true,
	"had": true, "has": true, "have": true, "having": true, "he": true,
	"her": true, "here": true, "hers": true, "him": true, "his": true,
	"how": true, "i": true, "if": true, "in": true, "into": true,
	"is": true, "it": true, "its": true, "just": true, "me": true,
	"more": true, "most": true, "my": true, "no": true, "nor": true,
	"not": true, "now": true, "of": true, "off": true, "on": true,
	"once": true, "only": true, "or": true, "other": true, "our": true,
	"out": true, "over": true, "own": true, "same": true, "she": true,
	"so": true, "some": true, "such": true, "than": true, "that": true,
	"the": true, "their": true, "them": true, "then": true, "there": true,
	"these": true, "they": true, "this": true, "those": true, "through": true,
	"to": true, "too": true, "under": true, "until": true, "up": true,
	"very": true, "was": true, "we": true, "were": true, "what": true,
	"when": true, "where": true, "which": true, "while": true, "who": true,
	"whom": true, "why": true, "will": true, "with": true, "you": true,
	"your": true, "yours": true,
}
