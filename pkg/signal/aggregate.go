package signal

import (
	"math"

	"tagsignal/pkg/feed"
)

// Summary holds per-feature aggregate statistics over a feature matrix.
type Summary struct {
	// Terms is the vocabulary in column order.
	Terms []string `json:"terms"`
	// Mean, Std and CI95 are per-column: the column mean, population
	// standard deviation and 95% confidence half-width (1.96 * std / sqrt(n)).
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
	CI95 []float64 `json:"ci95"`
	// N is the number of rows aggregated.
	N int `json:"n"`
}

// Aggregate reduces a feature matrix to its per-column summary. An empty
// matrix yields an empty summary.
func Aggregate(matrix [][]float64, terms []string) *Summary {
	s := &Summary{Terms: terms, N: len(matrix)}
	if len(matrix) == 0 || len(matrix[0]) == 0 {
		return s
	}

	cols := len(matrix[0])
	n := float64(len(matrix))
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)
	s.CI95 = make([]float64, cols)

	for _, row := range matrix {
		for j, x := range row {
			s.Mean[j] += x
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= n
	}

	for _, row := range matrix {
		for j, x := range row {
			d := x - s.Mean[j]
			s.Std[j] += d * d
		}
	}
	sqrtN := math.Sqrt(n)
	for j := range s.Std {
		s.Std[j] = math.Sqrt(s.Std[j] / n)
		s.CI95[j] = 1.96 * s.Std[j] / sqrtN
	}

	return s
}

// FromRecords runs the whole pipeline over record bodies: vectorize the
// non-empty texts and aggregate the rows. Records whose normalized body is
// empty contribute nothing.
func FromRecords(records []feed.Record, maxFeatures int) *Summary {
	var texts []string
	for _, r := range records {
		if r.Text != "" {
			texts = append(texts, r.Text)
		}
	}
	return FromTexts(texts, maxFeatures)
}

// FromTexts vectorizes and aggregates a corpus of document bodies.
func FromTexts(texts []string, maxFeatures int) *Summary {
	v := NewVectorizer(maxFeatures)
	matrix := v.FitTransform(texts)
	return Aggregate(matrix, v.Terms())
}
