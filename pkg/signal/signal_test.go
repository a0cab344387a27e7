package signal

import (
	"math"
	"testing"

	"tagsignal/pkg/feed"
)

func TestVectorizerVocabularyCap(t *testing.T) {
	docs := []string{
		"alpha alpha alpha bravo bravo charlie",
		"alpha bravo delta echo",
	}

	v := NewVectorizer(3)
	v.Fit(docs)

	if len(v.Terms()) != 3 {
		t.Fatalf("expected 3 terms, got %d: %v", len(v.Terms()), v.Terms())
	}
	// The most frequent unigrams survive the cap
	found := map[string]bool{}
	for _, term := range v.Terms() {
		found[term] = true
	}
	if !found["alpha"] || !found["bravo"] {
		t.Errorf("expected alpha and bravo in the vocabulary, got %v", v.Terms())
	}
}

func TestVectorizerBigrams(t *testing.T) {
	docs := []string{"market rally today", "market rally fades"}

	v := NewVectorizer(0)
	v.Fit(docs)

	found := false
	for _, term := range v.Terms() {
		if term == "market rally" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the bigram 'market rally', got %v", v.Terms())
	}
}

func TestVectorizerStopwords(t *testing.T) {
	v := NewVectorizer(0)
	v.Fit([]string{"the market is rising"})

	for _, term := range v.Terms() {
		if term == "the" || term == "is" {
			t.Errorf("stopword %q leaked into the vocabulary", term)
		}
	}
}

func TestTransformRowsAreUnitLength(t *testing.T) {
	docs := []string{"alpha bravo charlie", "alpha alpha delta"}

	v := NewVectorizer(0)
	matrix := v.FitTransform(docs)

	for i, row := range matrix {
		var sum float64
		for _, x := range row {
			sum += x * x
		}
		if math.Abs(math.Sqrt(sum)-1) > 1e-9 {
			t.Errorf("row %d norm = %f, want 1", i, math.Sqrt(sum))
		}
	}
}

func TestTransformEmptyDocumentIsZeroRow(t *testing.T) {
	v := NewVectorizer(0)
	v.Fit([]string{"alpha bravo"})

	rows := v.Transform([]string{""})
	for _, x := range rows[0] {
		if x != 0 {
			t.Fatal("empty document must map to a zero row")
		}
	}
}

func TestAggregate(t *testing.T) {
	matrix := [][]float64{
		{1, 3},
		{3, 5},
	}
	s := Aggregate(matrix, []string{"a", "b"})

	if s.N != 2 {
		t.Fatalf("N = %d, want 2", s.N)
	}
	wantMean := []float64{2, 4}
	wantStd := []float64{1, 1}
	wantCI := 1.96 / math.Sqrt(2)
	for j := range wantMean {
		if math.Abs(s.Mean[j]-wantMean[j]) > 1e-9 {
			t.Errorf("Mean[%d] = %f, want %f", j, s.Mean[j], wantMean[j])
		}
		if math.Abs(s.Std[j]-wantStd[j]) > 1e-9 {
			t.Errorf("Std[%d] = %f, want %f", j, s.Std[j], wantStd[j])
		}
		if math.Abs(s.CI95[j]-wantCI) > 1e-9 {
			t.Errorf("CI95[%d] = %f, want %f", j, s.CI95[j], wantCI)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil, nil)
	if s.N != 0 || len(s.Mean) != 0 {
		t.Error("empty matrix must yield an empty summary")
	}
}

func TestFromRecordsSkipsEmptyBodies(t *testing.T) {
	records := []feed.Record{
		{Text: "market rally"},
		{Text: ""},
		{Text: "rally fades"},
	}
	s := FromRecords(records, 16)
	if s.N != 2 {
		t.Errorf("N = %d, want 2 (empty body skipped)", s.N)
	}
}
