package rank

import (
	"sort"

	"github.com/bastiangx/pat/pkg/candidate"
)

// RankCount is one histogram bucket.
type RankCount struct {
	Rank  int
	Count int
}

// Evaluate returns the 1-based position of the first candidate in out that
// matches correct.
func Evaluate(out Output, correct candidate.Reference) (int, bool) {
	for i, c := range out.Candidates {
		if correct.Matches(c.Lemma, c.Paradigm) {
			return i + 1, true
		}
	}
	return 0, false
}

// MeanReciprocalRank computes sum(histogram[r]/r) / total, where total is
// the number of processed records, matched or not.
func MeanReciprocalRank(histogram map[int]int, total int) float64 {
	if total <= 0 {
		return 0
	}
	sum := 0.0
	for rank, count := range histogram {
		sum += float64(count) / float64(rank)
	}
	return sum / float64(total)
}

// Evaluator accumulates ranking statistics over a run.
// It is not safe for concurrent use.
type Evaluator struct {
	histogram map[int]int
	processed int
	evaluated int
	found     int
}

// NewEvaluator returns an empty evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{histogram: make(map[int]int)}
}

// Observe records one processed record. Every call counts towards the MRR
// denominator; only a matched correct candidate adds a histogram entry.
func (e *Evaluator) Observe(out Output, correct *candidate.Reference) (int, bool) {
	e.processed++
	if correct == nil {
		return 0, false
	}
	e.evaluated++

	rank, ok := Evaluate(out, *correct)
	if !ok {
		return 0, false
	}
	e.found++
	e.histogram[rank]++
	return rank, true
}

// Processed returns the number of observed records.
func (e *Evaluator) Processed() int { return e.processed }

// Evaluated returns the number of records that carried a correct candidate.
func (e *Evaluator) Evaluated() int { return e.evaluated }

// Found returns the number of records whose correct candidate was ranked.
func (e *Evaluator) Found() int { return e.found }

// HasEvaluation reports whether any record carried a correct candidate.
func (e *Evaluator) HasEvaluation() bool { return e.evaluated > 0 }

// Histogram returns a copy of the rank histogram.
func (e *Evaluator) Histogram() map[int]int {
	out := make(map[int]int, len(e.histogram))
	for k, v := range e.histogram {
		out[k] = v
	}
	return out
}

// Ranks returns the histogram as (rank, count) pairs sorted by rank.
func (e *Evaluator) Ranks() []RankCount {
	ranks := make([]RankCount, 0, len(e.histogram))
	for rank, count := range e.histogram {
		ranks = append(ranks, RankCount{Rank: rank, Count: count})
	}
	sort.Slice(ranks, func(i, j int) bool {
		return ranks[i].Rank < ranks[j].Rank
	})
	return ranks
}

// MRR returns the mean reciprocal rank over all processed records.
func (e *Evaluator) MRR() float64 {
	return MeanReciprocalRank(e.histogram, e.processed)
}

// TopN returns the share of processed records whose correct candidate was
// ranked within the first n positions.
func (e *Evaluator) TopN(n int) float64 {
	if e.processed == 0 {
		return 0
	}
	hits := 0
	for rank, count := range e.histogram {
		if rank <= n {
			hits += count
		}
	}
	return float64(hits) / float64(e.processed)
}
