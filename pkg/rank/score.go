// Package rank scores (paradigm, lemma) candidates of an OOV surface form by
// how many of their generated forms are attested in the corpus, and
// evaluates the ranking against a known-correct candidate.
package rank

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/bastiangx/pat/pkg/candidate"
	"github.com/charmbracelet/log"
)

// Lexicon is the attestation source used for scoring.
type Lexicon interface {
	Contains(word string) bool
}

// Scored is a candidate with its probability.
type Scored struct {
	Lemma       string           `json:"lemma"`
	Paradigm    string           `json:"paradigm"`
	Expanded    []candidate.Form `json:"expanded"`
	Probability float64          `json:"probability"`
}

// Output is the ranked result for one surface form.
// Candidates are ordered by non-increasing probability.
type Output struct {
	SurfaceForm string   `json:"surface_form"`
	Candidates  []Scored `json:"candidates"`
}

// RawScore returns attested/sqrt(forms) for a candidate.
// A candidate that generates no forms scores 0.
func RawScore(c candidate.Candidate, lex Lexicon) float64 {
	forms := c.Forms()
	if len(forms) == 0 {
		return 0
	}
	attested := 0
	for _, form := range forms {
		if lex.Contains(form) {
			attested++
		}
	}
	return float64(attested) / math.Sqrt(float64(len(forms)))
}

// Score ranks every candidate of rec. Candidates are shuffled with rng before
// the stable sort so that ties end up in an unbiased order.
func Score(rec *candidate.Record, lex Lexicon, rng *rand.Rand) Output {
	out := Output{
		SurfaceForm: rec.SurfaceWord,
		Candidates:  make([]Scored, 0, len(rec.Candidates)),
	}

	for _, c := range rec.Candidates {
		if len(c.Expansion) == 0 {
			log.Debugf("Candidate %s/%s of %q has an empty expansion", c.Lemma, c.Paradigm, rec.SurfaceWord)
		}
		out.Candidates = append(out.Candidates, Scored{
			Lemma:       c.Lemma,
			Paradigm:    c.Paradigm,
			Expanded:    c.Expansion,
			Probability: RawScore(c, lex),
		})
	}

	rng.Shuffle(len(out.Candidates), func(i, j int) {
		out.Candidates[i], out.Candidates[j] = out.Candidates[j], out.Candidates[i]
	})
	sort.SliceStable(out.Candidates, func(i, j int) bool {
		return out.Candidates[i].Probability > out.Candidates[j].Probability
	})

	normalize(out.Candidates)
	return out
}

// normalize replaces raw scores with their softmax. The candidates must
// already be sorted, so the first one holds the maximum.
func normalize(cands []Scored) {
	if len(cands) == 0 {
		return
	}
	top := cands[0].Probability
	sum := 0.0
	for i := range cands {
		cands[i].Probability = math.Exp(cands[i].Probability - top)
		sum += cands[i].Probability
	}
	for i := range cands {
		cands[i].Probability /= sum
	}
}
