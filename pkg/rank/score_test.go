package rank

import (
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/bastiangx/pat/pkg/candidate"
	"github.com/bastiangx/pat/pkg/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLexicon map[string]int

func (m mapLexicon) Contains(word string) bool {
	_, ok := m[word]
	return ok
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func expansion(forms ...string) []candidate.Form {
	out := make([]candidate.Form, len(forms))
	for i, f := range forms {
		out[i] = candidate.Form{SurfaceForm: f}
	}
	return out
}

func TestRawScore(t *testing.T) {
	lex := mapLexicon{"cat": 3, "cats": 7}

	testCases := []struct {
		name     string
		forms    []string
		expected float64
	}{
		{"all attested", []string{"cat", "cats"}, 2 / math.Sqrt(2)},
		{"duplicates collapse", []string{"cat", "cat", "cats", "cats"}, 2 / math.Sqrt(2)},
		{"partly attested", []string{"cat", "cats", "cates", "catt"}, 1.0},
		{"nothing attested", []string{"dog", "dogs"}, 0},
		{"empty expansion", nil, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := candidate.Candidate{Lemma: "cat", Paradigm: "N1", Expansion: expansion(tc.forms...)}
			assert.InDelta(t, tc.expected, RawScore(c, lex), 1e-12)
		})
	}
}

func TestScoreSingleCandidate(t *testing.T) {
	lex, err := lexicon.Parse(strings.NewReader("3 cat\n7 cats\n"))
	require.NoError(t, err)

	rec := &candidate.Record{
		SurfaceWord: "cats",
		Candidates: []candidate.Candidate{
			{Lemma: "cat", Paradigm: "N1", Expansion: expansion("cat", "cats")},
		},
	}

	assert.InDelta(t, 1.414, RawScore(rec.Candidates[0], lex), 1e-3)

	out := Score(rec, lex, newRNG(1))
	assert.Equal(t, "cats", out.SurfaceForm)
	require.Len(t, out.Candidates, 1)
	assert.InDelta(t, 1.0, out.Candidates[0].Probability, 1e-12)
	assert.Equal(t, rec.Candidates[0].Expansion, out.Candidates[0].Expanded)
}

func TestScoreOrderingAndNormalization(t *testing.T) {
	lex := mapLexicon{"walk": 1, "walks": 1, "walked": 1, "walking": 1, "walke": 1}
	rec := &candidate.Record{
		SurfaceWord: "walks",
		Candidates: []candidate.Candidate{
			{Lemma: "walk", Paradigm: "empty", Expansion: nil},
			{Lemma: "wal", Paradigm: "V2", Expansion: expansion("wal", "wals", "walks")},
			{Lemma: "walk", Paradigm: "V1", Expansion: expansion("walk", "walks", "walked", "walking")},
			{Lemma: "walke", Paradigm: "N1", Expansion: expansion("walke", "walkes")},
		},
	}

	for seed := uint64(0); seed < 20; seed++ {
		out := Score(rec, lex, newRNG(seed))
		require.Len(t, out.Candidates, 4)

		sum := 0.0
		for i, c := range out.Candidates {
			sum += c.Probability
			if i > 0 {
				assert.GreaterOrEqual(t, out.Candidates[i-1].Probability, c.Probability)
			}
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
		assert.Equal(t, "V1", out.Candidates[0].Paradigm)
		assert.Equal(t, "empty", out.Candidates[3].Paradigm)
	}
}

func TestScoreMatchesPlainSoftmax(t *testing.T) {
	lex := mapLexicon{"a": 1, "ab": 1, "b": 1}
	rec := &candidate.Record{
		SurfaceWord: "ab",
		Candidates: []candidate.Candidate{
			{Lemma: "a", Paradigm: "P1", Expansion: expansion("a", "ab")},
			{Lemma: "b", Paradigm: "P2", Expansion: expansion("b", "bc", "bd")},
		},
	}

	s1 := 2 / math.Sqrt(2)
	s2 := 1 / math.Sqrt(3)
	z := math.Exp(s1) + math.Exp(s2)

	out := Score(rec, lex, newRNG(7))
	assert.InDelta(t, math.Exp(s1)/z, out.Candidates[0].Probability, 1e-12)
	assert.InDelta(t, math.Exp(s2)/z, out.Candidates[1].Probability, 1e-12)
}

func TestNormalizeLargeScoresStayFinite(t *testing.T) {
	// exp(1000) overflows float64; the normalized values must not.
	cands := []Scored{{Probability: 1000}, {Probability: 999}, {Probability: 0}}
	normalize(cands)

	sum := 0.0
	for _, c := range cands {
		assert.False(t, math.IsNaN(c.Probability))
		assert.False(t, math.IsInf(c.Probability, 0))
		sum += c.Probability
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, 1/(1+math.Exp(-1)), cands[0].Probability, 1e-12)
	assert.InDelta(t, 0.0, cands[2].Probability, 1e-12)
}

func TestScoreNoCandidates(t *testing.T) {
	out := Score(&candidate.Record{SurfaceWord: "zzz"}, mapLexicon{}, newRNG(1))
	assert.Equal(t, "zzz", out.SurfaceForm)
	assert.NotNil(t, out.Candidates)
	assert.Empty(t, out.Candidates)
}

func TestScoreTiesAreShuffled(t *testing.T) {
	rec := &candidate.Record{SurfaceWord: "x"}
	for _, p := range []string{"P1", "P2", "P3", "P4"} {
		rec.Candidates = append(rec.Candidates, candidate.Candidate{Lemma: "x", Paradigm: p, Expansion: expansion("x")})
	}

	firsts := map[string]bool{}
	for seed := uint64(0); seed < 64; seed++ {
		out := Score(rec, mapLexicon{"x": 1}, newRNG(seed))
		firsts[out.Candidates[0].Paradigm] = true
		for _, c := range out.Candidates {
			assert.InDelta(t, 0.25, c.Probability, 1e-12)
		}
	}
	assert.Greater(t, len(firsts), 1)
}

func TestScoreSameSeedIsDeterministic(t *testing.T) {
	rec := &candidate.Record{SurfaceWord: "x"}
	for _, p := range []string{"P1", "P2", "P3", "P4", "P5"} {
		rec.Candidates = append(rec.Candidates, candidate.Candidate{Lemma: "x", Paradigm: p})
	}
	a := Score(rec, mapLexicon{}, newRNG(42))
	b := Score(rec, mapLexicon{}, newRNG(42))
	assert.Equal(t, a, b)
}
