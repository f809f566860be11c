// Package cli wires the lexicon, candidate stream, scorer and writer into the
// patrank run.
package cli

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/bastiangx/pat/pkg/candidate"
	"github.com/bastiangx/pat/pkg/lexicon"
	"github.com/bastiangx/pat/pkg/output"
	"github.com/bastiangx/pat/pkg/rank"
	"github.com/charmbracelet/log"
)

// RankOptions controls a ranking run.
type RankOptions struct {
	CandidatesPath string
	CorpusPath     string
	OutputPath     string
	// CachePath enables the binary lexicon cache when set.
	CachePath     string
	Mode          output.Mode
	Seed          uint64
	ProgressEvery int
}

// Report summarizes a finished run.
type Report struct {
	Processed int
	Evaluated int
	Found     int
	Written   int
	Seed      uint64
	MRR       float64
	Ranks     []rank.RankCount
}

// HasEvaluation reports whether any record carried a correct candidate.
func (r *Report) HasEvaluation() bool {
	return r.Evaluated > 0
}

// Rank loads the corpus lexicon, scores every candidate record and writes the
// ranked output. When the input carries reference candidates the MRR and
// the rank histogram are logged.
func Rank(ctx context.Context, opts RankOptions, logger *log.Logger) (*Report, error) {
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 10
	}
	if opts.Mode == "" {
		opts.Mode = output.ModeLines
	}
	if opts.Seed == 0 {
		opts.Seed = rand.Uint64()
	}
	logger.Debug("Ranking", "candidates", opts.CandidatesPath, "corpus", opts.CorpusPath,
		"output", opts.OutputPath, "mode", opts.Mode, "seed", opts.Seed)

	start := time.Now()
	lex, err := lexicon.LoadCached(opts.CorpusPath, opts.CachePath)
	if err != nil {
		return nil, err
	}
	logger.Info("Corpus loaded", "words", lex.Len(), "took", time.Since(start).Round(time.Millisecond))

	reader, err := candidate.Open(opts.CandidatesPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	writer, err := output.Create(opts.OutputPath, opts.Mode)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	eval := rank.NewEvaluator()

	for rec, err := range reader.All() {
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			return nil, errors.Join(err, writer.Abort())
		}

		out := rank.Score(rec, lex, rng)
		if pos, ok := eval.Observe(out, rec.CorrectCandidate); ok {
			logger.Debug("Correct candidate ranked", "line", reader.Line(), "surface", rec.SurfaceWord, "rank", pos)
		} else if rec.CorrectCandidate != nil {
			logger.Debug("Correct candidate not among candidates", "line", reader.Line(), "surface", rec.SurfaceWord)
		}

		if err := writer.Write(out); err != nil {
			return nil, errors.Join(err, writer.Abort())
		}

		if eval.Processed()%opts.ProgressEvery == 0 {
			logger.Info("Processed", "processed", eval.Processed())
		}
	}

	logger.Info("Starting writing output", "path", opts.OutputPath)
	if err := writer.Close(); err != nil {
		return nil, err
	}
	logger.Info("Finished writing output", "records", writer.Written())

	report := &Report{
		Processed: eval.Processed(),
		Evaluated: eval.Evaluated(),
		Found:     eval.Found(),
		Written:   writer.Written(),
		Seed:      opts.Seed,
		MRR:       eval.MRR(),
		Ranks:     eval.Ranks(),
	}

	if report.HasEvaluation() {
		logger.Info("Mean reciprocal rank (MRR) on the given dataset", "mrr", fmt.Sprintf("%.6f", report.MRR))
		logger.Info("Distribution of the first position with a correct candidate", "ranks", FormatRanks(report.Ranks))
		logger.Debug("Evaluation coverage", "evaluated", report.Evaluated, "found", report.Found,
			"top1", eval.TopN(1), "top5", eval.TopN(5))
	}
	return report, nil
}

// FormatRanks renders the histogram as sorted (rank, count) pairs.
func FormatRanks(ranks []rank.RankCount) string {
	parts := make([]string, len(ranks))
	for i, rc := range ranks {
		parts[i] = fmt.Sprintf("(%d, %d)", rc.Rank, rc.Count)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
