/*
Package main implements patrank, the ranker of the Paradigm Association Tool.

For every out-of-vocabulary surface form, the candidate generator proposes a
list of (paradigm, lemma) pairs together with the forms each pair would
generate. patrank scores each pair by how many of those forms occur in a
corpus, turns the scores into a probability distribution and writes the
ranked candidates.

# Usage

	patrank [flags] <candidates> <corpus> <output>

candidates is the gzipped, line-delimited JSON produced by the generator;
corpus is a plain text file of "<count> <word>" lines; output is the gzipped
JSON file to create.

# Scoring

A candidate generating the distinct forms F, of which A are attested in the
corpus, scores |A| / sqrt(|F|). Candidates are shuffled before being sorted so
that ties do not favour input order, and the scores are normalised with a
softmax. A candidate without forms scores 0.

# Evaluation

Records that carry a correct_candidate are used to measure the ranking. The
run ends by logging the mean reciprocal rank over all processed records and
the histogram of the first position holding the correct candidate.

# Output

By default every input record produces one JSON line in the output. Passing
-mode last keeps only the final record, as the original ranker did.

# Configuration

Defaults are read from a TOML file, created on first use:

	[ranker]
	seed = 0
	progress_every = 10

	[lexicon]
	cache_path = ""

	[output]
	mode = "lines"

Flags override the file. A zero seed draws a new one on every run; the seed
is printed in debug mode so a run can be repeated.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/pat/internal/cli"
	"github.com/bastiangx/pat/internal/logger"
	"github.com/bastiangx/pat/pkg/config"
	"github.com/bastiangx/pat/pkg/output"
	"github.com/charmbracelet/log"
	urfave "github.com/urfave/cli/v3"
)

const (
	Version = "0.3.0"
	AppName = "patrank"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Error("patrank failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func newCommand() *urfave.Command {
	return &urfave.Command{
		Name:      AppName,
		Usage:     "rank (paradigm, lemma) candidates for out-of-vocabulary words",
		Version:   Version,
		ArgsUsage: "<candidates> <corpus> <output>",
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:  "config",
				Usage: "Path to a TOML config file",
			},
			&urfave.Uint64Flag{
				Name:  "seed",
				Usage: "Seed for the tie-breaking shuffle (0 draws a random seed)",
			},
			&urfave.StringFlag{
				Name:  "mode",
				Usage: "Output mode [lines, last]",
			},
			&urfave.StringFlag{
				Name:  "cache",
				Usage: "Path of the binary lexicon cache (disabled when empty)",
			},
			&urfave.IntFlag{
				Name:  "progress",
				Usage: "Log progress every N records",
			},
			&urfave.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Toggle debug mode",
			},
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			logger.SetDebug(cmd.Bool("debug"))
			return ctx, nil
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *urfave.Command) error {
	if cmd.Args().Len() != 3 {
		return urfave.Exit(fmt.Sprintf("expected 3 arguments, got %d\nusage: %s %s", cmd.Args().Len(), AppName, cmd.ArgsUsage), 2)
	}

	cfg, cfgPath, err := config.LoadConfigWithPriority(cmd.String("config"))
	if err != nil {
		return err
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(cfgPath))

	opts, err := buildOptions(cmd, cfg)
	if err != nil {
		return err
	}

	_, err = cli.Rank(ctx, opts, logger.New(""))
	return err
}

// buildOptions merges config values with the flags that were set explicitly.
func buildOptions(cmd *urfave.Command, cfg *config.Config) (cli.RankOptions, error) {
	modeName := cfg.Output.Mode
	if cmd.IsSet("mode") {
		modeName = cmd.String("mode")
	}
	mode, err := output.ParseMode(modeName)
	if err != nil {
		return cli.RankOptions{}, err
	}

	opts := cli.RankOptions{
		CandidatesPath: cmd.Args().Get(0),
		CorpusPath:     cmd.Args().Get(1),
		OutputPath:     cmd.Args().Get(2),
		CachePath:      cfg.Lexicon.CachePath,
		Mode:           mode,
		Seed:           uint64(cfg.Ranker.Seed),
		ProgressEvery:  cfg.Ranker.ProgressEvery,
	}
	if cmd.IsSet("seed") {
		opts.Seed = cmd.Uint64("seed")
	}
	if cmd.IsSet("cache") {
		opts.CachePath = cmd.String("cache")
	}
	if cmd.IsSet("progress") {
		opts.ProgressEvery = cmd.Int("progress")
	}
	return opts, nil
}
