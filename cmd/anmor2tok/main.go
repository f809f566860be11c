// Package main implements anmor2tok, which reads morphological analyser
// output on stdin and writes one line of plain tokens per input line.
//
//	lt-proc es.automorf.bin < corpus.txt | anmor2tok > corpus.tok
package main

import (
	"context"
	"os"

	"github.com/bastiangx/pat/internal/logger"
	"github.com/bastiangx/pat/pkg/anmor"
	"github.com/charmbracelet/log"
	urfave "github.com/urfave/cli/v3"
)

func main() {
	cmd := &urfave.Command{
		Name:  "anmor2tok",
		Usage: "convert analysed text (^surface/analysis$) to plain tokens",
		Flags: []urfave.Flag{
			&urfave.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "Toggle debug mode"},
		},
		Action: func(ctx context.Context, cmd *urfave.Command) error {
			logger.SetDebug(cmd.Bool("debug"))
			return anmor.Stream(os.Stdin, os.Stdout)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Error("anmor2tok failed", "err", err)
		os.Exit(1)
	}
}
