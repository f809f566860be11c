// Package logger builds charmbracelet/log loggers for the PAT commands.
// Everything goes to stderr so that stdout stays free for tool output.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// New creates a stderr charm log that follows the global log level.
func New(prefix string) *log.Logger {
	return NewWithWriter(os.Stderr, prefix)
}

// NewWithWriter creates a charm log writing to w with the report styles applied.
func NewWithWriter(w io.Writer, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: log.GetLevel() == log.DebugLevel,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
	logger.SetStyles(ReportStyles())
	return logger
}

// ReportStyles highlights the evaluation values in run reports.
func ReportStyles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Values["mrr"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	styles.Values["ranks"] = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["processed"] = lipgloss.NewStyle().Italic(true)
	return styles
}

// SetDebug switches the global level between debug and info.
func SetDebug(debug bool) {
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		return
	}
	log.SetLevel(log.InfoLevel)
	log.SetReportTimestamp(false)
}
