// Package anmor turns morphological analyser output, where analysed words
// look like ^surface/analysis1/analysis2$, into plain whitespace-separated
// tokens.
package anmor

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	escapeMark  = '\\'
	openMark    = '^'
	closeMark   = '$'
	analysisSep = "/"
)

// Units splits a line into analysed units (^...$) and the raw text between
// them. Escaped characters are kept together with their backslash.
func Units(line string) []string {
	var units []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			units = append(units, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(line); i++ {
		switch line[i] {
		case escapeMark:
			cur.WriteByte(line[i])
			if i+1 < len(line) {
				i++
				cur.WriteByte(line[i])
			}
		case openMark:
			flush()
			cur.WriteByte(line[i])
		case closeMark:
			cur.WriteByte(line[i])
			flush()
		default:
			cur.WriteByte(line[i])
		}
	}
	flush()
	return units
}

// surface returns the surface form of an analysed unit, or the unit itself
// if it is raw text.
func surface(unit string) string {
	if len(unit) < 2 || unit[0] != openMark || unit[len(unit)-1] != closeMark {
		return unit
	}
	inner := unit[1 : len(unit)-1]
	if i := strings.Index(inner, analysisSep); i >= 0 {
		return inner[:i]
	}
	return inner
}

// Tokenize converts one line of analyser output to space-separated tokens.
// Whitespace runs collapse to a single space and leading or trailing
// brackets and spaces are dropped.
func Tokenize(line string) string {
	units := Units(line)
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = surface(u)
	}
	joined := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	return strings.Trim(joined, "[] ")
}

// Stream tokenizes r line by line into w.
func Stream(r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)

	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			if _, werr := writer.WriteString(Tokenize(line) + "\n"); werr != nil {
				return fmt.Errorf("failed to write tokens: %w", werr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	}
	return writer.Flush()
}
