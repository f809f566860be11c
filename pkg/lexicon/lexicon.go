// Package lexicon holds the corpus frequency lexicon used to decide which
// generated surface forms are attested.
package lexicon

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// ErrMalformedLine is returned when a corpus line is not "<count> <word>".
var ErrMalformedLine = errors.New("malformed corpus line")

// maxLineSize bounds a single corpus line.
const maxLineSize = 1 << 20

// Lexicon maps surface words to their corpus counts.
// It is never mutated after loading, so concurrent reads are safe.
type Lexicon struct {
	trie  *patricia.Trie
	size  int
	total int64
}

func newLexicon() *Lexicon {
	return &Lexicon{trie: patricia.NewTrie()}
}

// set stores a word, replacing an earlier count for the same word.
func (l *Lexicon) set(word string, count int) {
	key := patricia.Prefix(word)
	if old := l.trie.Get(key); old != nil {
		l.total -= int64(old.(int))
	} else {
		l.size++
	}
	l.trie.Set(key, count)
	l.total += int64(count)
}

// Load reads a "<count> <word>" frequency file. Any malformed line fails
// the whole load.
func Load(path string) (*Lexicon, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus %s: %w", path, err)
	}
	defer file.Close()

	lex, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	log.Debugf("Lexicon loaded from %s: %d words, %d tokens", path, lex.Len(), lex.Total())
	return lex, nil
}

// Parse builds a lexicon from r. Later lines override earlier ones for the
// same word.
func Parse(r io.Reader) (*Lexicon, error) {
	lex := newLexicon()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		word, count, err := parseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		lex.set(word, count)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	return lex, nil
}

func parseLine(line string) (string, int, error) {
	if !utf8.ValidString(line) {
		return "", 0, fmt.Errorf("%w: invalid UTF-8", ErrMalformedLine)
	}
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return "", 0, fmt.Errorf("%w: expected 2 fields, got %d", ErrMalformedLine, len(fields))
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil {
		return "", 0, fmt.Errorf("%w: invalid count %q", ErrMalformedLine, fields[0])
	}
	if count < 0 {
		return "", 0, fmt.Errorf("%w: negative count %d", ErrMalformedLine, count)
	}
	return fields[1], count, nil
}

// Contains reports whether word is attested in the corpus.
func (l *Lexicon) Contains(word string) bool {
	return l.trie.Get(patricia.Prefix(word)) != nil
}

// Count returns the corpus count of word.
func (l *Lexicon) Count(word string) (int, bool) {
	item := l.trie.Get(patricia.Prefix(word))
	if item == nil {
		return 0, false
	}
	return item.(int), true
}

// Len returns the number of distinct words.
func (l *Lexicon) Len() int {
	return l.size
}

// Total returns the sum of all counts.
func (l *Lexicon) Total() int64 {
	return l.total
}

// Visit calls fn for every entry. Returning an error from fn stops the walk.
func (l *Lexicon) Visit(fn func(word string, count int) error) error {
	return l.trie.Visit(func(p patricia.Prefix, item patricia.Item) error {
		return fn(string(p), item.(int))
	})
}
