package lexicon

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// cacheVersion is bumped whenever the binary layout changes.
const cacheVersion = 2

// Source identifies the corpus file a cache was built from.
type Source struct {
	Path    string `msgpack:"p"`
	Size    int64  `msgpack:"s"`
	ModTime int64  `msgpack:"m"`
}

// sourceOf describes the corpus at path as it currently is on disk.
func sourceOf(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Source{}, fmt.Errorf("failed to stat corpus %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Source{}, fmt.Errorf("failed to resolve corpus %s: %w", path, err)
	}
	return Source{Path: abs, Size: info.Size(), ModTime: info.ModTime().UnixNano()}, nil
}

// cacheHeader precedes the entries of a binary lexicon file.
type cacheHeader struct {
	Version int    `msgpack:"v"`
	Entries int    `msgpack:"n"`
	Total   int64  `msgpack:"t"`
	Source  Source `msgpack:"src"`
}

// SaveBinary writes the lexicon as msgpack: a header followed by
// (word, count) pairs.
func (l *Lexicon) SaveBinary(path string) error {
	return l.saveBinary(path, Source{})
}

func (l *Lexicon) saveBinary(path string, src Source) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create lexicon cache %s: %w", path, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	enc := msgpack.NewEncoder(writer)

	header := cacheHeader{Version: cacheVersion, Entries: l.size, Total: l.total, Source: src}
	if err := enc.Encode(&header); err != nil {
		return fmt.Errorf("failed to write cache header: %w", err)
	}

	err = l.Visit(func(word string, count int) error {
		if err := enc.EncodeString(word); err != nil {
			return err
		}
		return enc.EncodeInt(int64(count))
	})
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush lexicon cache: %w", err)
	}
	return file.Close()
}

// LoadBinary reads a lexicon written by SaveBinary.
func LoadBinary(path string) (*Lexicon, error) {
	lex, _, err := loadBinary(path)
	return lex, err
}

func loadBinary(path string) (*Lexicon, Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, Source{}, fmt.Errorf("failed to open lexicon cache %s: %w", path, err)
	}
	defer file.Close()

	dec := msgpack.NewDecoder(bufio.NewReader(file))

	var header cacheHeader
	if err := dec.Decode(&header); err != nil {
		return nil, Source{}, fmt.Errorf("failed to read cache header: %w", err)
	}
	if header.Version != cacheVersion {
		return nil, Source{}, fmt.Errorf("unsupported lexicon cache version %d", header.Version)
	}
	if header.Entries < 0 {
		return nil, Source{}, fmt.Errorf("invalid entry count in %s: %d", path, header.Entries)
	}

	lex := newLexicon()
	for i := 0; i < header.Entries; i++ {
		word, err := dec.DecodeString()
		if err != nil {
			return nil, Source{}, fmt.Errorf("failed to read word %d: %w", i, err)
		}
		count, err := dec.DecodeInt()
		if err != nil {
			return nil, Source{}, fmt.Errorf("failed to read count for %q: %w", word, err)
		}
		lex.set(word, count)
	}

	if lex.total != header.Total {
		return nil, Source{}, fmt.Errorf("lexicon cache %s is corrupt: total %d, header says %d", path, lex.total, header.Total)
	}
	return lex, header.Source, nil
}

// LoadCached returns the lexicon for corpusPath, going through the binary
// cache at cachePath. The cache is only used when it was built from the same
// corpus file with the same size and modification time; otherwise the corpus
// is parsed and the cache rebuilt. Failing to write the cache only logs a
// warning.
func LoadCached(corpusPath, cachePath string) (*Lexicon, error) {
	if cachePath == "" {
		return Load(corpusPath)
	}

	src, err := sourceOf(corpusPath)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(cachePath); err == nil {
		lex, cached, err := loadBinary(cachePath)
		switch {
		case err != nil:
			log.Warnf("Ignoring lexicon cache: %v", err)
		case cached != src:
			log.Debugf("Lexicon cache %s was built from %s, rebuilding", cachePath, cached.Path)
		default:
			log.Debugf("Lexicon loaded from cache %s", cachePath)
			return lex, nil
		}
	}

	lex, err := Load(corpusPath)
	if err != nil {
		return nil, err
	}
	if err := lex.saveBinary(cachePath, src); err != nil {
		log.Warnf("Failed to write lexicon cache: %v", err)
	} else {
		log.Debugf("Lexicon cache written to %s", cachePath)
	}
	return lex, nil
}
