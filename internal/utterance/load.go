package utterance

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/edsrzf/mmap-go"
	"golang.org/x/text/unicode/norm"
)

// #region load
// LoadFile maps a corpus file read-only and parses it as gold utterances.
func LoadFile(path string) ([]*Utterance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat corpus: %w", err)
	}
	if info.Size() == 0 {
		return nil, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap corpus: %w", err)
	}
	defer m.Unmap()

	utts, err := Load(bytes.NewReader(m))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return utts, nil
}

// Load parses gold utterances from r, one per line. Lines are NFC-normalized
// before parsing. Blank lines are skipped with a warning; any other
// unparseable line fails the load.
func Load(r io.Reader) ([]*Utterance, error) {
	var utts []*Utterance
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := norm.NFC.String(sc.Text())
		u, err := Parse(line, true)
		if errors.Is(err, ErrEmptyLine) {
			log.Printf("corpus: empty line on input line %d", lineNum)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		utts = append(utts, u)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return utts, nil
}

// #endregion load
