package source

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
)

// LocalSource reads a delimited text file from disk
type LocalSource struct {
	Path string
}

// NewLocalSource creates a local file source
func NewLocalSource(path string) *LocalSource {
	return &LocalSource{Path: path}
}

// Acquire reads and parses the file. The delimiter is sniffed from the
// header line: ODRE CSV exports are semicolon separated, our own
// exports use commas.
func (s *LocalSource) Acquire(ctx context.Context) (*RawTable, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, &AcquisitionError{Mode: ModeLocal, Location: s.Path, Err: fmt.Errorf("opening file: %w", err)}
	}
	defer f.Close()

	br := bufio.NewReader(f)
	delim, err := sniffDelimiter(br)
	if err != nil {
		return nil, &AcquisitionError{Mode: ModeLocal, Location: s.Path, Err: err}
	}

	r := csv.NewReader(br)
	r.Comma = delim
	r.FieldsPerRecord = 0 // all rows must match the header width

	records, err := r.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, &AcquisitionError{
				Mode:     ModeLocal,
				Location: s.Path,
				Line:     parseErr.Line,
				Err:      fmt.Errorf("parsing delimited file: %w", err),
			}
		}
		return nil, &AcquisitionError{Mode: ModeLocal, Location: s.Path, Err: fmt.Errorf("parsing delimited file: %w", err)}
	}

	if len(records) == 0 {
		return nil, &AcquisitionError{Mode: ModeLocal, Location: s.Path, Err: fmt.Errorf("file has no header row")}
	}

	return &RawTable{Columns: records[0], Rows: records[1:]}, nil
}

// sniffDelimiter peeks at the header line and picks ';' when it
// appears without any ','. Everything else parses as comma separated.
func sniffDelimiter(br *bufio.Reader) (rune, error) {
	const peekSize = 4096
	head, err := br.Peek(peekSize)
	if err != nil && len(head) == 0 {
		return 0, fmt.Errorf("reading header: %w", err)
	}

	line := string(head)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}

	if strings.Contains(line, ";") && !strings.Contains(line, ",") {
		return ';', nil
	}
	return ',', nil
}
