// Package operators maps ICAO airline designators (e.g. "KLM") to the
// display name of the operating carrier.
//
// The directory is read once at startup from a CSV file with an "ICAO" and
// a "Naam" column and is read-only afterwards, so lookups need no locking.
package operators

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// CodeColumn is the header of the designator column
	CodeColumn = "ICAO"

	// NameColumn is the header of the carrier name column
	NameColumn = "Naam"
)

// Directory is an immutable designator -> carrier name table.
type Directory struct {
	names map[string]string
}

// Empty returns a directory without entries. Every lookup yields the code.
func Empty() *Directory {
	return &Directory{names: map[string]string{}}
}

// Load reads the directory from the CSV file at path.
//
// Load never fails: a missing or unreadable file is logged and an empty
// directory is returned, so unresolved codes fall back to the raw code.
func Load(path string, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Error("failed to open operator directory", slog.String("path", path), slog.Any("error", err))
		return Empty()
	}
	defer f.Close()

	dir, skipped, err := LoadFrom(f)
	if err != nil {
		logger.Error("failed to load operator directory", slog.String("path", path), slog.Any("error", err))
		return Empty()
	}
	if skipped > 0 {
		logger.Warn("skipped malformed operator rows", slog.String("path", path), slog.Int("rows", skipped))
	}
	logger.Info("operator directory loaded", slog.String("path", path), slog.Int("operators", dir.Len()))

	return dir
}

// LoadFrom parses CSV data. It returns the directory and the number of
// rows that were skipped because they were malformed. An error is returned
// only when the header is missing or lacks one of the required columns.
func LoadFrom(r io.Reader) (*Directory, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // row length is checked per row
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, errors.New("empty file")
		}
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	codeIdx, nameIdx := -1, -1
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		switch col {
		case CodeColumn:
			codeIdx = i
		case NameColumn:
			nameIdx = i
		}
	}
	if codeIdx < 0 || nameIdx < 0 {
		return nil, 0, fmt.Errorf("header must contain %q and %q columns, got %v", CodeColumn, NameColumn, header)
	}

	dir := Empty()
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A broken quote only spoils its own row; the reader resumes
			// at the next line.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return nil, 0, fmt.Errorf("read row: %w", err)
		}
		if len(record) != len(header) {
			skipped++
			continue
		}

		code := strings.ToUpper(strings.TrimSpace(record[codeIdx]))
		name := strings.TrimSpace(record[nameIdx])
		if code == "" || name == "" {
			skipped++
			continue
		}
		dir.names[code] = name
	}

	return dir, skipped, nil
}

// Lookup returns the carrier name for code, or code itself when the
// directory has no entry for it.
func (d *Directory) Lookup(code string) string {
	if d == nil {
		return code
	}
	if name, ok := d.names[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return name
	}
	return code
}

// Len returns the number of known operators.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}
