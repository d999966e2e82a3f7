package candidates

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoCandidates is returned when the pool file holds no records.
var ErrNoCandidates = errors.New("no candidates found in CSV file")

// Record is one candidate row keyed by the CSV header.
type Record map[string]string

// Attributes converts the record for weakly typed decoding.
func (r Record) Attributes() map[string]any {
	attrs := make(map[string]any, len(r))
	for k, v := range r {
		attrs[k] = v
	}
	return attrs
}

// Load reads the candidate pool from a CSV file with a header row.
func Load(path string) ([]Record, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("candidates file is not configured")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candidates file: %w", err)
	}
	defer file.Close()

	records, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("read candidates file %q: %w", path, err)
	}

	return records, nil
}

// Read parses CSV rows into records. Rows shorter than the header leave the
// missing columns out.
func Read(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoCandidates
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		record := make(Record, len(header))
		for i, value := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			record[header[i]] = value
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, ErrNoCandidates
	}

	return records, nil
}
