// Package parsers decodes raw bordereaux file bytes into headers and rows
// of named cells for the pipeline.
package parsers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// DecodeError indicates unsupported or corrupt input. A decode failure is
// fatal for the affected file.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode failed: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decoded is the parsed form of a tabular file: ordered headers plus one
// header->cell map per data row, in source order.
type Decoded struct {
	Headers []string
	Rows    []map[string]string
}

// DecodeCSV parses CSV bytes into headers and rows. The first record is the
// header row; records with a different field count than the header fail the
// whole file (corrupt input rather than a data-quality issue).
func DecodeCSV(data []byte) (*Decoded, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &DecodeError{Reason: "empty file"}
	}

	// Strip a UTF-8 BOM; Excel exports routinely carry one.
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, &DecodeError{Reason: "unreadable header row", Err: err}
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DecodeError{Reason: "malformed record", Err: err}
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			row[h] = record[i]
		}
		rows = append(rows, row)
	}

	return &Decoded{Headers: headers, Rows: rows}, nil
}
