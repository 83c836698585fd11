// Package transfer moves contacts in and out of the phonebook as JSON, CSV
// or YAML. Imported rows go through the same validation and uniqueness
// rules as the edit dialog.
package transfer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"rhystmorgan/pbterm/internal/models"
	"rhystmorgan/pbterm/internal/validation"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

// ParseFormat accepts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatCSV, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// Record is the portable shape of a contact. IDs are not carried across.
type Record struct {
	Name   string `json:"name" yaml:"name"`
	Number string `json:"number" yaml:"number"`
}

type ImportError struct {
	Line    int
	Field   string
	Message string
}

func (e ImportError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Message)
}

type ImportResult struct {
	Total    int
	Imported []*models.Contact
	Skipped  []ImportError
}

var csvHeader = []string{"name", "number"}

func Export(w io.Writer, format Format, contacts []models.Contact) error {
	records := make([]Record, 0, len(contacts))
	for _, c := range contacts {
		records = append(records, Record{Name: c.Name, Number: c.Number})
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
		return nil

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to write YAML: %w", err)
		}
		return enc.Close()

	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		for _, r := range records {
			if err := cw.Write([]string{r.Name, r.Number}); err != nil {
				return fmt.Errorf("failed to write CSV: %w", err)
			}
		}
		cw.Flush()
		return cw.Error()

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Import reads records and returns the ones that may be added to existing.
// A row is skipped when it fails validation or collides with an existing
// contact or with an earlier row of the same file.
func Import(r io.Reader, format Format, existing []models.Contact) (*ImportResult, error) {
	records, lines, err := decode(r, format)
	if err != nil {
		return nil, err
	}

	pool := make([]models.Contact, len(existing), len(existing)+len(records))
	copy(pool, existing)

	result := &ImportResult{Total: len(records)}
	for i, rec := range records {
		line := lines[i]

		check := validation.ValidateDraft(validation.Draft{Name: rec.Name, Number: rec.Number})
		if first := check.First(); first != nil {
			result.Skipped = append(result.Skipped, ImportError{
				Line:    line,
				Field:   string(first.Field),
				Message: first.Message,
			})
			continue
		}

		if err := validation.CheckUniqueness(pool, "", rec.Name, rec.Number); err != nil {
			result.Skipped = append(result.Skipped, ImportError{Line: line, Message: err.Error()})
			continue
		}

		contact := models.NewContact(rec.Name, rec.Number)
		pool = append(pool, *contact)
		result.Imported = append(result.Imported, contact)
	}

	return result, nil
}

// decode returns the records together with the line (or item) number each
// came from, counted from 1.
func decode(r io.Reader, format Format) ([]Record, []int, error) {
	switch format {
	case FormatJSON:
		var records []Record
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return records, itemNumbers(len(records)), nil

	case FormatYAML:
		var records []Record
		if err := yaml.NewDecoder(r).Decode(&records); err != nil && !errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		return records, itemNumbers(len(records)), nil

	case FormatCSV:
		return decodeCSV(r)

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func decodeCSV(r io.Reader) ([]Record, []int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("empty CSV file")
	}

	columns := make(map[string]int)
	for idx, col := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(col))] = idx
	}
	nameIdx, hasName := columns["name"]
	numberIdx, hasNumber := columns["number"]
	if !hasName || !hasNumber {
		return nil, nil, fmt.Errorf("CSV header must contain name and number columns")
	}

	records := make([]Record, 0, len(rows)-1)
	lines := make([]int, 0, len(rows)-1)
	for i, row := range rows[1:] {
		var rec Record
		if nameIdx < len(row) {
			rec.Name = strings.TrimSpace(row[nameIdx])
		}
		if numberIdx < len(row) {
			rec.Number = strings.TrimSpace(row[numberIdx])
		}
		records = append(records, rec)
		// header is line 1
		lines = append(lines, i+2)
	}
	return records, lines, nil
}

func itemNumbers(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
