// Package codec reads and writes todo lists as CSV or YAML tables. Import is
// lenient: headers may be English or Chinese, and missing fields are inferred
// from the rest of the row.
package codec

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

var (
	ErrUnknownFormat = errors.New("codec: unknown format")
	ErrInvalidRow    = errors.New("codec: invalid row")
)

// Language selects header and cell vocabulary on export.
type Language string

const (
	English Language = "en"
	Chinese Language = "zh"
)

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return FormatCSV, nil
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

type ExportOptions struct {
	Language Language
	Location *time.Location
}

// ImportOptions supply the clock used for rows without dates.
type ImportOptions struct {
	Now      time.Time
	Location *time.Location
}

func Encode(w io.Writer, f Format, todos []model.Todo, opts ExportOptions) error {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	switch f {
	case FormatCSV:
		return encodeCSV(w, todos, opts)
	case FormatYAML:
		return encodeYAML(w, todos, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Decode parses rows into todos. Rows with empty text are dropped; ids are
// left empty when the file has none.
func Decode(r io.Reader, f Format, opts ImportOptions) ([]model.Todo, error) {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	var (
		rows []row
		err  error
	)
	switch f {
	case FormatCSV:
		rows, err = decodeCSV(r)
	case FormatYAML:
		rows, err = decodeYAML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, err
	}

	out := make([]model.Todo, 0, len(rows))
	for i, rw := range rows {
		t, ok, err := rw.todo(opts)
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrInvalidRow, i+1, err)
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}
