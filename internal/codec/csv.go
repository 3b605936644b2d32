package codec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/sandeepkv93/daybook/internal/model"
)

func encodeCSV(w io.Writer, todos []model.Todo, opts ExportOptions) error {
	names := headers[opts.Language]
	if names == nil {
		names = headers[English]
	}
	cw := csv.NewWriter(w)
	header := make([]string, len(exportColumns))
	for i, c := range exportColumns {
		header[i] = names[c]
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, t := range todos {
		r := fromTodo(t, opts.Language, opts.Location)
		rec := make([]string, len(exportColumns))
		for i, c := range exportColumns {
			rec[i] = r[c]
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func decodeCSV(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make([]column, len(header))
	known := make([]bool, len(header))
	hasText := false
	for i, h := range header {
		cols[i], known[i] = lookupColumn(h)
		hasText = hasText || (known[i] && cols[i] == colText)
	}
	if !hasText {
		return nil, fmt.Errorf("%w: no text column in header", ErrInvalidRow)
	}

	var rows []row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rw := make(row, len(rec))
		for i, v := range rec {
			if i < len(cols) && known[i] {
				rw[cols[i]] = v
			}
		}
		rows = append(rows, rw)
	}
}
