package codec

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/daybook/internal/model"
)

type yamlRow struct {
	ID          string `yaml:"id,omitempty"`
	Text        string `yaml:"text"`
	TargetDate  string `yaml:"targetDate"`
	Priority    string `yaml:"priority"`
	StartDate   string `yaml:"startDate,omitempty"`
	EndDate     string `yaml:"endDate,omitempty"`
	Repeat      string `yaml:"repeat"`
	Status      string `yaml:"status"`
	CompletedAt string `yaml:"completedAt,omitempty"`
	CreatedAt   string `yaml:"createdAt,omitempty"`
	IsPinned    string `yaml:"isPinned"`
	IsAllDay    string `yaml:"isAllDay"`
	IsAllYear   string `yaml:"isAllYear"`
	IsMonth     string `yaml:"isMonth"`
}

func encodeYAML(w io.Writer, todos []model.Todo, opts ExportOptions) error {
	out := make([]yamlRow, 0, len(todos))
	for _, t := range todos {
		r := fromTodo(t, opts.Language, opts.Location)
		out = append(out, yamlRow{
			ID:          r[colID],
			Text:        r[colText],
			TargetDate:  r[colTarget],
			Priority:    r[colPriority],
			StartDate:   r[colStart],
			EndDate:     r[colEnd],
			Repeat:      r[colRepeat],
			Status:      r[colStatus],
			CompletedAt: r[colCompletedAt],
			CreatedAt:   r[colCreatedAt],
			IsPinned:    r[colPinned],
			IsAllDay:    r[colAllDay],
			IsAllYear:   r[colAllYear],
			IsMonth:     r[colMonth],
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// decodeYAML walks the node tree so scalars keep their literal text whatever
// type YAML would resolve them to.
func decodeYAML(r io.Reader) ([]row, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	seq := doc.Content[0]
	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: expected a list of todos", ErrInvalidRow)
	}

	rows := make([]row, 0, len(seq.Content))
	for i, item := range seq.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w %d: expected a mapping", ErrInvalidRow, i+1)
		}
		rw := make(row)
		for j := 0; j+1 < len(item.Content); j += 2 {
			key, val := item.Content[j], item.Content[j+1]
			c, ok := lookupColumn(key.Value)
			if !ok || val.Kind != yaml.ScalarNode || val.Tag == "!!null" {
				continue
			}
			rw[c] = val.Value
		}
		rows = append(rows, rw)
	}
	return rows, nil
}
