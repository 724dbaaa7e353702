package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
)

type Metadata struct {
	RunID       string   `json:"run_id"`
	GeneratedAt string   `json:"generated_at"`
	Seed        uint64   `json:"seed"`
	Records     int      `json:"records"`
	Columns     []string `json:"columns"`
}

type document struct {
	Metadata Metadata        `json:"metadata"`
	Records  []orderedRecord `json:"records"`
}

// orderedRecord marshals a record with keys in column order.
type orderedRecord struct {
	columns []string
	record  types.Record
}

func (o orderedRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range o.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var value interface{} = o.record[name]
		if t, ok := value.(time.Time); ok {
			value = types.FormatValue(t)
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSON(ctx context.Context, path string, table *types.Table, opts Options) error {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	doc := document{
		Metadata: Metadata{
			RunID:       opts.RunID,
			GeneratedAt: now.Format(time.RFC3339),
			Seed:        opts.Seed,
			Records:     table.Len(),
			Columns:     table.Columns,
		},
		Records: make([]orderedRecord, len(table.Rows)),
	}
	for i, row := range table.Rows {
		doc.Records[i] = orderedRecord{columns: table.Columns, record: row}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return createFile(path, func(f *os.File) error {
		encoder := json.NewEncoder(f)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doc)
	})
}
