package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FromRow builds a Record from a SQL mirror row: id, the order column value and
// the JSON document body. The order column is stored under orderBy, replacing any
// copy inside the body.
func FromRow(id, orderBy string, orderVal interface{}, data []byte) (Record, error) {
	fields := map[string]interface{}{}
	if len(bytes.TrimSpace(data)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			return Record{}, fmt.Errorf("decode document %s: %w", id, err)
		}
		if fields == nil {
			fields = map[string]interface{}{}
		}
	}
	fields[orderBy] = orderVal
	return Record{ID: id, Fields: fields}, nil
}
