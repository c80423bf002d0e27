package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Field names the reporter treats specially.
const (
	FieldCreatedAt  = "created_at"
	FieldEmailSent  = "email_sent"
	FieldEmailError = "email_error"
)

// Record is one stored document: backend id plus every field it carries.
type Record struct {
	ID     string
	Fields map[string]interface{}
}

// Query selects the newest Limit records of Collection, descending by OrderBy.
type Query struct {
	Collection string
	OrderBy    string
	Limit      int
}

func (r Record) get(k string) interface{} {
	if v, ok := r.Fields[k]; ok {
		return v
	}
	return nil
}

// CreatedAt returns the created_at value or nil.
func (r Record) CreatedAt() interface{} { return r.get(FieldCreatedAt) }

// EmailSent returns the email_sent value or nil.
func (r Record) EmailSent() interface{} { return r.get(FieldEmailSent) }

// EmailError returns the email_error value or nil.
func (r Record) EmailError() interface{} { return r.get(FieldEmailError) }

// Preview returns a copy of Fields without created_at and email_error.
// email_sent is kept.
func (r Record) Preview() map[string]interface{} {
	out := make(map[string]interface{}, len(r.Fields))
	for k, v := range r.Fields {
		if k == FieldCreatedAt || k == FieldEmailError {
			continue
		}
		out[k] = v
	}
	return out
}

// FormatValue renders a field value for the console report.
// Maps are rendered with sorted keys so repeated runs print identical text.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if x == nil {
			return "<nil>"
		}
		return x.UTC().Format(time.RFC3339Nano)
	case []byte:
		return fmt.Sprintf("%x", x)
	case map[string]interface{}:
		return FormatMap(x)
	case []interface{}:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = quoted(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(x)
	}
}

// FormatMap renders m as {k: v, ...} with keys sorted.
func FormatMap(m map[string]interface{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(quoted(m[k]))
	}
	b.WriteByte('}')
	return b.String()
}

// quoted formats nested values; strings are quoted so "" and missing stay distinguishable.
func quoted(v interface{}) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return FormatValue(v)
}
