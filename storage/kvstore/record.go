package kvstore

import (
	"encoding/json"
	"time"
)

// Record is one stored entity, as decoded from its JSON collection.
type Record map[string]interface{}

func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

func (r Record) ID() string { return r.String("id") }

func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		i, _ := v.Int64()
		return int(i)
	}
	return 0
}

func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Time parses an RFC 3339 timestamp. Missing or malformed values give the zero time.
func (r Record) Time(key string) time.Time {
	switch v := r[key].(type) {
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}
		}
		return t.UTC()
	case time.Time:
		return v.UTC()
	}
	return time.Time{}
}

// FormatTime is the stored form of timestamps.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// canonical returns r as it reads back once stored.
func canonical(r Record) (Record, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
