package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies a cached read: resource family, sub-kind, then the identifying parameters in call
// order, e.g. Key{"transactions", "detail", "123"}.
type Key []any

// String returns the canonical form: a JSON array whose object parameters have sorted keys. Two
// keys with the same String address the same cache entry.
func (k Key) String() string {
	segs := make([]string, len(k))
	for i, v := range k {
		segs[i] = segment(v)
	}
	return "[" + strings.Join(segs, ",") + "]"
}

// Family is the first segment, or "" for an empty key.
func (k Key) Family() string {
	if len(k) == 0 {
		return ""
	}
	s, _ := k[0].(string)
	return s
}

// HasPrefix reports whether the leading segments of k equal prefix segment by segment. The empty
// prefix matches every key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if segment(k[i]) != segment(prefix[i]) {
			return false
		}
	}
	return true
}

// Append returns a new key with extra segments.
func (k Key) Append(segs ...any) Key {
	out := make(Key, 0, len(k)+len(segs))
	out = append(out, k...)
	return append(out, segs...)
}

// segment encodes one key segment. Structs and maps go through a JSON round trip so field order
// and omitted zero values never change the key.
func segment(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(v))
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return string(raw)
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
