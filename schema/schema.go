package schema

import "encoding/json"

// Schema is the content contract shared by conversation messages and tool
// input/output structures.
type Schema interface {
	// String returns a presentation form of the schema, or an empty string
	// when the JSON form should be used instead.
	String() string
}

// Stringify serializes a schema for transport. A non-empty presentation
// string wins, otherwise the JSON encoding is used.
func Stringify(s Schema) string {
	if v, ok := s.(String); ok {
		return string(v)
	}
	if str := s.String(); str != "" {
		return str
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}

// ToBytes serializes a schema to raw bytes.
func ToBytes(s Schema) []byte {
	if v, ok := s.(String); ok {
		return []byte(v)
	}
	bs, _ := json.Marshal(s)
	return bs
}
