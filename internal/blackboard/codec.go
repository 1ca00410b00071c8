package blackboard

import "github.com/vmihailenco/msgpack/v5"

// Encode serializes v the same way the teacher's Redis cache client did —
// msgpack rather than JSON, since status records round-trip internally
// only and never cross the wire verbatim (the API re-encodes to JSON at
// the HTTP boundary).
func Encode(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode is the inverse of Encode.
func Decode(data []byte, v interface{}) error {
	return msgpack.Unmarshal(data, v)
}
