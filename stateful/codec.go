package stateful

import (
	"encoding/json"
	"io"
)

// A Codec turns the state maps of a snapshot into bytes and back. The machine
// hands it one map per stateful device plus the snapshot time.
type Codec interface {
	Encode(w io.Writer, data map[string]any) error
	Decode(r io.Reader) (map[string]any, error)
}

// JSONCodec stores snapshots as a single JSON document. JSON brings every
// number back as float64, which is exact for tick counts below 2^53; device
// Deserialize implementations must accept that.
type JSONCodec struct{}

// Encode writes one snapshot to w.
func (JSONCodec) Encode(w io.Writer, data map[string]any) error {
	return json.NewEncoder(w).Encode(data)
}

// Decode reads one snapshot from r.
func (JSONCodec) Decode(r io.Reader) (map[string]any, error) {
	var data map[string]any
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, err
	}

	return data, nil
}
