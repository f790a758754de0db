package journal

import "github.com/bytedance/sonic"

// JSON encodes records as JSON.
var JSON Codec = &jsonCodec{}

type jsonCodec struct{}

func (*jsonCodec) Name() string { return "json" }

func (*jsonCodec) Marshal(r *Record) ([]byte, error) {
	return sonic.Marshal(r)
}

func (*jsonCodec) Unmarshal(b []byte, r *Record) error {
	if len(b) == 0 {
		return nil
	}
	return sonic.Unmarshal(b, r)
}
