package journal

import "github.com/vmihailenco/msgpack/v5"

// MsgPack encodes records as MessagePack.
var MsgPack Codec = &msgpackCodec{}

type msgpackCodec struct{}

func (*msgpackCodec) Name() string { return "msgpack" }

func (*msgpackCodec) Marshal(r *Record) ([]byte, error) {
	return msgpack.Marshal(r)
}

func (*msgpackCodec) Unmarshal(b []byte, r *Record) error {
	return msgpack.Unmarshal(b, r)
}
