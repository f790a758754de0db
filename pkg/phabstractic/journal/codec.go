package journal

import (
	"fmt"

	"github.com/asherwunk/phabstractic/pkg/phabstractic/registry"
)

// Codec encodes records for storage and transport.
type Codec interface {
	Name() string
	Marshal(r *Record) ([]byte, error)
	Unmarshal(b []byte, r *Record) error
}

// DefaultCodec is used when no codec is configured.
var DefaultCodec = JSON

var codecs = func() *registry.Registry[string, Codec] {
	r := registry.New[string, Codec]()
	for _, c := range []Codec{JSON, MsgPack, ProtoBuf} {
		r.Set(c.Name(), c)
	}
	return r
}()

// RegisterCodec makes c available to LookupCodec under c.Name().
func RegisterCodec(c Codec) {
	codecs.Set(c.Name(), c)
}

// LookupCodec returns the codec registered under name.
func LookupCodec(name string) (Codec, error) {
	c, ok := codecs.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, name)
	}
	return c, nil
}

// CodecNames returns the registered codec names.
func CodecNames() []string {
	return codecs.Keys()
}
