package bookpb

import (
	"github.com/pkg/errors"
	"google.golang.org/grpc/encoding"
)

// CodecName is the content subtype clients select with
// grpc.CallContentSubtype. Servers pick the codec up from the registry.
const CodecName = "lobwire"

func init() {
	encoding.RegisterCodec(Codec{})
}

// Codec marshals the messages of this package for gRPC.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, errors.Errorf("bookpb: cannot marshal %T", v)
	}
	return m.Marshal()
}

func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return errors.Errorf("bookpb: cannot unmarshal into %T", v)
	}
	return m.Unmarshal(data)
}
