package api

import (
	"fmt"

	"github.com/goccy/go-json"
	"google.golang.org/grpc/encoding"
)

/*
Planner messages are plain Go structs encoded as JSON on the wire. The codec is
registered with gRPC under the "json" content subtype; clients select it with
CallContentSubtype, and servers pick it from the request's content type.
*/

////////////////////////////////////////////////////////////////////////////////

// CodecName is the gRPC content subtype of the planner codec.
const CodecName = "json"

// Codec is a gRPC codec encoding messages as JSON.
type Codec struct{}

// Marshal encodes v.
func (Codec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	return data, nil
}

// Unmarshal decodes data into v.
func (Codec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", v, err)
	}
	return nil
}

// Name returns the codec's content subtype.
func (Codec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(Codec{})
}
