package control

import (
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/encoding"
)

// codecName is the gRPC content subtype the control service speaks:
// application/grpc+json.
const codecName = "json"

// jsonCodec lets the service run over gRPC without generated protobuf
// types. The gateway's JSON marshaler keeps both transports byte-identical.
type jsonCodec struct {
	m gwruntime.JSONBuiltin
}

func (c jsonCodec) Marshal(v any) ([]byte, error)      { return c.m.Marshal(v) }
func (c jsonCodec) Unmarshal(data []byte, v any) error { return c.m.Unmarshal(data, v) }
func (jsonCodec) Name() string                         { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
