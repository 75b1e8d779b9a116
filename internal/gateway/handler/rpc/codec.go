package rpc

import (
	"ecoledger/internal/util/jsonutil"

	"connectrpc.com/connect"
)

// jsonCodec lets connect carry the plain DTO structs as application/json
// (unary) and application/connect+json (streaming) without generated
// protobuf messages.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return jsonutil.MarshalNoEscape(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return jsonutil.Unmarshal(data, v)
}

// CodecOption installs the JSON codec on handlers and clients.
func CodecOption() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
