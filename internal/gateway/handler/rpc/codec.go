package rpc

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// JSONCodec carries plain Go structs over the Connect protocol. It replaces
// connect's built-in "json" codec, which only accepts protobuf messages.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// WithJSON configures a Connect client or handler for JSONCodec.
func WithJSON() connect.Option { return connect.WithCodec(JSONCodec{}) }
