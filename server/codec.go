package server

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec is a grpc encoding.Codec over plain JSON, standing in for the
// generated proto codec this project has no protoc step to produce.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return "json" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
