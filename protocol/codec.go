package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrUnknownCodec = errors.New("protocol: unknown codec")
	ErrEmptyMessage = errors.New("protocol: empty message")
)

// Codec 线上编码。JSON 走文本帧，msgpack 走二进制帧
type Codec interface {
	Name() string
	Binary() bool
	Marshal(v any) ([]byte, error)
	Unmarshal(b []byte, v any) error
}

var (
	JSON    Codec = jsonCodec{}
	MsgPack Codec = msgpackCodec{}
)

// CodecByName 按名称选择编码（空串视为 json）
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSON, nil
	case "msgpack":
		return MsgPack, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

type jsonCodec struct{}

func (jsonCodec) Name() string                    { return "json" }
func (jsonCodec) Binary() bool                    { return false }
func (jsonCodec) Marshal(v any) ([]byte, error)   { return json.Marshal(v) }
func (jsonCodec) Unmarshal(b []byte, v any) error { return json.Unmarshal(b, v) }

// msgpackCodec 复用 json 标签，两种编码的字段名保持一致
type msgpackCodec struct{}

func (msgpackCodec) Name() string { return "msgpack" }
func (msgpackCodec) Binary() bool { return true }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Unmarshal(b []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// DecodeServer 解码下行消息
func DecodeServer(c Codec, b []byte) (ServerMessage, error) {
	var m ServerMessage
	if len(b) == 0 {
		return m, ErrEmptyMessage
	}
	if err := c.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("decode %s server message: %w", c.Name(), err)
	}
	return m, nil
}

// DecodeClient 解码上行消息；只接受带事件的 event 消息
func DecodeClient(c Codec, b []byte) (ClientMessage, error) {
	var m ClientMessage
	if len(b) == 0 {
		return m, ErrEmptyMessage
	}
	if err := c.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("decode %s client message: %w", c.Name(), err)
	}
	if m.Type != TypeEvent || m.Event == nil {
		return m, fmt.Errorf("decode %s client message: type %q without event", c.Name(), m.Type)
	}
	return m, nil
}
