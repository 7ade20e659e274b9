package message

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/SarthakMakhija/kademlia/id"
	"github.com/SarthakMakhija/kademlia/rlp"
)

// Errors returned by the codec.
var (
	// ErrSerialization is returned when encoding or decoding a message fails.
	ErrSerialization = errors.New("message: serialization error")

	// ErrUnknownKind is returned when a frame carries an unrecognised tag byte.
	ErrUnknownKind = errors.New("message: unknown message kind")

	// ErrInvalidFindValueReply is returned when a FindValueReply would carry
	// both or neither of value/neighbors.
	ErrInvalidFindValueReply = errors.New("message: FindValueReply must carry exactly one of value or neighbors")
)

// lengthPrefixSize is the size, in bytes, of the big-endian frame length.
const lengthPrefixSize = 4

// wireEndpoint mirrors id.Endpoint for RLP encoding.
type wireEndpoint struct {
	Host string
	Port uint16
}

// wireSource mirrors Source for RLP encoding.
type wireSource struct {
	Host   string
	Port   uint16
	NodeId [id.ByteLength]byte
}

func toWireSource(s Source) wireSource {
	var w wireSource
	w.Host = s.Endpoint.Host
	w.Port = s.Endpoint.Port
	copy(w.NodeId[:], s.NodeId.Bytes())
	return w
}

func fromWireSource(w wireSource) Source {
	return Source{
		Endpoint: id.NewEndpoint(w.Host, w.Port),
		NodeId:   id.FromBytes(w.NodeId[:]),
	}
}

func toWireSources(sources []Source) []wireSource {
	out := make([]wireSource, len(sources))
	for i, s := range sources {
		out[i] = toWireSource(s)
	}
	return out
}

func fromWireSources(wires []wireSource) []Source {
	out := make([]Source, len(wires))
	for i, w := range wires {
		out[i] = fromWireSource(w)
	}
	return out
}

// wireOptionalId represents Option<MessageId>.
type wireOptionalId struct {
	Present bool
	Value   int64
}

func toWireOptionalId(id *MessageId) wireOptionalId {
	if id == nil {
		return wireOptionalId{}
	}
	return wireOptionalId{Present: true, Value: *id}
}

func fromWireOptionalId(w wireOptionalId) *MessageId {
	if !w.Present {
		return nil
	}
	v := w.Value
	return &v
}

// wireOptionalBytes represents Option<bytes>.
type wireOptionalBytes struct {
	Present bool
	Value   []byte
}

// wireOptionalSources represents Option<list<Source>>.
type wireOptionalSources struct {
	Present bool
	Value   []wireSource
}

type wireStoreBody struct {
	Key    []byte
	KeyId  [id.ByteLength]byte
	Value  []byte
	Source wireSource
}

type wireAddNodeBody struct {
	Source wireSource
}

type wireFindValueBody struct {
	Source    wireSource
	MessageId wireOptionalId
	Key       []byte
	KeyId     [id.ByteLength]byte
}

type wireFindValueReplyBody struct {
	MessageId int64
	Value     wireOptionalBytes
	Neighbors wireOptionalSources
}

type wireFindNodeBody struct {
	Source    wireSource
	MessageId wireOptionalId
	NodeId    [id.ByteLength]byte
}

type wireFindNodeReplyBody struct {
	MessageId int64
	Neighbors []wireSource
}

type wirePingBody struct {
	MessageId wireOptionalId
	From      wireSource
}

type wirePingReplyBody struct {
	MessageId int64
	To        wireSource
}

type wireShutDownBody struct{}

// Serialize encodes a message as [1-byte kind tag][RLP-encoded body].
func Serialize(m Message) ([]byte, error) {
	var body interface{}

	switch v := m.(type) {
	case *Store:
		var keyId [id.ByteLength]byte
		copy(keyId[:], v.KeyId.Bytes())
		body = wireStoreBody{Key: v.Key, KeyId: keyId, Value: v.Value, Source: toWireSource(v.Source)}
	case *AddNode:
		body = wireAddNodeBody{Source: toWireSource(v.Source)}
	case *FindValue:
		var keyId [id.ByteLength]byte
		copy(keyId[:], v.KeyId.Bytes())
		body = wireFindValueBody{
			Source:    toWireSource(v.Source),
			MessageId: toWireOptionalId(v.MessageId),
			Key:       v.Key,
			KeyId:     keyId,
		}
	case *FindValueReply:
		if (v.Value == nil) == (v.Neighbors == nil) {
			return nil, ErrInvalidFindValueReply
		}
		wire := wireFindValueReplyBody{MessageId: v.MessageId}
		if v.Value != nil {
			wire.Value = wireOptionalBytes{Present: true, Value: v.Value}
		}
		if v.Neighbors != nil {
			wire.Neighbors = wireOptionalSources{Present: true, Value: toWireSources(v.Neighbors)}
		}
		body = wire
	case *FindNode:
		var nodeId [id.ByteLength]byte
		copy(nodeId[:], v.NodeId.Bytes())
		body = wireFindNodeBody{
			Source:    toWireSource(v.Source),
			MessageId: toWireOptionalId(v.MessageId),
			NodeId:    nodeId,
		}
	case *FindNodeReply:
		body = wireFindNodeReplyBody{MessageId: v.MessageId, Neighbors: toWireSources(v.Neighbors)}
	case *Ping:
		body = wirePingBody{MessageId: toWireOptionalId(v.MessageId), From: toWireSource(v.From)}
	case *PingReply:
		body = wirePingReplyBody{MessageId: v.MessageId, To: toWireSource(v.To)}
	case *ShutDown:
		body = wireShutDownBody{}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, m)
	}

	encoded, err := rlp.EncodeToBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	out := make([]byte, 1+len(encoded))
	out[0] = byte(m.Kind())
	copy(out[1:], encoded)
	return out, nil
}

// Deserialize decodes a message previously produced by Serialize.
func Deserialize(data []byte) (Message, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: empty frame body", ErrSerialization)
	}
	kind := Kind(data[0])
	payload := data[1:]

	switch kind {
	case KindStore:
		var wire wireStoreBody
		if err := rlp.DecodeBytes(payload, &wire); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		return &Store{Key: wire.Key, KeyId: id.FromBytes(wire.KeyId[:]), Value: wire.Value, Source: fromWireSource(wire.Source)}, nil

	case KindAddNode:
		var wire wireAddNodeBody
		if err := rlp.DecodeBytes(payload, &wire); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		return &AddNode{Source: fromWireSource(wire.Source)}, nil

	case KindFindValue:
		var wire wireFindValueBody
		if err := rlp.DecodeBytes(payload, &wire); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		return &FindValue{
			Source:    fromWireSource(wire.Source),
			MessageId: fromWireOptionalId(wire.MessageId),
			Key:       wire.Key,
			KeyId:     id.FromBytes(wire.KeyId[:]),
		}, nil

	case KindFindValueReply:
		var wire wireFindValueReplyBody
		if err := rlp.DecodeBytes(payload, &wire); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		reply := &FindValueReply{MessageId: wire.MessageId}
		if wire.Value.Present {
			reply.Value = wire.Value.Value
			if reply.Value == nil {
				reply.Value = []byte{}
			}
		}
		if wire.Neighbors.Present {
			reply.Neighbors = fromWireSources(wire.Neighbors.Value)
			if reply.Neighbors == nil {
				reply.Neighbors = []Source{}
			}
		}
		return reply, nil

	case KindFindNode:
		var wire wireFindNodeBody
		if err := rlp.DecodeBytes(payload, &wire); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		return &FindNode{
			Source:    fromWireSource(wire.Source),
			MessageId: fromWireOptionalId(wire.MessageId),
			NodeId:    id.FromBytes(wire.NodeId[:]),
		}, nil

	case KindFindNodeReply:
		var wire wireFindNodeReplyBody
		if err := rlp.DecodeBytes(payload, &wire); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		return &FindNodeReply{MessageId: wire.MessageId, Neighbors: fromWireSources(wire.Neighbors)}, nil

	case KindPing:
		var wire wirePingBody
		if err := rlp.DecodeBytes(payload, &wire); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		return &Ping{MessageId: fromWireOptionalId(wire.MessageId), From: fromWireSource(wire.From)}, nil

	case KindPingReply:
		var wire wirePingReplyBody
		if err := rlp.DecodeBytes(payload, &wire); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		return &PingReply{MessageId: wire.MessageId, To: fromWireSource(wire.To)}, nil

	case KindShutDown:
		return &ShutDown{}, nil

	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownKind, kind)
	}
}

// FrameReadWriter is the contract a connection handler consumes: a
// bidirectional byte stream exposing framed message read/write.
type FrameReadWriter interface {
	ReadFrame() (Message, error)
	WriteFrame(m Message) error
}

// WriteFrame writes [4-byte big-endian length][serialized body] to w.
func WriteFrame(w io.Writer, m Message) error {
	body, err := Serialize(m)
	if err != nil {
		return err
	}
	var lengthPrefix [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(lengthPrefix[:], uint32(len(body)))
	if _, err := w.Write(lengthPrefix[:]); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// ReadFrame reads one [4-byte big-endian length][serialized body] frame
// from r and decodes it.
func ReadFrame(r io.Reader) (Message, error) {
	var lengthPrefix [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, lengthPrefix[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(lengthPrefix[:])
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return Deserialize(body)
}
