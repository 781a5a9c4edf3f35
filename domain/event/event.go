package event

import (
	"bytes"
	"encoding/binary"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/meridian-chain/corecontracts/domain"
)

// Event is the envelope appended to the notification log. The payload is
// opaque to the bus; only the header has a fixed wire form.
type Event struct {
	Id      uuid.UUID        `json:"id"`
	Kind    domain.EventKind `json:"kind"`
	Address domain.Address   `json:"address"`
	Data    interface{}      `json:"data"`
}

func New(kind domain.EventKind, addr domain.Address, data interface{}) Event {
	return Event{
		Id:      uuid.New(),
		Kind:    kind,
		Address: addr,
		Data:    data,
	}
}

// Serialize renders the envelope: id bytes, then length-prefixed kind,
// address and JSON payload.
func (e Event) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(e.Id[:])
	writeChunk(&buf, []byte(e.Kind))
	writeChunk(&buf, []byte(e.Address))
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	writeChunk(&buf, payload)
	return buf.Bytes(), nil
}

func writeChunk(buf *bytes.Buffer, bs []byte) {
	var lenBytes [4]byte
	binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(bs)))
	buf.Write(lenBytes[:])
	buf.Write(bs)
}
