package signaling

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Events sent by clients.
const (
	eventJoinRoom     = "join-room"
	eventOffer        = "offer"
	eventAnswer       = "answer"
	eventICECandidate = "ice-candidate"
)

// Events sent by the server. Offer, answer and ICE candidate events are also
// forwarded server-to-client with the sender's payload untouched.
const (
	eventWaitingForPeer   = "waiting-for-peer"
	eventRoomFull         = "room-full"
	eventInitiateCall     = "initiate-call"
	eventPeerJoined       = "peer-joined"
	eventPeerDisconnected = "peer-disconnected"
)

const maxRoomIDLen = 128

type clientMessage struct {
	Event   string          `json:"event"`
	Room    string          `json:"room"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type serverMessage struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// parseClientMessage decodes a single inbound frame. Unknown fields, trailing
// data, unknown events and malformed room IDs are all rejected; relayed
// payloads are kept as raw bytes and never inspected beyond JSON well-
// formedness of the envelope.
func parseClientMessage(data []byte) (clientMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var msg clientMessage
	if err := dec.Decode(&msg); err != nil {
		return clientMessage{}, err
	}
	if err := msg.validate(); err != nil {
		return clientMessage{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return clientMessage{}, fmt.Errorf("unexpected trailing data")
	}
	return msg, nil
}

func (m clientMessage) validate() error {
	switch m.Event {
	case eventJoinRoom:
		if len(m.Payload) != 0 {
			return fmt.Errorf("%s takes no payload", eventJoinRoom)
		}
	case eventOffer, eventAnswer, eventICECandidate:
		if len(m.Payload) == 0 {
			return fmt.Errorf("%s requires a payload", m.Event)
		}
	case "":
		return fmt.Errorf("missing event")
	default:
		return fmt.Errorf("unknown event %q", m.Event)
	}
	return validateRoomID(m.Room)
}

func validateRoomID(roomID string) error {
	if roomID == "" {
		return fmt.Errorf("missing room")
	}
	if len(roomID) > maxRoomIDLen {
		return fmt.Errorf("room id exceeds %d bytes", maxRoomIDLen)
	}
	for _, r := range roomID {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("room id contains control characters")
		}
	}
	return nil
}
