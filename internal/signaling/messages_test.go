package signaling

import (
	"strings"
	"testing"
)

func TestParseClientMessage_Valid(t *testing.T) {
	msg, err := parseClientMessage([]byte(`{"event":"join-room","room":"abc"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.Event != eventJoinRoom || msg.Room != "abc" {
		t.Fatalf("msg=%+v", msg)
	}

	msg, err = parseClientMessage([]byte(`{"event":"offer","room":"abc","payload":{"type":"offer","sdp":"v=0"}}`))
	if err != nil {
		t.Fatalf("parse offer: %v", err)
	}
	if string(msg.Payload) != `{"type":"offer","sdp":"v=0"}` {
		t.Fatalf("payload not preserved verbatim: %s", msg.Payload)
	}
}

func TestParseClientMessage_Invalid(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", `hello`},
		{"unknown event", `{"event":"shutdown","room":"abc"}`},
		{"missing event", `{"room":"abc"}`},
		{"missing room", `{"event":"join-room"}`},
		{"unknown field", `{"event":"join-room","room":"abc","admin":true}`},
		{"trailing data", `{"event":"join-room","room":"abc"}{"event":"join-room","room":"abc"}`},
		{"join with payload", `{"event":"join-room","room":"abc","payload":{}}`},
		{"offer without payload", `{"event":"offer","room":"abc"}`},
		{"room too long", `{"event":"join-room","room":"` + strings.Repeat("x", maxRoomIDLen+1) + `"}`},
		{"room with control char", "{\"event\":\"join-room\",\"room\":\"a\\u0001b\"}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseClientMessage([]byte(tc.data)); err == nil {
				t.Fatalf("expected error for %s", tc.data)
			}
		})
	}
}
