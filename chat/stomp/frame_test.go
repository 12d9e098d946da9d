package stomp

import (
	"bytes"
	"testing"
)

func TestFrame_Marshal(t *testing.T) {
	f := NewFrame(CmdSend, map[string]string{
		HdrDestination: "/pub/chats/1",
		HdrContentType: "application/json",
	}, []byte(`{"message":"hi","userId":7}`))

	want := "SEND\ncontent-type:application/json\ndestination:/pub/chats/1\n\n{\"message\":\"hi\",\"userId\":7}\x00"
	if got := string(f.Marshal()); got != want {
		t.Errorf("Marshal() = %q, want %q", got, want)
	}
}

func TestParse_MessageFrame(t *testing.T) {
	wire := "MESSAGE\ndestination:/sub/chats/1\nsubscription:sub-1\nmessage-id:9\n\n{\"userId\":7,\"message\":\"hi\"}\x00"

	f, err := Parse([]byte(wire))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f == nil {
		t.Fatal("Parse() returned nil frame for non-heartbeat input")
	}
	if f.Command != CmdMessage {
		t.Errorf("Command = %q, want MESSAGE", f.Command)
	}
	if f.Headers[HdrDestination] != "/sub/chats/1" {
		t.Errorf("destination = %q, want /sub/chats/1", f.Headers[HdrDestination])
	}
	if f.Headers[HdrSubscription] != "sub-1" {
		t.Errorf("subscription = %q, want sub-1", f.Headers[HdrSubscription])
	}
	if !bytes.Equal(f.Body, []byte(`{"userId":7,"message":"hi"}`)) {
		t.Errorf("Body = %q", f.Body)
	}
}

func TestParse_Heartbeat(t *testing.T) {
	for _, wire := range []string{"\n", "\r\n", ""} {
		f, err := Parse([]byte(wire))
		if err != nil {
			t.Errorf("Parse(%q) error = %v", wire, err)
		}
		if f != nil {
			t.Errorf("Parse(%q) = %+v, want nil heartbeat", wire, f)
		}
	}
}

func TestParse_MalformedFrame(t *testing.T) {
	tests := []struct {
		name string
		wire string
	}{
		{"no header terminator", "MESSAGE\ndestination:/sub/chats/1\x00"},
		{"header without colon", "MESSAGE\ndestination\n\n\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.wire)); err == nil {
				t.Error("Parse() error = nil, want error")
			}
		})
	}
}

func TestHeaderEscaping(t *testing.T) {
	f := NewFrame(CmdSend, map[string]string{"x-note": "a:b\nc"}, nil)
	wire := string(f.Marshal())

	want := "SEND\nx-note:a\\cb\\nc\n\n\x00"
	if wire != want {
		t.Fatalf("Marshal() = %q, want %q", wire, want)
	}

	parsed, err := Parse([]byte(wire))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := parsed.Headers["x-note"]; got != "a:b\nc" {
		t.Errorf("round-tripped header = %q, want %q", got, "a:b\nc")
	}
}

func TestParse_ConnectedSkipsUnescaping(t *testing.T) {
	wire := "CONNECTED\nversion:1.2\nheart-beat:4000,4000\n\n\x00"
	f, err := Parse([]byte(wire))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Headers[HdrVersion] != "1.2" {
		t.Errorf("version = %q, want 1.2", f.Headers[HdrVersion])
	}
	if f.Headers[HdrHeartBeat] != "4000,4000" {
		t.Errorf("heart-beat = %q, want 4000,4000", f.Headers[HdrHeartBeat])
	}
}

func TestParse_RepeatedHeaderFirstWins(t *testing.T) {
	wire := "MESSAGE\nfoo:first\nfoo:second\n\nbody\x00"
	f, err := Parse([]byte(wire))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Headers["foo"] != "first" {
		t.Errorf("foo = %q, want first", f.Headers["foo"])
	}
}
