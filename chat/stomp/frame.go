package stomp

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Frame commands used by the client side of STOMP 1.2.
const (
	CmdConnect     = "CONNECT"
	CmdConnected   = "CONNECTED"
	CmdSend        = "SEND"
	CmdSubscribe   = "SUBSCRIBE"
	CmdUnsubscribe = "UNSUBSCRIBE"
	CmdDisconnect  = "DISCONNECT"
	CmdMessage     = "MESSAGE"
	CmdReceipt     = "RECEIPT"
	CmdError       = "ERROR"
)

// Common header names.
const (
	HdrAcceptVersion = "accept-version"
	HdrHeartBeat     = "heart-beat"
	HdrHost          = "host"
	HdrDestination   = "destination"
	HdrID            = "id"
	HdrSubscription  = "subscription"
	HdrContentType   = "content-type"
	HdrVersion       = "version"
	HdrMessage       = "message"
)

// Frame is one STOMP frame. On the wire each frame travels as a single
// websocket text message, terminated by a NUL byte; a lone newline is a
// heartbeat, not a frame.
type Frame struct {
	Command string
	Headers map[string]string
	Body    []byte
}

func NewFrame(command string, headers map[string]string, body []byte) Frame {
	if headers == nil {
		headers = map[string]string{}
	}
	return Frame{Command: command, Headers: headers, Body: body}
}

// Marshal renders the frame in wire format. Headers are written in sorted
// order so output is deterministic.
func (f Frame) Marshal() []byte {
	var buf bytes.Buffer
	buf.WriteString(f.Command)
	buf.WriteByte('\n')

	keys := make([]string, 0, len(f.Headers))
	for k := range f.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.WriteString(escapeHeader(f.Command, k))
		buf.WriteByte(':')
		buf.WriteString(escapeHeader(f.Command, f.Headers[k]))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(f.Body)
	buf.WriteByte(0)
	return buf.Bytes()
}

// Parse decodes one wire message. A nil frame with a nil error means the
// message was a heartbeat.
func Parse(data []byte) (*Frame, error) {
	if len(bytes.Trim(data, "\r\n")) == 0 {
		return nil, nil
	}

	data = bytes.TrimSuffix(data, []byte{0})
	head, body, found := bytes.Cut(data, []byte("\n\n"))
	if !found {
		return nil, fmt.Errorf("stomp: frame missing header terminator")
	}

	lines := strings.Split(strings.TrimPrefix(string(head), "\r\n"), "\n")
	command := strings.TrimRight(lines[0], "\r")
	if command == "" {
		return nil, fmt.Errorf("stomp: frame missing command")
	}

	headers := make(map[string]string, len(lines)-1)
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("stomp: malformed header %q", line)
		}
		name = unescapeHeader(command, name)
		// STOMP 1.2: the first occurrence of a repeated header wins.
		if _, exists := headers[name]; !exists {
			headers[name] = unescapeHeader(command, value)
		}
	}

	return &Frame{Command: command, Headers: headers, Body: body}, nil
}

// CONNECT and CONNECTED frames are exempt from header escaping in STOMP 1.2.
func headerEscapingExempt(command string) bool {
	return command == CmdConnect || command == CmdConnected
}

var headerEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"\r", "\\r",
	"\n", "\\n",
	":", "\\c",
)

var headerUnescaper = strings.NewReplacer(
	"\\r", "\r",
	"\\n", "\n",
	"\\c", ":",
	"\\\\", "\\",
)

func escapeHeader(command, s string) string {
	if headerEscapingExempt(command) {
		return s
	}
	return headerEscaper.Replace(s)
}

func unescapeHeader(command, s string) string {
	if headerEscapingExempt(command) {
		return s
	}
	return headerUnescaper.Replace(s)
}
