package relay

import (
	"encoding/hex"
	"strings"
)

// Command prefixes of the line protocol. CmdSend is the only outbound
// command this system uses; CmdLog is the synthetic command for lines that
// carry no prefix.
const (
	CmdSend    = "s"
	CmdReceive = "r"
	CmdLog     = "log"
)

// Event is one classified inbound line. Received radio frames carry their
// decoded bytes in Frame; every other command carries trimmed Text.
type Event struct {
	Command string
	Frame   []byte
	Text    string
}

// classifyLine splits a line into (command, payload). Lines without a
// colon are log text. A malformed hex payload on a received frame yields
// an empty frame rather than an error, so one bad line never stops the
// read loop.
func classifyLine(text string) Event {
	prefix, rest, found := strings.Cut(text, ":")
	if !found {
		return Event{Command: CmdLog, Text: text}
	}

	command := strings.ToLower(strings.TrimSpace(prefix))
	if command == "" {
		command = CmdLog
	}
	payload := strings.TrimSpace(rest)

	if command == CmdReceive {
		frame, err := hex.DecodeString(strings.ReplaceAll(payload, " ", ""))
		if err != nil {
			frame = []byte{}
		}

		return Event{Command: command, Frame: frame}
	}

	return Event{Command: command, Text: payload}
}

// EncodeFrameHex renders frame bytes the way the relay expects them on a
// command line: lowercase hex, no separators.
func EncodeFrameHex(frame []byte) string {
	return hex.EncodeToString(frame)
}
