package sse

import (
	"bytes"
	"encoding/json"
)

// HandshakeType is the type of the first frame written on every stream.
const HandshakeType = "CONNECTED"

// Handshake is the initial frame sent when a stream opens.
type Handshake struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// EncodeFrame wraps payload in a blank-line terminated data frame. Embedded
// newlines are split across several data lines so the frame stays intact.
func EncodeFrame(payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(payload) + 8)
	for _, line := range bytes.Split(payload, []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(bytes.TrimSuffix(line, []byte("\r")))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

// EncodeJSON marshals v and wraps it as a data frame.
func EncodeJSON(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return EncodeFrame(data), nil
}

// EncodeComment builds a comment frame, ignored by consumers.
func EncodeComment(text string) []byte {
	return []byte(": " + text + "\n\n")
}
