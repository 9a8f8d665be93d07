package sseclient

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// Frame is one dispatched server-sent event.
type Frame struct {
	Event string
	ID    string
	Data  []byte
}

// Reader splits an event stream into frames. Comment lines and frames
// without data are skipped.
type Reader struct {
	br *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Next returns the next frame carrying data. A stream that ends mid-frame
// returns io.ErrUnexpectedEOF; a clean end returns io.EOF.
func (r *Reader) Next() (Frame, error) {
	var (
		f       Frame
		data    bytes.Buffer
		hasData bool
		pending bool
	)
	for {
		line, err := r.br.ReadString('\n')
		if err != nil {
			if err == io.EOF && (pending || line != "") {
				return Frame{}, io.ErrUnexpectedEOF
			}
			return Frame{}, err
		}
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

		if line == "" {
			if hasData {
				f.Data = data.Bytes()
				return f, nil
			}
			f, pending = Frame{}, false
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		pending = true
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			if hasData {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			hasData = true
		case "event":
			f.Event = value
		case "id":
			f.ID = value
		}
	}
}
