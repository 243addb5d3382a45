package apiclient

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Text decodes a JSON string, number or boolean into a string.
// Backends disagree on whether status and code are numeric.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*t = Text(n.String())
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*t = Text(strconv.FormatBool(v))
	return nil
}

// Envelope is the response shape shared by every endpoint: { data?, status?, code?, message? }.
type Envelope struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Status  Text            `json:"status,omitempty"`
	Code    Text            `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
}

// HasData reports whether the response carried a non-null data field.
func (e *Envelope) HasData() bool {
	if e == nil {
		return false
	}
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// DecodeData unmarshals data into out. Absent or null data leaves out untouched.
func (e *Envelope) DecodeData(out interface{}) error {
	if !e.HasData() || out == nil {
		return nil
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}
