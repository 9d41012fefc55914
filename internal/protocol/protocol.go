package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// readChunkSize is the receive buffer size for frame assembly
const readChunkSize = 4096

// Request is the frame sent to the editor bridge
type Request struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params"`
}

// Response is the normalized envelope every reply folds into.
// When OK is false, Error carries the reason and Result is meaningless.
type Response struct {
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Errorf builds a failed response
func Errorf(format string, args ...any) Response {
	return Response{OK: false, Error: fmt.Sprintf(format, args...)}
}

// Normalize folds the reply shapes the bridge has been observed to emit
// into one envelope: {"status":"error","error":...},
// {"status":"success","result":...}, {"success":false,"error"|"message":...}
// and {"success":true,"result":...}. A reply carrying neither marker
// counts as success with its result field preserved. Malformed bytes and
// empty replies are errors, never success.
func Normalize(raw []byte) Response {
	if len(raw) == 0 {
		return Errorf("empty response from server")
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return Errorf("invalid response: %v", err)
	}
	if status, ok := body["status"].(string); ok && status == "error" {
		return Response{OK: false, Error: errorMessage(body)}
	}
	if success, ok := body["success"].(bool); ok && !success {
		return Response{OK: false, Error: errorMessage(body)}
	}
	return Response{OK: true, Result: body["result"]}
}

// errorMessage pulls the failure text out of a raw reply
func errorMessage(body map[string]any) string {
	if msg, ok := body["error"].(string); ok && msg != "" {
		return msg
	}
	if msg, ok := body["message"].(string); ok && msg != "" {
		return msg
	}
	return "unknown error from server"
}

// ParseRequest decodes one request frame
func ParseRequest(raw []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, fmt.Errorf("invalid request frame: %w", err)
	}
	if req.Type == "" {
		return Request{}, errors.New("request frame has no command type")
	}
	return req, nil
}

// ReadFrame accumulates reads until the buffer holds one complete JSON
// document or the peer closes the stream. There is no length prefix or
// delimiter on the wire; a successful full parse is the only frame
// boundary. Read deadlines are the caller's responsibility.
func ReadFrame(r io.Reader) ([]byte, error) {
	var frame []byte
	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			frame = append(frame, chunk[:n]...)
			if json.Valid(frame) {
				return frame, nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(frame) == 0 {
					return nil, errors.New("connection closed before any data")
				}
				return nil, fmt.Errorf("connection closed mid-frame after %d bytes", len(frame))
			}
			return nil, err
		}
	}
}
