package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Tag prefixes every bridge envelope on the shared channel.
const Tag = "bind:"

var (
	ErrUntagged  = errors.New("protocol: message is not a bridge envelope")
	ErrMalformed = errors.New("protocol: malformed bridge envelope")
)

var null = json.RawMessage("null")

// Request asks the host to run the binding Name with positional Args.
type Request struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Args Args   `json:"args"`
}

// Response carries the result of the request with the same ID.
type Response struct {
	ID    string          `json:"id"`
	Ret   json.RawMessage `json:"ret"`
	Error *Fault          `json:"error,omitempty"`
}

// Fault codes carried in Response.Error.
const (
	CodeHandlerFault   = "handler_fault"
	CodeUnknownBinding = "unknown_binding"
	CodeCircuitOpen    = "circuit_open"
)

// Fault is a handler failure surfaced to the page instead of leaving the
// caller's pending call unresolved.
type Fault struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// IsTagged reports whether raw is a bridge envelope.
func IsTagged(raw string) bool {
	return strings.HasPrefix(raw, Tag)
}

// NewRequest builds a request, marshalling each argument.
func NewRequest(id, name string, args ...any) (Request, error) {
	encoded := make(Args, 0, len(args))
	for i, arg := range args {
		data, err := Marshal(arg)
		if err != nil {
			return Request{}, fmt.Errorf("failed to encode argument %d: %w", i, err)
		}
		encoded = append(encoded, data)
	}
	return Request{ID: id, Name: name, Args: encoded}, nil
}

// NewResponse builds a response, marshalling ret.
func NewResponse(id string, ret any) (Response, error) {
	if ret == nil {
		return Response{ID: id, Ret: null}, nil
	}
	data, err := Marshal(ret)
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode result: %w", err)
	}
	return Response{ID: id, Ret: data}, nil
}

// NewFaultResponse builds a response that rejects the caller.
func NewFaultResponse(id, code, message string) Response {
	return Response{ID: id, Ret: null, Error: &Fault{Code: code, Message: message}}
}

// EncodeRequest renders a tagged request envelope.
func EncodeRequest(req Request) (string, error) {
	if req.Args == nil {
		req.Args = Args{}
	}
	return encode(req)
}

// DecodeRequest parses a tagged request envelope.
func DecodeRequest(raw string) (Request, error) {
	var req Request
	if err := decode(raw, &req); err != nil {
		return Request{}, err
	}
	if req.ID == "" || req.Name == "" {
		return Request{}, fmt.Errorf("%w: missing id or name", ErrMalformed)
	}
	if req.Args == nil {
		req.Args = Args{}
	}
	return req, nil
}

// EncodeResponse renders a tagged response envelope.
func EncodeResponse(resp Response) (string, error) {
	if len(resp.Ret) == 0 {
		resp.Ret = null
	}
	return encode(resp)
}

// DecodeResponse parses a tagged response envelope.
func DecodeResponse(raw string) (Response, error) {
	var resp Response
	if err := decode(raw, &resp); err != nil {
		return Response{}, err
	}
	if resp.ID == "" {
		return Response{}, fmt.Errorf("%w: missing id", ErrMalformed)
	}
	if len(resp.Ret) == 0 {
		resp.Ret = null
	}
	return resp, nil
}

// IsNull reports whether a raw value is absent or JSON null.
func IsNull(v json.RawMessage) bool {
	s := strings.TrimSpace(string(v))
	return s == "" || s == "null"
}

func encode(v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode envelope: %w", err)
	}
	return Tag + string(data), nil
}

func decode(raw string, v any) error {
	if !IsTagged(raw) {
		return ErrUntagged
	}
	body := strings.TrimPrefix(raw, Tag)
	if err := Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
