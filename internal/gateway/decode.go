package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DecodeList accepts either a bare JSON array or an object carrying the array
// under "data". Any other shape, null included, yields an empty slice.
func DecodeList[T any](body []byte) ([]T, error) {
	raw := listPayload(body)
	if raw == nil {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("gateway: decode list: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func listPayload(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '[':
		return trimmed
	case '{':
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil
		}
		data := bytes.TrimSpace(envelope.Data)
		if len(data) > 0 && data[0] == '[' {
			return data
		}
	}
	return nil
}

// decodeMessage extracts an optional {"message": "..."} from body.
func decodeMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

// decodeValidation parses a 422 body. The "errors" object is walked token by
// token so that field order matches the response.
func decodeValidation(body []byte) *ValidationError {
	verr := &ValidationError{}
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return verr
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return verr
		}
		key, _ := keyTok.(string)
		switch key {
		case "message":
			var msg any
			if err := dec.Decode(&msg); err != nil {
				return verr
			}
			if s, ok := msg.(string); ok {
				verr.Message = s
			}
		case "errors":
			fields, err := decodeFieldErrors(dec)
			if err != nil {
				return verr
			}
			verr.Fields = fields
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return verr
			}
		}
	}
	return verr
}

func decodeFieldErrors(dec *json.Decoder) ([]FieldError, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		// Not a mapping; consume whatever value it was.
		if d, ok := tok.(json.Delim); ok && d == '[' {
			return nil, skipRest(dec)
		}
		return nil, nil
	}
	var fields []FieldError
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		field, _ := keyTok.(string)
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fe := FieldError{Field: field}
		switch v := value.(type) {
		case string:
			fe.Messages = []string{v}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					fe.Messages = append(fe.Messages, s)
				}
			}
		}
		fields = append(fields, fe)
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return fields, nil
}

func skipRest(dec *json.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '[', '{':
				depth++
			case ']', '}':
				depth--
			}
		}
	}
	return nil
}
