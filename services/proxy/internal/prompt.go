package internal

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
)

// ErrLoneSurrogate rejects \uD800-\uDFFF escapes that do not form a pair.
var ErrLoneSurrogate = errors.New("lone surrogate in string escape")

// PromptRequest is the body accepted by POST /prompt. Only the exact key
// "prompt" is recognized; other keys, including case variants, are ignored.
type PromptRequest struct {
	Prompt *string `json:"prompt" binding:"required"`
}

func (p *PromptRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	p.Prompt = nil
	raw, ok := fields["prompt"]
	if !ok || string(raw) == "null" {
		return nil
	}
	if raw[0] != '"' {
		return &json.UnmarshalTypeError{
			Value: jsonKind(raw),
			Type:  reflect.TypeOf(""),
			Field: "prompt",
		}
	}
	if hasLoneSurrogate(raw) {
		return ErrLoneSurrogate
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	p.Prompt = &s
	return nil
}

func jsonKind(raw json.RawMessage) string {
	switch raw[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "bool"
	default:
		return "number"
	}
}

// hasLoneSurrogate scans a quoted JSON string for \u escapes in the
// surrogate range that are not a high/low pair.
func hasLoneSurrogate(quoted []byte) bool {
	for i := 0; i < len(quoted); i++ {
		if quoted[i] != '\\' {
			continue
		}
		r, ok := escapedRune(quoted, i)
		if !ok {
			i++
			continue
		}
		switch {
		case r >= 0xDC00 && r <= 0xDFFF:
			return true
		case r >= 0xD800 && r <= 0xDBFF:
			lo, ok := escapedRune(quoted, i+6)
			if !ok || lo < 0xDC00 || lo > 0xDFFF {
				return true
			}
			i += 11
		default:
			i += 5
		}
	}
	return false
}

// escapedRune decodes the \uXXXX escape starting at b[i].
func escapedRune(b []byte, i int) (rune, bool) {
	if i+6 > len(b) || b[i] != '\\' || b[i+1] != 'u' {
		return 0, false
	}
	n, err := strconv.ParseUint(string(b[i+2:i+6]), 16, 16)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}
