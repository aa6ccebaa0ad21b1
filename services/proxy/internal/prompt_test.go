package internal

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestPromptRequestUnmarshal(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		expectNil  bool
		expect     string
		expectType bool
		expectLone bool
	}{
		{name: "exact key", body: `{"prompt":"hi"}`, expect: "hi"},
		{name: "extra keys", body: `{"a":1,"prompt":"hi","b":[1]}`, expect: "hi"},
		{name: "escaped quote", body: `{"prompt":"a\"b\\u"}`, expect: `a"b\u`},
		{name: "bmp escape", body: `{"prompt":"\u00e9"}`, expect: "é"},
		{name: "surrogate pair", body: `{"prompt":"\ud83d\ude00"}`, expect: "\U0001F600"},
		{name: "missing", body: `{}`, expectNil: true},
		{name: "case variant", body: `{"Prompt":"hi"}`, expectNil: true},
		{name: "null", body: `{"prompt":null}`, expectNil: true},
		{name: "number", body: `{"prompt":1}`, expectType: true},
		{name: "bool", body: `{"prompt":true}`, expectType: true},
		{name: "object", body: `{"prompt":{"text":"hi"}}`, expectType: true},
		{name: "not an object", body: `"hi"`, expectType: true},
		{name: "lone high surrogate", body: `{"prompt":"\ud800"}`, expectLone: true},
		{name: "lone low surrogate", body: `{"prompt":"x\udc00y"}`, expectLone: true},
		{name: "high then non-low", body: `{"prompt":"\ud800A"}`, expectLone: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var req PromptRequest
			err := json.Unmarshal([]byte(tc.body), &req)

			var typeErr *json.UnmarshalTypeError
			switch {
			case tc.expectType:
				if !errors.As(err, &typeErr) {
					t.Errorf("expected type error, got %v", err)
				}
			case tc.expectLone:
				if !errors.Is(err, ErrLoneSurrogate) {
					t.Errorf("expected ErrLoneSurrogate, got %v", err)
				}
			case err != nil:
				t.Fatalf("unexpected error: %v", err)
			case tc.expectNil:
				if req.Prompt != nil {
					t.Errorf("expected no prompt, got %q", *req.Prompt)
				}
			default:
				if req.Prompt == nil || *req.Prompt != tc.expect {
					t.Errorf("expected prompt %q, got %v", tc.expect, req.Prompt)
				}
			}
		})
	}
}
