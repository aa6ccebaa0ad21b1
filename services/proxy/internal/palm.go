package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// The v1beta2 surface and text-bison-001 have been retired upstream.
// Calls against the live service fail until the endpoint is migrated.
const palmURL = "https://generativelanguage.googleapis.com/v1beta2/models/text-bison-001:generateText"

const apiKeyEnv = "PALM_API_KEY"

var (
	ErrMissingAPIKey = errors.New(apiKeyEnv + " is not set")
	ErrInvalidUTF8   = errors.New("upstream body is not valid UTF-8")
)

type TextPrompt struct {
	Text string `json:"text"`
}

// GenerateTextRequest is the body sent to generateText. Temperature and
// CandidateCount are always 1; Temperature is encoded as the literal 1.0.
type GenerateTextRequest struct {
	Prompt         TextPrompt  `json:"prompt"`
	Temperature    json.Number `json:"temperature"`
	CandidateCount int         `json:"candidateCount"`
}

func NewGenerateTextRequest(prompt string) GenerateTextRequest {
	return GenerateTextRequest{
		Prompt:         TextPrompt{Text: prompt},
		Temperature:    json.Number("1.0"),
		CandidateCount: 1,
	}
}

// PalmClient issues generateText calls. The API key is looked up on every
// call so changes to the environment take effect without a restart.
type PalmClient struct {
	endpoint string
	apiKey   func() (string, bool)
	client   *http.Client
}

func NewPalmClient() *PalmClient {
	return &PalmClient{
		endpoint: palmURL,
		apiKey:   func() (string, bool) { return os.LookupEnv(apiKeyEnv) },
		client:   &http.Client{},
	}
}

// Generate posts prompt upstream and returns the raw response body. The
// upstream status code is not inspected.
func (pc *PalmClient) Generate(ctx context.Context, prompt string) (string, error) {
	key, ok := pc.apiKey()
	if !ok {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(NewGenerateTextRequest(prompt))
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pc.endpoint+"?key="+url.QueryEscape(key), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := pc.client.Do(req)
	if err != nil {
		// url.Error carries the full URL, key included.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return "", fmt.Errorf("palm request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("palm read body: %w", err)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Msg("palm response")

	if !utf8.Valid(raw) {
		return "", ErrInvalidUTF8
	}
	return string(raw), nil
}
