package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const deepgramBaseURL = "https://api.deepgram.com"

// Transcript is the provider-agnostic result of a transcription request.
type Transcript struct {
	Text       string
	Confidence float64
}

// DeepgramClient wraps the Deepgram REST API for both transcription
// (listen) and synthesis (speak).
type DeepgramClient struct {
	BaseURL string
	ApiKey  string
	Client  *http.Client
}

func NewDeepgramClient(apiKey string) *DeepgramClient {
	return &DeepgramClient{
		BaseURL: deepgramBaseURL,
		ApiKey:  apiKey,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// --- Response structs (internal to this package) ---

type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// StatusError carries the upstream HTTP status so callers can decide
// whether a retry makes sense.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("deepgram error: status %d, body: %s", e.StatusCode, e.Body)
}

// Transcribe sends raw audio to the listen endpoint and returns the top
// alternative of the first channel.
func (d *DeepgramClient) Transcribe(ctx context.Context, audio []byte, mimeType, model string) (*Transcript, error) {
	q := url.Values{}
	q.Set("model", model)
	q.Set("smart_format", "true")

	endpoint := d.BaseURL + "/v1/listen?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(audio))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+d.ApiKey)
	req.Header.Set("Content-Type", mimeType)

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepgram request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var parsed listenResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return &Transcript{}, nil
	}

	alt := parsed.Results.Channels[0].Alternatives[0]
	return &Transcript{
		Text:       alt.Transcript,
		Confidence: alt.Confidence,
	}, nil
}

// Speak synthesizes text into audio using the speak endpoint and
// returns the raw audio bytes plus the response content type.
func (d *DeepgramClient) Speak(ctx context.Context, text, voiceModel string) ([]byte, string, error) {
	q := url.Values{}
	q.Set("model", voiceModel)

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := d.BaseURL + "/v1/speak?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+d.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("deepgram request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	return bodyBytes, contentType, nil
}
