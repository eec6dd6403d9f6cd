package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"quest-verify-system/models"
)

const defaultVerifierTimeout = 30 * time.Second

// VerifierConfig is injected at construction; no ambient globals.
type VerifierConfig struct {
	BaseURL string
	Timeout time.Duration
}

// VerifyRequest is the wire request to the external verification engine.
type VerifyRequest struct {
	Proof        json.RawMessage  `json:"proof"`
	QuestType    models.QuestType `json:"questType"`
	ExpectedData *ExpectedData    `json:"expectedData,omitempty"`
}

type ExpectedData struct {
	TweetURL       string `json:"tweetUrl"`
	ExpectedAuthor string `json:"expectedAuthor,omitempty"`
}

// VerifierResponse mirrors the engine's snake_case verdict fields.
type VerifierResponse struct {
	Valid            bool   `json:"valid"`
	TwitterHandle    string `json:"twitter_handle,omitempty"`
	TweetID          string `json:"tweet_id,omitempty"`
	AuthorScreenName string `json:"author_screen_name,omitempty"`
	TweetText        string `json:"tweet_text,omitempty"`
	LikeVerified     bool   `json:"like_verified,omitempty"`
	RetweetVerified  bool   `json:"retweet_verified,omitempty"`
	Error            string `json:"error,omitempty"`
}

// VerifierClient talks to the external proof verification engine. One call
// per submission, no retries; transport failures and non-2xx statuses map
// to ErrVerifierUnavailable, while {valid:false} is an ordinary verdict.
type VerifierClient struct {
	baseURL string
	client  *http.Client
}

func NewVerifierClient(cfg VerifierConfig) *VerifierClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultVerifierTimeout
	}
	return &VerifierClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *VerifierClient) Verify(ctx context.Context, verifyReq VerifyRequest) (*VerifierResponse, error) {
	body, err := json.Marshal(verifyReq)
	if err != nil {
		return nil, fmt.Errorf("failed to encode verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: verifier returned status %d: %s",
			ErrVerifierUnavailable, resp.StatusCode, string(snippet))
	}

	var verdict VerifierResponse
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("%w: failed to decode verifier response: %v", ErrVerifierUnavailable, err)
	}
	return &verdict, nil
}
