package social

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"log/slog"
)

const defaultAPIBase = "https://api.twitter.com"

// Credentials holds the OAuth 1.0a keys plus the app bearer token used
// for credential validation.
type Credentials struct {
	APIKey            string
	APISecret         string
	AccessToken       string
	AccessTokenSecret string
	BearerToken       string
}

// Configured reports whether the user-context keys needed to post are set.
func (c Credentials) Configured() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessTokenSecret != ""
}

// TwitterClient posts tweets through the Twitter API v2 using OAuth 1.0a
// request signing.
type TwitterClient struct {
	creds      Credentials
	apiBase    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTwitterClient creates a client against the public Twitter API.
func NewTwitterClient(creds Credentials, logger *slog.Logger) *TwitterClient {
	return NewTwitterClientWithBase(creds, defaultAPIBase, logger)
}

// NewTwitterClientWithBase allows overriding the API base URL.
func NewTwitterClientWithBase(creds Credentials, apiBase string, logger *slog.Logger) *TwitterClient {
	return &TwitterClient{
		creds:   creds,
		apiBase: strings.TrimRight(apiBase, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type tweetRequest struct {
	Text string `json:"text"`
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"errors,omitempty"`
}

// PostTweet publishes the given text and returns the created tweet ID.
func (c *TwitterClient) PostTweet(ctx context.Context, text string) (string, error) {
	endpoint := c.apiBase + "/2/tweets"

	body, err := json.Marshal(tweetRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("failed to marshal tweet request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	authHeader, err := c.oauthHeader(http.MethodPost, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}
	req.Header.Set("Authorization", authHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to post tweet: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed tweetResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		if len(parsed.Errors) > 0 {
			return "", fmt.Errorf("twitter API error: %s", parsed.Errors[0].Message)
		}
		return "", fmt.Errorf("twitter API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	c.logger.Info("tweet posted",
		"tweet_id", parsed.Data.ID,
		"text_length", len(text))

	return parsed.Data.ID, nil
}

// ValidateCredentials checks the bearer token against the /2/users/me endpoint.
func (c *TwitterClient) ValidateCredentials(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/2/users/me", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.creds.BearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to validate credentials: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("invalid credentials (status %d): %s", resp.StatusCode, string(body))
	}

	c.logger.Info("twitter credentials validated")
	return nil
}

// oauthHeader builds the OAuth 1.0a Authorization header for a request.
// Extra query or form parameters participate in the signature base string.
func (c *TwitterClient) oauthHeader(method, endpoint string, params map[string]string) (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonceStr := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, base64.StdEncoding.EncodeToString(nonce))

	oauthParams := map[string]string{
		"oauth_consumer_key":     c.creds.APIKey,
		"oauth_nonce":            nonceStr,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(time.Now().Unix(), 10),
		"oauth_token":            c.creds.AccessToken,
		"oauth_version":          "1.0",
	}

	allParams := make(map[string]string, len(oauthParams)+len(params))
	for k, v := range oauthParams {
		allParams[k] = v
	}
	for k, v := range params {
		allParams[k] = v
	}

	pairs := make([]string, 0, len(allParams))
	for k, v := range allParams {
		pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(v))
	}
	sort.Strings(pairs)
	paramString := strings.Join(pairs, "&")

	signatureBase := method + "&" + url.QueryEscape(endpoint) + "&" + url.QueryEscape(paramString)
	signingKey := url.QueryEscape(c.creds.APISecret) + "&" + url.QueryEscape(c.creds.AccessTokenSecret)

	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(signatureBase))
	oauthParams["oauth_signature"] = base64.StdEncoding.EncodeToString(mac.Sum(nil))

	authPairs := make([]string, 0, len(oauthParams))
	for k, v := range oauthParams {
		authPairs = append(authPairs, url.QueryEscape(k)+"=\""+url.QueryEscape(v)+"\"")
	}
	sort.Strings(authPairs)

	return "OAuth " + strings.Join(authPairs, ", "), nil
}
