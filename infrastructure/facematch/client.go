package facematch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// Client talks to the external face-recognition service over HTTP. The
// service receives the stored reference photo and the live probe and answers
// with a bare boolean; everything about the algorithm stays on its side.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type matchResponse struct {
	Match bool `json:"match"`
}

func (c *Client) Match(ctx context.Context, reference, probe []byte, tolerance float64) (bool, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for name, data := range map[string][]byte{"reference": reference, "probe": probe} {
		part, err := writer.CreateFormFile(name, name+".png")
		if err != nil {
			return false, err
		}
		if _, err := part.Write(data); err != nil {
			return false, err
		}
	}
	if err := writer.WriteField("tolerance", strconv.FormatFloat(tolerance, 'f', -1, 64)); err != nil {
		return false, err
	}
	if err := writer.Close(); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/match", &body)
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("POST /match failed with status code %d: %s", resp.StatusCode, string(b))
	}

	var result matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, err
	}
	return result.Match, nil
}

// MatcherFunc adapts a plain function to the engine's matcher contract.
type MatcherFunc func(ctx context.Context, reference, probe []byte, tolerance float64) (bool, error)

func (f MatcherFunc) Match(ctx context.Context, reference, probe []byte, tolerance float64) (bool, error) {
	return f(ctx, reference, probe, tolerance)
}
