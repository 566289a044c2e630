package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// client retries requests the node never answered. A response from the
// node, even an error, is final so a send is never submitted twice.
var client = &retryablehttp.Client{
	HTTPClient:   &http.Client{Timeout: 10 * time.Second},
	RetryMax:     3,
	RetryWaitMin: 200 * time.Millisecond,
	RetryWaitMax: time.Second,
	Backoff:      retryablehttp.LinearJitterBackoff,
	CheckRetry:   checkRetry,
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// call performs the request against the node and decodes the JSON response
// into resp. Any status other than 200 is returned as an error carrying the
// node's message.
func call(ctx context.Context, method string, path string, body any, resp any) error {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, nodeURL+path, data)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	r, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer r.Body.Close()

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if r.StatusCode != http.StatusOK {
		var er struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &er) == nil && er.Error != "" {
			return fmt.Errorf("node returned %d: %s", r.StatusCode, er.Error)
		}
		return fmt.Errorf("node returned %d: %s", r.StatusCode, bytes.TrimSpace(raw))
	}

	if resp == nil {
		return nil
	}

	if err := json.Unmarshal(raw, resp); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// printJSON writes the value as indented JSON.
func printJSON(cmdOut io.Writer, v any) error {
	enc := json.NewEncoder(cmdOut)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
