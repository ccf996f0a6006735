package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ImageHostClient uploads captured photos to the external image host via its
// unsigned-preset multipart endpoint and returns the durable secure URL.
type ImageHostClient struct {
	baseURL    string
	preset     string
	httpClient *http.Client
}

func NewImageHostClient(baseURL, preset string) *ImageHostClient {
	return &ImageHostClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		preset:     preset,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// Upload streams one file plus the fixed preset identifier. The body is built
// through a pipe so large photos never sit fully in memory.
func (c *ImageHostClient) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := mw.WriteField("upload_preset", c.preset); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/image/upload", pr)
	if err != nil {
		return "", fmt.Errorf("imagehost: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("imagehost: upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("imagehost: upload returned %d", resp.StatusCode)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("imagehost: decode response: %w", err)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("imagehost: response missing secure_url")
	}
	return out.SecureURL, nil
}
