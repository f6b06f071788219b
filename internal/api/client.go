// internal/api/client.go
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/planforge/planforge/internal/model"
)

// Client talks to a remote plan repository server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Healthcheck checks if the repository server is reachable.
func (c *Client) Healthcheck() error {
	resp, err := c.httpClient.Get(c.baseURL + "/healthcheck")
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// List fetches the documents of a collection, optionally filtered.
func (c *Client) List(collection, filter string) ([]model.Document, error) {
	url := c.baseURL + "/api/v1/" + collection
	if filter != "" {
		url += "?filter=" + filter
	}
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list returned status %d", resp.StatusCode)
	}
	var docs []model.Document
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decoding list response: %w", err)
	}
	return docs, nil
}

// Import uploads a serialized component file into the given collection.
func (c *Client) Import(filePath, collection string) (model.Document, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Create multipart form
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	// Write the file in a goroutine so the request can stream it
	errCh := make(chan error, 1)
	go func() {
		defer pw.Close()
		defer writer.Close()

		part, err := writer.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			errCh <- fmt.Errorf("failed to create form file: %w", err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			errCh <- fmt.Errorf("failed to copy file: %w", err)
			return
		}
		errCh <- nil
	}()

	url := c.baseURL + "/api/v1/import?collection=" + collection
	req, err := http.NewRequest(http.MethodPost, url, pr)
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Document{}, fmt.Errorf("import request failed: %w", err)
	}
	defer resp.Body.Close()

	// Check goroutine error
	if writeErr := <-errCh; writeErr != nil {
		return model.Document{}, writeErr
	}

	if resp.StatusCode != http.StatusCreated {
		return model.Document{}, fmt.Errorf("import returned status %d", resp.StatusCode)
	}
	var doc model.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return model.Document{}, fmt.Errorf("decoding import response: %w", err)
	}
	return doc, nil
}
