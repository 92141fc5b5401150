// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultOllamaURL is the local Ollama server address.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaBackend implements Backend against a local Ollama server.
type OllamaBackend struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Complete sends a non-streaming generate request and returns the model
// text. A 404 from the server means the model is not installed.
func (o *OllamaBackend) Complete(ctx context.Context, prompt string) (string, error) {
	base := o.BaseURL
	if base == "" {
		base = DefaultOllamaURL
	}

	payload, err := json.Marshal(ollamaRequest{Model: o.Model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("model '%s' not found. Run 'ollama pull %s' to install it", o.Model, o.Model)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var oResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if oResp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", oResp.Error)
	}
	return oResp.Response, nil
}
