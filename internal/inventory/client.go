// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package inventory talks to the local Ollama runtime to report which models
// are already present and to pull missing ones. It is the "local inventory"
// collaborator of the configuration surface.
package inventory

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultBaseURL is the stock Ollama listen address.
const DefaultBaseURL = "http://localhost:11434"

// Model is one locally known model.
type Model struct {
	// ID is the model tag, e.g. "llama3:8b".
	ID string `json:"id"`
	// Downloaded reports whether the model's weights are present locally.
	// Everything the tags endpoint lists is present.
	Downloaded bool `json:"downloaded"`
}

// PullProgress is one status line of a streaming model download.
type PullProgress struct {
	Status    string `json:"status"`
	Total     int64  `json:"total,omitempty"`
	Completed int64  `json:"completed,omitempty"`
}

// Capability reports whether the local runtime is reachable and what it has
// ready.
type Capability struct {
	Reachable   bool     `json:"reachable"`
	Version     string   `json:"version,omitempty"`
	ReadyModels []string `json:"ready_models,omitempty"`
}

// Client queries one Ollama server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the given base URL, defaulting to the stock
// Ollama address when empty.
func NewClient(baseURL string) *Client {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// ListLocalModels returns the models Ollama has on disk.
func (c *Client) ListLocalModels(ctx context.Context) ([]Model, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach local runtime: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("local runtime returned status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var models []Model
	gjson.GetBytes(body, "models").ForEach(func(_ gjson.Result, item gjson.Result) bool {
		name := item.Get("name").String()
		if name == "" {
			name = item.Get("model").String()
		}
		if name != "" {
			models = append(models, Model{ID: name, Downloaded: true})
		}
		return true
	})
	return models, nil
}

// Probe checks whether the runtime is reachable and which models are ready.
// An unreachable runtime is not an error; the capability just reports it.
func (c *Client) Probe(ctx context.Context) Capability {
	capability := Capability{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/version", nil)
	if err != nil {
		return capability
	}
	resp, err := c.client.Do(req)
	if err != nil {
		log.WithError(err).Debug("Local runtime probe failed")
		return capability
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return capability
	}

	capability.Reachable = true
	capability.Version = gjson.GetBytes(body, "version").String()

	models, err := c.ListLocalModels(ctx)
	if err != nil {
		return capability
	}
	for _, m := range models {
		if m.Downloaded {
			capability.ReadyModels = append(capability.ReadyModels, m.ID)
		}
	}
	return capability
}

// Pull downloads a model through the runtime, invoking progress for every
// status line of the streamed response. Pull blocks until the download ends;
// cancellation goes through ctx.
func (c *Client) Pull(ctx context.Context, model string, progress func(PullProgress)) error {
	if model == "" {
		return fmt.Errorf("model name is required")
	}

	payload, err := sjson.SetBytes([]byte(`{}`), "model", model)
	if err != nil {
		return fmt.Errorf("failed to build pull request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pull", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Downloads outlive the client's default timeout.
	hc := &http.Client{Transport: c.client.Transport}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to start pull: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("pull rejected with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if errMsg := gjson.GetBytes(line, "error").String(); errMsg != "" {
			return fmt.Errorf("pull failed: %s", errMsg)
		}
		if progress != nil {
			progress(PullProgress{
				Status:    gjson.GetBytes(line, "status").String(),
				Total:     gjson.GetBytes(line, "total").Int(),
				Completed: gjson.GetBytes(line, "completed").Int(),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("pull stream interrupted: %w", err)
	}
	return nil
}
