// Package plcdir submits signed genesis operations to a PLC directory.
package plcdir

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/plchunter/plchunter/pkg/plc"
)

// DefaultDirectory is the public PLC directory.
const DefaultDirectory = "https://plc.directory"

// Client talks to a PLC directory over its HTTP API.
type Client struct {
	Base string
	HTTP *http.Client
}

// New returns a client for the given directory base URL.
func New(base string) *Client {
	if base == "" {
		base = DefaultDirectory
	}
	return &Client{
		Base: base,
		HTTP: http.DefaultClient,
	}
}

// Submit registers a signed genesis operation under its DID. The directory
// re-derives the identifier from the operation, so a rejected submission
// means the operation (not just the request) is invalid.
func (c *Client) Submit(ctx context.Context, did string, op *plc.SignedOperation) error {
	body, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("plcdir: encode operation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+"/"+did, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("plcdir: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("plcdir: submit %s: %w", did, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("plcdir: submit %s: %s: %s", did, resp.Status, bytes.TrimSpace(msg))
	}
	return nil
}

// WebURL formats the human-readable link to a DID's document.
func WebURL(did string) string {
	return "https://web.plc.directory/did/" + did
}
