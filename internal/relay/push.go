package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"wconnect/internal/domain"
)

// ErrPushRejected is returned when the push server answers without success.
var ErrPushRejected = errors.New("relay: push server registration rejected")

// PushClient registers clients with a push notification server.
type PushClient struct {
	Base string
	HTTP *http.Client
}

// NewPushClient returns a client for the push server at base.
func NewPushClient(base string, hc *http.Client) *PushClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &PushClient{Base: strings.TrimRight(base, "/"), HTTP: hc}
}

// Compile-time assertion that PushClient implements domain.PushRegistrar.
var _ domain.PushRegistrar = (*PushClient)(nil)

// Register announces reg so the server can wake this client.
func (c *PushClient) Register(ctx context.Context, reg domain.PushRegistration) error {
	var out struct {
		Success bool `json:"success"`
	}
	if err := c.post(ctx, "/new", reg, &out); err != nil {
		return err
	}
	if !out.Success {
		return ErrPushRejected
	}
	return nil
}

func (c *PushClient) post(ctx context.Context, path string, in any, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("push post %s: %s", path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
