package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/xfce-go/xsmd/internal/config"
)

// ipcClient is a thin HTTP client dialing the running daemon's Unix
// socket, used by every CLI subcommand except `run` and `history`.
type ipcClient struct {
	http *http.Client
}

func newIPCClient() *ipcClient {
	path := resolveSocketPath()
	return &ipcClient{
		http: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", path)
				},
			},
		},
	}
}

func resolveSocketPath() string {
	if socketPath != "" {
		return socketPath
	}
	cfg := config.LoadFromEnvironment(mustLoadConfig())
	return cfg.IPCSocketPath
}

func (c *ipcClient) get(path string, out interface{}) error {
	resp, err := c.http.Get("http://unix" + path)
	if err != nil {
		return fmt.Errorf("connect to xsmd: %w (is it running?)", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *ipcClient) post(path string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.http.Post("http://unix"+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("connect to xsmd: %w (is it running?)", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
		return fmt.Errorf("xsmd returned %s", resp.Status)
	}
	return fmt.Errorf("xsmd: %s", apiErr.Error)
}
