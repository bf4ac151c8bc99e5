// Package api is the CLI's HTTP client for the Talkflo server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/common"
)

const defaultTimeout = 2 * time.Minute

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore

	// stream shares the transport of http but has no overall timeout, so
	// long-lived event streams are not cut off.
	stream *http.Client
}

// New returns a client for baseURL. A nil httpClient gets a default one.
func New(baseURL string, tokens TokenStore, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		stream:  &http.Client{Transport: httpClient.Transport},
	}
}

// HTTPClient is shared with the direct uploader.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// do sends in as JSON and decodes the response into out when both are set.
func (c *Client) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	resp, err := c.send(ctx, method, path, in, authed)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// send performs the request and returns a 2xx response. An authenticated
// request that comes back 401 is retried once after a token refresh.
func (c *Client) send(ctx context.Context, method, path string, in any, authed bool) (*http.Response, error) {
	return c.sendWith(ctx, c.http, method, path, in, authed)
}

func (c *Client) sendWith(ctx context.Context, hc *http.Client, method, path string, in any, authed bool) (*http.Response, error) {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = b
	}

	var pair models.TokenPair
	if authed {
		p, err := c.tokens.Load()
		if err != nil {
			return nil, err
		}
		pair = p
	}

	resp, err := c.attempt(ctx, hc, method, path, body, pair.AccessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && authed && pair.RefreshToken != "" {
		drain(resp)
		refreshed, rerr := c.refresh(ctx, pair.RefreshToken)
		if rerr != nil {
			return nil, rerr
		}
		resp, err = c.attempt(ctx, hc, method, path, body, refreshed.AccessToken)
		if err != nil {
			return nil, err
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer drain(resp)
		return nil, readError(resp)
	}
	return resp, nil
}

func (c *Client) attempt(ctx context.Context, hc *http.Client, method, path string, body []byte, token string) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	var pair models.TokenPair
	err := c.do(ctx, http.MethodPost, "/api/auth/refresh", map[string]string{"refreshToken": refreshToken}, &pair, false)
	if err != nil {
		if errors.Is(err, common.ErrorNotAuthenticated) {
			_ = c.tokens.Clear()
		}
		return models.TokenPair{}, err
	}
	if err := c.tokens.Save(pair); err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
