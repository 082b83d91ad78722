// Client-credentials token exchange
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pldiff/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// AuthOptions configures an [Authenticator]. Zero values select the defaults.
type AuthOptions struct {
	TokenURL   string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Authenticator exchanges a client id and secret for an access token and keeps the [TokenStore] populated.
type Authenticator struct {
	tokenURL   string
	httpClient *http.Client
	store      *TokenStore
	logger     *log.Logger

	mu           sync.Mutex
	clientID     string
	clientSecret string
	epoch        uint64
}

// NewAuthenticator creates an authenticator that refreshes store whenever its credential expires.
func NewAuthenticator(store *TokenStore, opts AuthOptions) *Authenticator {
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	a := &Authenticator{
		tokenURL:   opts.TokenURL,
		httpClient: opts.HTTPClient,
		store:      store,
		logger:     shared.WithLogger(opts.Logger, "component", "auth"),
	}
	store.OnExpire(a.Refresh)
	return a
}

// Acquire performs a client-credentials exchange and installs the resulting credential.
//
// The credentials are remembered for later refreshes. A later Acquire supersedes an earlier one:
// if the credentials change while a request is in flight, the stale result is returned but not stored.
func (a *Authenticator) Acquire(ctx context.Context, clientID, clientSecret string) (*oauth2.Token, error) {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: client id and client secret are required", shared.ErrMissingCredentials)
	}

	a.mu.Lock()
	a.clientID, a.clientSecret = clientID, clientSecret
	a.epoch++
	epoch := a.epoch
	a.mu.Unlock()

	return a.run(ctx, clientID, clientSecret, epoch)
}

// Refresh repeats the exchange with the most recently acquired credentials.
func (a *Authenticator) Refresh(ctx context.Context) error {
	a.mu.Lock()
	clientID, clientSecret, epoch := a.clientID, a.clientSecret, a.epoch
	a.mu.Unlock()

	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("%w: nothing to refresh", shared.ErrMissingCredentials)
	}

	_, err := a.run(ctx, clientID, clientSecret, epoch)
	return err
}

func (a *Authenticator) run(ctx context.Context, clientID, clientSecret string, epoch uint64) (*oauth2.Token, error) {
	tok, ttl, err := a.exchange(ctx, clientID, clientSecret)
	if err != nil {
		a.logger.Error("token request failed", "error", err)
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if epoch != a.epoch {
		a.logger.Debug("discarding superseded token")
		return tok, nil
	}

	a.store.Set(tok, ttl)
	a.logger.Info("token acquired", "expires_in", ttl)
	return tok, nil
}

// exchange posts grant_type, client_id and client_secret as a form body and classifies the outcome.
func (a *Authenticator) exchange(ctx context.Context, clientID, clientSecret string) (*oauth2.Token, time.Duration, error) {
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     a.tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	rt := &tokenTransport{base: a.httpClient.Transport}
	client := *a.httpClient
	client.Transport = rt

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &client)
	tok, err := conf.Token(ctx)
	switch {
	case rt.status != 0 && rt.status != http.StatusOK && rt.status != http.StatusBadRequest:
		return nil, 0, shared.UnexpectedStatus(rt.status)
	case err != nil:
		return nil, 0, classify(err)
	}

	if tok.TokenType == "" {
		return nil, 0, shared.MalformedResponse(errors.New("missing token_type"))
	}

	seconds, err := expiresIn(tok.Extra("expires_in"))
	if err != nil {
		return nil, 0, shared.MalformedResponse(err)
	}

	return tok, time.Duration(seconds) * time.Second, nil
}

func classify(err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		status := 0
		if rErr.Response != nil {
			status = rErr.Response.StatusCode
		}

		switch status {
		case http.StatusBadRequest:
			return shared.InvalidCredentials(errorMessage(rErr))
		case http.StatusOK:
			return shared.MalformedResponse(err)
		default:
			return shared.UnexpectedStatus(status)
		}
	}

	var uErr *url.Error
	if errors.As(err, &uErr) {
		return shared.AuthTransportError(err)
	}

	return shared.MalformedResponse(err)
}

// errorMessage prefers error_description over error, reading the raw body when oauth2 could not.
func errorMessage(rErr *oauth2.RetrieveError) string {
	code, desc := rErr.ErrorCode, rErr.ErrorDescription
	if code == "" && desc == "" {
		var body struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		if json.Unmarshal(rErr.Body, &body) == nil {
			code, desc = body.Error, body.ErrorDescription
		}
	}
	if desc != "" {
		return desc
	}
	return code
}

// expiresIn reads the token lifetime in seconds from the raw response field.
func expiresIn(v any) (int64, error) {
	var seconds int64

	switch n := v.(type) {
	case float64:
		seconds = int64(min(n, math.MaxInt32))
	case int64:
		seconds = n
	case int:
		seconds = int64(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("expires_in: %w", err)
		}
		seconds = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("expires_in: %w", err)
		}
		seconds = i
	case nil:
		return 0, errors.New("missing expires_in")
	default:
		return 0, fmt.Errorf("expires_in has unexpected type %T", v)
	}

	if seconds <= 0 {
		return 0, fmt.Errorf("expires_in must be positive, got %d", seconds)
	}
	return min(seconds, maxExpiresIn), nil
}

// maxExpiresIn bounds the lifetime so it converts to a positive [time.Duration].
const maxExpiresIn = math.MaxInt32

// tokenTransport records the token endpoint's status and marks a JSON body as JSON
// whatever Content-Type the endpoint sent, since oauth2 picks its parser from that header.
type tokenTransport struct {
	base   http.RoundTripper
	status int
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	t.status = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if json.Valid(body) {
		resp.Header.Set("Content-Type", "application/json")
	}
	return resp, nil
}
