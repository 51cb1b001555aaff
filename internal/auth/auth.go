// Package auth provides Google OAuth2 authentication for taskdawn.
//
// Each account carries its own client id, client secret and long-lived
// refresh token. Access tokens are minted on demand and never persisted.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/daviddao/taskdawn/internal/types"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gm "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	gt "google.golang.org/api/tasks/v1"
)

// ErrMissingCredentials is returned when an account lacks a client id,
// client secret or refresh token.
var ErrMissingCredentials = errors.New("incomplete google credentials")

// TasksScopes is the grant needed to read lists and create the sync list.
var TasksScopes = []string{gt.TasksScope}

// GmailScopes is the grant needed for the gmail transport.
var GmailScopes = []string{gm.GmailSendScope}

// OAuthConfig returns the OAuth2 client configuration for an account.
func OAuthConfig(creds types.GoogleCredentials, scopes ...string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       scopes,
	}
}

// HTTPClient exchanges the account's refresh token for an access token and
// returns a client that keeps it fresh. The first refresh happens eagerly so
// a revoked grant fails here rather than on the first API call.
func HTTPClient(ctx context.Context, cfg *oauth2.Config, refreshToken string) (*http.Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || refreshToken == "" {
		return nil, ErrMissingCredentials
	}

	ts := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, ts)), nil
}

// LoadTasksService returns an authenticated Google Tasks API service.
func LoadTasksService(ctx context.Context, creds types.GoogleCredentials) (*gt.Service, error) {
	client, err := HTTPClient(ctx, OAuthConfig(creds, TasksScopes...), creds.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("get oauth client: %w", err)
	}
	return gt.NewService(ctx, option.WithHTTPClient(client))
}

// LoadGmailService returns an authenticated Gmail API service.
func LoadGmailService(ctx context.Context, creds types.GoogleCredentials) (*gm.Service, error) {
	client, err := HTTPClient(ctx, OAuthConfig(creds, GmailScopes...), creds.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("get oauth client: %w", err)
	}
	return gm.NewService(ctx, option.WithHTTPClient(client))
}
