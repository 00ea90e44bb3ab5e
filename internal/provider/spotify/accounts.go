package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sharetube/jamroom/internal/provider"
)

const DefaultAccountsURL = "https://accounts.spotify.com"

var scopes = []string{
	"playlist-read-private",
	"app-remote-control",
	"user-read-currently-playing",
	"user-read-playback-position",
	"user-read-private",
	"user-modify-playback-state",
	"user-read-playback-state",
}

type AccountsConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	HTTPClient   *http.Client
}

// Accounts talks to the Spotify accounts service: authorization code flow
// and token refresh.
type Accounts struct {
	baseURL      string
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
	now          func() time.Time
}

type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Scope        string    `json:"scope"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
}

// Token converts the credentials into the form a room stores.
func (c Credentials) Token() provider.Token {
	return provider.Token{
		Type:          provider.TypeSpotify,
		Authorization: c.TokenType + " " + c.AccessToken,
		ExpiresAt:     c.ExpiresAt,
		RefreshToken:  c.RefreshToken,
	}
}

type accountsError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func NewAccounts(cfg *AccountsConfig) *Accounts {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultAccountsURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Accounts{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

func (a *Accounts) AuthorizationURL(state string) string {
	return a.baseURL + "/authorize?" + url.Values{
		"response_type": {"code"},
		"client_id":     {a.clientID},
		"scope":         {strings.Join(scopes, " ")},
		"redirect_uri":  {a.redirectURI},
		"state":         {state},
	}.Encode()
}

func (a *Accounts) ExchangeCode(ctx context.Context, code string) (Credentials, error) {
	return a.token(ctx, url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {a.redirectURI},
	})
}

func (a *Accounts) RefreshToken(ctx context.Context, old provider.Token) (provider.Token, error) {
	if old.RefreshToken == "" {
		return provider.Token{}, errors.New("no refresh token")
	}

	creds, err := a.token(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {old.RefreshToken},
	})
	if err != nil {
		return provider.Token{}, err
	}

	// Spotify may omit the refresh token, in which case the old one stays valid.
	if creds.RefreshToken == "" {
		creds.RefreshToken = old.RefreshToken
	}

	tok := creds.Token()
	if old.Type != "" {
		tok.Type = old.Type
	}

	return tok, nil
}

func (a *Accounts) token(ctx context.Context, form url.Values) (Credentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(a.clientID+":"+a.clientSecret)))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %w", provider.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e accountsError
		_ = json.NewDecoder(resp.Body).Decode(&e)
		message := e.ErrorDescription
		if message == "" {
			message = e.Error
		}
		if message == "" {
			message = resp.Status
		}
		return Credentials{}, &provider.StatusError{StatusCode: resp.StatusCode, Message: message}
	}

	var creds Credentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return Credentials{}, fmt.Errorf("%w: failed to decode token: %w", provider.ErrProvider, err)
	}
	creds.ExpiresAt = a.now().Add(time.Duration(creds.ExpiresIn) * time.Second)

	return creds, nil
}
