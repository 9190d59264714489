package gcs

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenEndpoint  = "https://oauth2.googleapis.com/token"
	metadataURL    = "http://metadata.google.internal/computeMetadata/v1/instance/service-accounts/default/token"
	storageScope   = "https://www.googleapis.com/auth/devstorage.read_write"
	refreshMargin  = time.Minute
	assertionTTL   = time.Hour
	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

// cachedTokens reuses an access token until it is close to expiry.
type cachedTokens struct {
	mu     sync.Mutex
	token  string
	expiry time.Time
	now    func() time.Time
	fetch  func(ctx context.Context) (*http.Request, error)
	client *http.Client
}

func (t *cachedTokens) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.token != "" && t.expiry.Sub(now) > refreshMargin {
		return t.token, nil
	}
	req, err := t.fetch(ctx)
	if err != nil {
		return "", err
	}
	token, ttl, err := exchange(t.client, req)
	if err != nil {
		return "", err
	}
	t.token = token
	t.expiry = now.Add(ttl)
	return token, nil
}

func exchange(client *http.Client, req *http.Request) (string, time.Duration, error) {
	resp, err := client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return "", 0, statusError("token request", resp)
	}
	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", 0, fmt.Errorf("decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", 0, errors.New("token response without access_token")
	}
	return body.AccessToken, time.Duration(body.ExpiresIn) * time.Second, nil
}

type serviceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// newServiceAccountTokens trades an RS256-signed assertion for an access
// token, following the OAuth2 JWT bearer flow.
func newServiceAccountTokens(client *http.Client, credentials string) (*cachedTokens, error) {
	var sa serviceAccount
	if err := json.Unmarshal([]byte(credentials), &sa); err != nil {
		return nil, fmt.Errorf("parsing service account credentials: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return nil, errors.New("service account credentials need client_email and private_key")
	}
	if sa.TokenURI == "" {
		sa.TokenURI = tokenEndpoint
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parsing service account key: %w", err)
	}

	tokens := &cachedTokens{now: time.Now, client: client}
	tokens.fetch = func(ctx context.Context) (*http.Request, error) {
		assertion, err := signAssertion(sa, key, tokens.now())
		if err != nil {
			return nil, err
		}
		form := url.Values{"grant_type": {jwtBearerGrant}, "assertion": {assertion}}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, sa.TokenURI, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}
	return tokens, nil
}

func signAssertion(sa serviceAccount, key *rsa.PrivateKey, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   sa.ClientEmail,
		"scope": storageScope,
		"aud":   sa.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}

// newMetadataTokens asks the GCE/Cloud Run metadata server for the attached
// service account's token.
func newMetadataTokens(client *http.Client) *cachedTokens {
	return &cachedTokens{
		now:    time.Now,
		client: client,
		fetch: func(ctx context.Context) (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataURL, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Metadata-Flavor", "Google")
			return req, nil
		},
	}
}
