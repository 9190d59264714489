package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cabanadebrincar/cabana-backend/pkg/config"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
)

const (
	apiBase           = "https://storage.googleapis.com/storage/v1"
	uploadBase        = "https://storage.googleapis.com/upload/storage/v1"
	defaultPublicBase = "https://storage.googleapis.com"
	requestTimeout    = 30 * time.Second
	pingTimeout       = 5 * time.Second
)

var errNotInitialized = errors.New("gcs client not initialized")

type tokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Client stores testimonial photos in a Cloud Storage bucket through the JSON
// API. Objects are written under prefix and served from publicBase.
type Client struct {
	httpClient *http.Client
	tokens     tokenProvider
	bucket     string
	prefix     string
	publicBase string
	apiBase    string
	uploadBase string
}

func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}
	httpClient := &http.Client{Timeout: requestTimeout}

	credentials := gcp.CredentialsJSON
	if credentials == "" && gcp.ApplicationCredentials != "" {
		raw, err := os.ReadFile(gcp.ApplicationCredentials)
		if err != nil {
			return nil, fmt.Errorf("reading credentials file: %w", err)
		}
		credentials = string(raw)
	}

	var tokens tokenProvider
	source := "metadata"
	if credentials != "" {
		sa, err := newServiceAccountTokens(httpClient, credentials)
		if err != nil {
			return nil, err
		}
		tokens = sa
		source = "service_account"
	} else {
		tokens = newMetadataTokens(httpClient)
	}

	publicBase := strings.TrimRight(cfg.PublicBase, "/")
	if publicBase == "" {
		publicBase = defaultPublicBase
	}
	client := &Client{
		httpClient: httpClient,
		tokens:     tokens,
		bucket:     cfg.BucketName,
		prefix:     strings.Trim(cfg.Prefix, "/"),
		publicBase: publicBase,
		apiBase:    apiBase,
		uploadBase: uploadBase,
	}
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"bucket":      client.bucket,
			"prefix":      client.prefix,
			"credentials": source,
		}), "gcs client initialized")
	}
	return client, nil
}

func (c *Client) objectName(name string) string {
	name = strings.TrimLeft(name, "/")
	if c.prefix == "" {
		return name
	}
	return c.prefix + "/" + name
}

// PublicURL is the address the site embeds for object.
func (c *Client) PublicURL(object string) string {
	parts := strings.Split(object, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return c.publicBase + "/" + c.bucket + "/" + strings.Join(parts, "/")
}

// ObjectFromURL recovers the object name from a URL built by PublicURL.
func (c *Client) ObjectFromURL(raw string) (string, bool) {
	rest, ok := strings.CutPrefix(raw, c.publicBase+"/"+c.bucket+"/")
	if !ok {
		return "", false
	}
	object, err := url.PathUnescape(rest)
	if err != nil || object == "" {
		return "", false
	}
	return object, true
}

// Upload writes body under the configured prefix and returns its public URL.
func (c *Client) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if c == nil || c.tokens == nil {
		return "", errNotInitialized
	}
	if name == "" {
		return "", errors.New("object name is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	object := c.objectName(name)

	query := url.Values{"uploadType": {"media"}, "name": {object}}
	endpoint := fmt.Sprintf("%s/b/%s/o?%s", c.uploadBase, url.PathEscape(c.bucket), query.Encode())
	resp, err := c.do(ctx, http.MethodPost, endpoint, contentType, body)
	if err != nil {
		return "", fmt.Errorf("gcs upload %s: %w", object, err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return "", statusError("upload "+object, resp)
	}
	return c.PublicURL(object), nil
}

// DeleteObject removes object. A missing object is not an error.
func (c *Client) DeleteObject(ctx context.Context, object string) error {
	if c == nil || c.tokens == nil {
		return errNotInitialized
	}
	endpoint := fmt.Sprintf("%s/b/%s/o/%s", c.apiBase, url.PathEscape(c.bucket), url.PathEscape(object))
	resp, err := c.do(ctx, http.MethodDelete, endpoint, "", nil)
	if err != nil {
		return fmt.Errorf("gcs delete %s: %w", object, err)
	}
	defer drain(resp)
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	}
	return statusError("delete "+object, resp)
}

// Ping reads the bucket metadata, which needs storage.buckets.get.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.tokens == nil {
		return errNotInitialized
	}
	if c.bucket == "" {
		return errors.New("gcs bucket not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/b/%s?fields=name", c.apiBase, url.PathEscape(c.bucket))
	resp, err := c.do(ctx, http.MethodGet, endpoint, "", nil)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return statusError("bucket check", resp)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint, contentType string, body io.Reader) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.httpClient.Do(req)
}

func statusError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if msg := strings.TrimSpace(string(snippet)); msg != "" {
		return fmt.Errorf("gcs %s failed: %s: %s", op, resp.Status, msg)
	}
	return fmt.Errorf("gcs %s failed: %s", op, resp.Status)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
