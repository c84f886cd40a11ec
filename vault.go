package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// SecretKind identifies the shape of a vault entry.
type SecretKind string

const (
	SecretKindCredential SecretKind = "credential"
	SecretKindCreditCard SecretKind = "creditcard"
	SecretKindNote       SecretKind = "note"
)

// kind ids are part of the wire contract
const (
	secretKindIDCredential = 1
	secretKindIDCreditCard = 2
	secretKindIDNote       = 3
)

// SecretContent is the union payload for the three secret kinds. Only the
// fields for the entry's kind are populated.
type SecretContent struct {
	KindID int        `json:"kindid"`
	Kind   SecretKind `json:"kind"`

	// credential
	UserName string `json:"userName,omitempty"`
	Password string `json:"password,omitempty"`
	URL      string `json:"url,omitempty"`

	// creditcard
	CardType   string `json:"cardtype,omitempty"`
	CardNumber string `json:"cardnumber,omitempty"`
	Expiration string `json:"expiration,omitempty"`
	CVV        string `json:"cvv,omitempty"`

	// note
	Title string `json:"title,omitempty"`
	Note  string `json:"content,omitempty"`
}

// NewCredentialContent builds a credential entry.
func NewCredentialContent(userName, password, siteURL string) SecretContent {
	return SecretContent{
		KindID:   secretKindIDCredential,
		Kind:     SecretKindCredential,
		UserName: userName,
		Password: password,
		URL:      siteURL,
	}
}

// NewCreditCardContent builds a credit card entry.
func NewCreditCardContent(cardType, cardNumber, expiration, cvv string) SecretContent {
	return SecretContent{
		KindID:     secretKindIDCreditCard,
		Kind:       SecretKindCreditCard,
		CardType:   cardType,
		CardNumber: cardNumber,
		Expiration: expiration,
		CVV:        cvv,
	}
}

// NewNoteContent builds a note entry.
func NewNoteContent(title, note string) SecretContent {
	return SecretContent{
		KindID: secretKindIDNote,
		Kind:   SecretKindNote,
		Title:  title,
		Note:   note,
	}
}

// Secret is a stored vault entry as returned by the backend.
type Secret struct {
	ID      int64         `json:"id"`
	Content SecretContent `json:"content"`
}

// SecretsClient talks to the vault's secret endpoints. Encryption and
// decryption happen server-side; the client only moves content and the
// bearer header along.
type SecretsClient struct {
	baseURL         string
	client          *http.Client
	tokens          TokenSource
	encryptPassword string
	logger          Logger
}

// SecretsClientOption customizes SecretsClient construction.
type SecretsClientOption func(*SecretsClient)

// WithSecretsHTTPClient swaps the underlying client.
func WithSecretsHTTPClient(client *http.Client) SecretsClientOption {
	return func(c *SecretsClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithSecretsLogger overrides the default logger.
func WithSecretsLogger(logger Logger) SecretsClientOption {
	return func(c *SecretsClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEncryptPassword sets the server-side encryption password sent with
// every call. The backend treats "default" as its standard keyslot.
func WithEncryptPassword(password string) SecretsClientOption {
	return func(c *SecretsClient) {
		if password != "" {
			c.encryptPassword = password
		}
	}
}

// NewSecretsClient returns a client rooted at baseURL, e.g.
// "http://localhost:8080/api", sourcing bearer tokens from tokens.
func NewSecretsClient(baseURL string, tokens TokenSource, opts ...SecretsClientOption) *SecretsClient {
	c := &SecretsClient{
		baseURL:         strings.TrimRight(baseURL, "/"),
		client:          &http.Client{Timeout: DefaultGatewayTimeout},
		tokens:          tokens,
		encryptPassword: "default",
		logger:          defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// Put stores a secret for the authenticated user.
func (c *SecretsClient) Put(ctx context.Context, content SecretContent) error {
	payload := map[string]any{
		"content":         content,
		"encryptPassword": c.encryptPassword,
	}

	return c.do(ctx, http.MethodPut, "/secrets/me", payload, nil, "Failed to save secret")
}

// List returns all secrets for the authenticated user.
func (c *SecretsClient) List(ctx context.Context) ([]Secret, error) {
	path := "/secrets/me?encryptPassword=" + url.QueryEscape(c.encryptPassword)

	var secrets []Secret
	if err := c.do(ctx, http.MethodGet, path, nil, &secrets, "Failed to get secrets"); err != nil {
		return nil, err
	}
	return secrets, nil
}

func (c *SecretsClient) do(ctx context.Context, method, path string, body, out any, fallback string) error {
	header, ok := c.tokens.AuthHeader()
	if !ok {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"reason": "secrets calls require an authenticated session",
		})
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not encode secret payload")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not build request")
	}

	req.Header.Set("Authorization", header)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("secrets transport failure %s %s: %v", method, path, err)
		return NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := fallback
		var rejection struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&rejection); err == nil && rejection.Message != "" {
			message = rejection.Message
		}
		return NewGatewayError(resp.StatusCode, message)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewGatewayError(resp.StatusCode, fallback)
	}

	return nil
}
