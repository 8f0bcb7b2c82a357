package odin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"livestock-health/internal/platform/httpclient"
	"livestock-health/internal/ports/auth"
)

var (
	ErrOdinNotConfigured = errors.New("odin client not configured")
	ErrOdinUnauthorized  = errors.New("odin unauthorized")
	ErrOdinUpstream      = errors.New("odin upstream error")
)

// Config del cliente Odin.
// BaseURL y APIKey normalmente vendrán de env vars en el servicio que lo instancie.
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: nombre del header donde se manda la API key.
	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	// Timeout HTTP del cliente subyacente.
	Timeout time.Duration

	// Opcional: transporte custom (tests).
	Transport http.RoundTripper
}

type Client struct {
	hc           *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) *Client {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var hc *httpclient.Client
	if cfg.Transport != nil {
		hc = httpclient.NewWithTransport(timeout, cfg.Transport)
		hc.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	} else {
		var err error
		hc, err = httpclient.NewWithBaseURL(cfg.BaseURL, timeout)
		if err != nil {
			// BaseURL inválida equivale a no configurado; IsConfigured lo refleja.
			hc = httpclient.New(timeout)
		}
	}

	return &Client{
		hc:           hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.hc != nil && c.hc.BaseURL != "" && c.apiKey != ""
}

// VerifyToken llama a Odin para verificar un token y traer claims.
// ⚠️ Endpoint/payload: es un placeholder estable para el esqueleto.
// Cuando Odin esté listo, reemplazar verifyPath + request/response según contrato real.
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrOdinNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrOdinUnauthorized
	}

	// TODO(odin): ajustar path cuando exista contrato real.
	const verifyPath = "/v1/tokens/verify"

	headers := map[string]string{
		c.apiKeyHeader: c.apiKey,
		// Algunos IAM esperan el token en Authorization, aunque también vaya en body.
		"Authorization": "Bearer " + token,
	}

	// TODO(odin): ajustar fields reales. Esto es un formato típico.
	var out struct {
		UserID   string `json:"user_id"`
		Email    string `json:"email"`
		TenantID string `json:"tenant_id"`
	}

	err := c.hc.DoJSON(ctx, http.MethodPost, verifyPath, headers, map[string]string{"token": token}, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
				return auth.Claims{}, ErrOdinUnauthorized
			}
			return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrOdinUpstream, httpErr.StatusCode)
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrOdinUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, errors.New("odin response missing user_id")
	}

	return auth.Claims{
		UserID:   out.UserID,
		Email:    strings.TrimSpace(out.Email),
		TenantID: strings.TrimSpace(out.TenantID),
	}, nil
}
