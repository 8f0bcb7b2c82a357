package odin

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func newTestClient(rt roundTripperFunc) *Client {
	return NewClient(Config{
		BaseURL:   "http://odin.test",
		APIKey:    "test-key",
		Transport: rt,
	})
}

func TestVerifyToken_MapsClaims_AndSendsHeaders(t *testing.T) {
	var gotReq *http.Request
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		gotReq = req
		return jsonResponse(http.StatusOK, `{"user_id":"u-1","email":"vet@campo.ar","tenant_id":"t-9"}`), nil
	})

	claims, err := c.VerifyToken(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("VerifyToken error: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "vet@campo.ar" || claims.TenantID != "t-9" {
		t.Fatalf("unexpected claims: %#v", claims)
	}

	if gotReq.Header.Get("X-Api-Key") != "test-key" {
		t.Fatalf("expected api key header, got %q", gotReq.Header.Get("X-Api-Key"))
	}
	if gotReq.Header.Get("Authorization") != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotReq.Header.Get("Authorization"))
	}
	if gotReq.URL.Path != "/v1/tokens/verify" {
		t.Fatalf("unexpected path %q", gotReq.URL.Path)
	}
}

func TestVerifyToken_UnauthorizedStatus(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{}`), nil
	})

	_, err := c.VerifyToken(context.Background(), "tok-bad")
	if !errors.Is(err, ErrOdinUnauthorized) {
		t.Fatalf("expected ErrOdinUnauthorized, got %v", err)
	}
}

func TestVerifyToken_UpstreamError(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, ``), nil
	})

	_, err := c.VerifyToken(context.Background(), "tok-123")
	if !errors.Is(err, ErrOdinUpstream) {
		t.Fatalf("expected ErrOdinUpstream, got %v", err)
	}
}

func TestVerifyToken_MissingUserID(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"email":"vet@campo.ar"}`), nil
	})

	if _, err := c.VerifyToken(context.Background(), "tok-123"); err == nil {
		t.Fatalf("expected error on missing user_id")
	}
}

func TestVerifyToken_NotConfigured(t *testing.T) {
	c := NewClient(Config{})
	_, err := c.VerifyToken(context.Background(), "tok-123")
	if !errors.Is(err, ErrOdinNotConfigured) {
		t.Fatalf("expected ErrOdinNotConfigured, got %v", err)
	}
}
