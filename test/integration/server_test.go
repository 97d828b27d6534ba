package integration

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fluxchat/fluxchat/internal/server"
	"github.com/fluxchat/fluxchat/test/testhelpers"
)

// TestHealthEndpointIntegration verifies the health check over a real server.
func TestHealthEndpointIntegration(t *testing.T) {
	srv := server.NewServer(server.NewConfig())
	testServer := httptest.NewServer(srv.Routes())
	defer testServer.Close()

	resp := testhelpers.MakeRequest(t, http.MethodGet, testServer.URL+"/")
	defer func() { _ = resp.Body.Close() }()

	testhelpers.AssertStatusCode(t, resp, http.StatusOK)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if string(body) != "FluxChat server is running!" {
		t.Errorf("Unexpected health response: %q", body)
	}
}

// TestTestPageIntegration verifies the browser test page is reachable.
func TestTestPageIntegration(t *testing.T) {
	srv := server.NewServer(server.NewConfig())
	testServer := httptest.NewServer(srv.Routes())
	defer testServer.Close()

	resp := testhelpers.MakeRequest(t, http.MethodGet, testServer.URL+"/test")
	defer func() { _ = resp.Body.Close() }()

	testhelpers.AssertStatusCode(t, resp, http.StatusOK)

	if contentType := resp.Header.Get("Content-Type"); contentType != "text/html" {
		t.Errorf("Expected content type text/html, got %s", contentType)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if !strings.Contains(string(body), "FluxChat Room Test") {
		t.Error("Test page missing expected title")
	}
}

// TestServerTimeouts verifies that CreateServer applies the production
// timeout settings.
func TestServerTimeouts(t *testing.T) {
	srv := server.NewServer(server.NewConfig())
	httpServer := server.CreateServer(":0", srv.Routes())

	if httpServer.ReadTimeout != 15*time.Second {
		t.Errorf("Unexpected ReadTimeout: %v", httpServer.ReadTimeout)
	}
	if httpServer.WriteTimeout != 15*time.Second {
		t.Errorf("Unexpected WriteTimeout: %v", httpServer.WriteTimeout)
	}
	if httpServer.IdleTimeout != 60*time.Second {
		t.Errorf("Unexpected IdleTimeout: %v", httpServer.IdleTimeout)
	}
}
