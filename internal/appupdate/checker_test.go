package appupdate

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNormalizeReleaseVersion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "valid with prefix", input: "v1.2.3", want: "v1.2.3"},
		{name: "valid without prefix", input: "1.2.3", want: "v1.2.3"},
		{name: "short form", input: "v1.2", want: "v1.2.0"},
		{name: "pre-release skipped", input: "v1.2.3-rc.1", want: ""},
		{name: "dev skipped", input: "dev", want: ""},
		{name: "empty skipped", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeReleaseVersion(tt.input)
			if got != tt.want {
				t.Fatalf("normalizeReleaseVersion(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUpgradeHint(t *testing.T) {
	t.Setenv("GOBIN", "/opt/gobin")
	t.Setenv("GOPATH", "/srv/gopath")

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "home go bin", path: "/Users/test/go/bin/stackarea", want: goInstallHint},
		{name: "GOBIN", path: "/opt/gobin/stackarea", want: goInstallHint},
		{name: "GOPATH bin", path: "/srv/gopath/bin/stackarea", want: goInstallHint},
		{name: "system", path: "/usr/local/bin/stackarea", want: releasesHint},
		{name: "unknown", path: "", want: releasesHint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := upgradeHint(tt.path); got != tt.want {
				t.Fatalf("upgradeHint(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCheckUpdateAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"v1.3.0"}`))
	}))
	defer server.Close()

	result, err := Check(context.Background(), CheckOptions{
		CurrentVersion:   "v1.2.0",
		ExecutablePath:   "/home/test/go/bin/stackarea",
		LatestReleaseURL: server.URL,
		HTTPClient:       server.Client(),
		Timeout:          time.Second,
	})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !result.UpdateAvailable {
		t.Fatal("expected UpdateAvailable=true")
	}
	if result.LatestVersion != "v1.3.0" {
		t.Fatalf("LatestVersion = %q, want v1.3.0", result.LatestVersion)
	}
	if result.UpgradeHint != goInstallHint {
		t.Fatalf("UpgradeHint = %q", result.UpgradeHint)
	}
}

func TestCheckNoUpdate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v1.2.0"}`))
	}))
	defer server.Close()

	result, err := Check(context.Background(), CheckOptions{
		CurrentVersion:   "1.2.0",
		ExecutablePath:   "/usr/local/bin/stackarea",
		LatestReleaseURL: server.URL,
		HTTPClient:       server.Client(),
	})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.UpdateAvailable {
		t.Fatal("expected UpdateAvailable=false")
	}
}

func TestCheckSkipsDevVersion(t *testing.T) {
	result, err := Check(context.Background(), CheckOptions{
		CurrentVersion:   "dev",
		LatestReleaseURL: "http://127.0.0.1:0/does-not-matter",
	})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.UpdateAvailable || result.CurrentVersion != "" {
		t.Fatalf("result = %+v, want no update for dev build", result)
	}
}

func TestCheckLatestReleaseHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := Check(context.Background(), CheckOptions{
		CurrentVersion:   "v1.2.0",
		LatestReleaseURL: server.URL,
		HTTPClient:       server.Client(),
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestCheckRejectsPrereleaseTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v2.0.0-beta.1"}`))
	}))
	defer server.Close()

	_, err := Check(context.Background(), CheckOptions{
		CurrentVersion:   "v1.2.0",
		LatestReleaseURL: server.URL,
		HTTPClient:       server.Client(),
	})
	if err == nil || !strings.Contains(err.Error(), "not a stable semver") {
		t.Fatalf("Check() error = %v, want semver error", err)
	}
}

type captureTransport struct {
	lastReq *http.Request
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.lastReq = req
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"tag_name":"v1.3.0"}`)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func TestCheckSendsGitHubHeaders(t *testing.T) {
	transport := &captureTransport{}

	_, err := Check(context.Background(), CheckOptions{
		CurrentVersion: "v1.2.0",
		HTTPClient:     &http.Client{Transport: transport},
	})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if transport.lastReq == nil {
		t.Fatal("expected request to be captured")
	}
	if got := transport.lastReq.URL.String(); got != defaultLatestReleaseURL {
		t.Fatalf("URL = %q, want %q", got, defaultLatestReleaseURL)
	}
	if got := transport.lastReq.Header.Get("Accept"); got != "application/vnd.github+json" {
		t.Fatalf("Accept header = %q", got)
	}
	if got := transport.lastReq.Header.Get("User-Agent"); got != "stackarea/v1.2.0" {
		t.Fatalf("User-Agent header = %q, want stackarea/v1.2.0", got)
	}
}
