// Package appupdate asks GitHub whether a newer stable release exists.
package appupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/mod/semver"
)

const (
	defaultLatestReleaseURL = "https://api.github.com/repos/janekbaraniewski/stackarea/releases/latest"
	defaultRequestTimeout   = 1500 * time.Millisecond

	goInstallHint = "go install github.com/janekbaraniewski/stackarea/cmd/stackarea@latest"
	releasesHint  = "https://github.com/janekbaraniewski/stackarea/releases/latest"
)

type CheckOptions struct {
	CurrentVersion   string
	ExecutablePath   string
	LatestReleaseURL string
	Timeout          time.Duration
	HTTPClient       *http.Client
}

type Result struct {
	UpdateAvailable bool
	CurrentVersion  string
	LatestVersion   string
	UpgradeHint     string
}

// Check compares the running version with the latest GitHub release.
// Development and pre-release builds are never reported as outdated.
func Check(ctx context.Context, opts CheckOptions) (Result, error) {
	current := normalizeReleaseVersion(opts.CurrentVersion)
	result := Result{
		CurrentVersion: current,
		UpgradeHint:    upgradeHint(resolveExecutablePath(opts.ExecutablePath)),
	}
	if current == "" {
		return result, nil
	}

	latest, err := fetchLatestReleaseVersion(ctx, opts, current)
	if err != nil {
		return result, err
	}

	result.LatestVersion = latest
	result.UpdateAvailable = semver.Compare(latest, current) > 0
	log.WithFields(log.Fields{
		"current": current,
		"latest":  latest,
	}).Debug("release check")
	return result, nil
}

func fetchLatestReleaseVersion(ctx context.Context, opts CheckOptions, current string) (string, error) {
	latestURL := strings.TrimSpace(opts.LatestReleaseURL)
	if latestURL == "" {
		latestURL = defaultLatestReleaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, latestURL, nil)
	if err != nil {
		return "", fmt.Errorf("build latest release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "stackarea/"+current)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch latest release: HTTP %d", resp.StatusCode)
	}

	var payload struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode latest release payload: %w", err)
	}

	latest := normalizeReleaseVersion(payload.TagName)
	if latest == "" {
		return "", fmt.Errorf("latest release tag is not a stable semver: %q", payload.TagName)
	}
	return latest, nil
}

func resolveExecutablePath(explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return filepath.ToSlash(filepath.Clean(p))
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.ToSlash(filepath.Clean(exe))
}

// upgradeHint suggests go install for binaries under a Go bin directory and
// the release page otherwise.
func upgradeHint(executablePath string) string {
	dir := filepath.ToSlash(filepath.Dir(executablePath))
	if strings.HasSuffix(dir, "/go/bin") {
		return goInstallHint
	}
	if gobin := os.Getenv("GOBIN"); gobin != "" && dir == filepath.ToSlash(filepath.Clean(gobin)) {
		return goInstallHint
	}
	for _, gp := range filepath.SplitList(os.Getenv("GOPATH")) {
		if gp != "" && dir == filepath.ToSlash(filepath.Join(gp, "bin")) {
			return goInstallHint
		}
	}
	return releasesHint
}

func normalizeReleaseVersion(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) || semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return ""
	}
	return semver.Canonical(v)
}
