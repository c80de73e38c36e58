// Package update performs a low-cost "new version available" check against
// the GitHub releases API, cached for 24 hours.
package update

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	semver "github.com/blang/semver/v4"
)

const (
	repoLatestURL = "https://api.github.com/repos/confscan/confscan/releases/latest"
	cacheFileName = "update.json"
	checkInterval = 24 * time.Hour
)

type checkCache struct {
	LastChecked time.Time `json:"last_checked"`
	Latest      string    `json:"latest"`
}

func configDir() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "confscan")
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "confscan")
}

func loadCache() (checkCache, error) {
	var c checkCache
	dir := configDir()
	if dir == "" {
		return c, errors.New("no config dir")
	}
	b, err := os.ReadFile(filepath.Join(dir, cacheFileName))
	if err != nil {
		return c, err
	}
	_ = json.Unmarshal(b, &c)
	return c, nil
}

func saveCache(c checkCache) {
	dir := configDir()
	if dir == "" {
		return
	}
	_ = os.MkdirAll(dir, 0o755)
	b, _ := json.MarshalIndent(c, "", "  ")
	_ = os.WriteFile(filepath.Join(dir, cacheFileName), b, 0o644)
}

func latestVersionOnline() (string, error) {
	client := &http.Client{Timeout: 2 * time.Second}
	req, _ := http.NewRequest(http.MethodGet, repoLatestURL, nil)
	req.Header.Set("User-Agent", "confscan-updater")
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var obj struct {
		TagName string `json:"tag_name"`
		Name    string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return "", err
	}
	if obj.TagName != "" {
		return obj.TagName, nil
	}
	return obj.Name, nil
}

// Check returns (latest, isNewer, error). The network is touched at most once
// per checkInterval and never in CI or when noNetwork is set.
func Check(current string, noNetwork bool) (string, bool, error) {
	if os.Getenv("CI") != "" || noNetwork {
		return "", false, nil
	}
	c, _ := loadCache()
	latest := c.Latest
	if latest == "" || time.Since(c.LastChecked) > checkInterval {
		v, err := latestVersionOnline()
		if err != nil {
			return latest, false, nil
		}
		latest = strings.TrimPrefix(strings.TrimSpace(v), "v")
		saveCache(checkCache{LastChecked: time.Now(), Latest: latest})
	}
	return latest, IsNewer(latest, current), nil
}

// IsNewer reports whether candidate is a strictly newer semantic version than
// current. Unparseable versions never report newer.
func IsNewer(candidate, current string) bool {
	cand, err := semver.ParseTolerant(candidate)
	if err != nil {
		return false
	}
	cur, err := semver.ParseTolerant(current)
	if err != nil {
		return false
	}
	return cand.GT(cur)
}
