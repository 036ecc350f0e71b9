package steam

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"compatdb-app/internal/domain/games"
	"compatdb-app/internal/domain/users"
)

const (
	defaultAPIBase   = "https://api.steampowered.com"
	defaultStoreBase = "https://store.steampowered.com"

	// Presenting as a Mac browser keeps the storefront from serving the
	// "not available on your platform" variant of the page.
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// catalinaBlockMarker appears in the storefront page of titles Steam
	// flags as incompatible with macOS 10.15 and later.
	catalinaBlockMarker = "1055-ISJM-8568"

	releaseDateLayout = "Jan 2, 2006"
)

// Client talks to the Steam Web API and the storefront. All calls are
// plain request/response with a bounded timeout; retry and pacing
// policy belong to the caller.
type Client struct {
	apiKey    string
	apiBase   string
	storeBase string
	http      *http.Client
	logDir    string
	log       *zap.Logger
}

// NewClient builds a client for the public Steam endpoints. When logDir
// is non-empty every raw response body is also dropped there as a
// debugging aid; logging failures never fail the call.
func NewClient(apiKey, logDir string, log *zap.Logger) *Client {
	return &Client{
		apiKey:    apiKey,
		apiBase:   defaultAPIBase,
		storeBase: defaultStoreBase,
		http:      &http.Client{Timeout: 30 * time.Second},
		logDir:    logDir,
		log:       log,
	}
}

// GetNewApps pages the full Steam app list starting after lastAppID and
// returns up to limit entries with IDs strictly greater than the
// cursor, ascending.
func (c *Client) GetNewApps(lastAppID int64, limit int) ([]AppListEntry, error) {
	var entries []AppListEntry
	cursor := lastAppID
	for len(entries) < limit {
		params := url.Values{
			"last_appid":          {strconv.FormatInt(cursor, 10)},
			"max_results":         {strconv.Itoa(limit - len(entries))},
			"include_games":       {"true"},
			"include_dlc":         {"false"},
			"include_software":    {"false"},
			"include_videos":      {"false"},
			"include_hardware":    {"false"},
		}
		body, err := c.get(c.apiURL("IStoreService", "GetAppList", "v1", params))
		if err != nil {
			return nil, err
		}

		var wrapper appListWrapper
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return nil, fmt.Errorf("decoding app list: %w", err)
		}
		for _, app := range wrapper.Response.Apps {
			if app.AppID > cursor && len(entries) < limit {
				entries = append(entries, app)
			}
		}
		if !wrapper.Response.HaveMoreResults || len(wrapper.Response.Apps) == 0 {
			break
		}
		// A cursor that fails to advance would page forever.
		if wrapper.Response.LastAppID <= cursor {
			break
		}
		cursor = wrapper.Response.LastAppID
	}
	return entries, nil
}

// GetAppDetails fetches the storefront details for one app. A nil
// result with a nil error means Steam no longer serves details for the
// ID (delisted, region-locked, or never a store page); callers treat
// that as "checked, nothing learned".
func (c *Client) GetAppDetails(steamID int64) (*games.Detail, error) {
	params := url.Values{"appids": {strconv.FormatInt(steamID, 10)}}
	body, err := c.get(c.storeBase + "/api/appdetails?" + params.Encode())
	if err != nil {
		return nil, err
	}

	var wrapper map[string]appDetailsEntry
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("decoding app details for %d: %w", steamID, err)
	}
	entry, ok := wrapper[strconv.FormatInt(steamID, 10)]
	if !ok || !entry.Success || entry.Data == nil {
		return nil, nil
	}

	detail := &games.Detail{
		Title:     entry.Data.Name,
		Platforms: entry.Data.Platforms,
	}
	if raw := entry.Data.ReleaseDate.Date; raw != "" {
		when, err := time.Parse(releaseDateLayout, raw)
		if err != nil {
			// "Coming soon", bare years and localized strings all show
			// up here. The date just stays unknown.
			c.log.Debug("unparseable release date",
				zap.Int64("steam_id", steamID), zap.String("date", raw))
		} else {
			detail.ReleaseDate = &when
		}
	}
	return detail, nil
}

// CatalinaCompatible reports whether the storefront page for the app
// lacks the 32-bit-only warning Steam shows on titles that never got a
// 64-bit build.
func (c *Client) CatalinaCompatible(steamID int64) (bool, error) {
	body, err := c.get(c.storeBase + "/app/" + strconv.FormatInt(steamID, 10))
	if err != nil {
		return false, err
	}
	return !strings.Contains(string(body), catalinaBlockMarker), nil
}

// OwnedGames returns the Steam IDs of every game in the user's library.
// Private profiles come back as an empty response, not an error.
func (c *Client) OwnedGames(steamUserID int64) ([]int64, error) {
	params := url.Values{
		"steamid":                   {strconv.FormatInt(steamUserID, 10)},
		"include_played_free_games": {"true"},
	}
	body, err := c.get(c.apiURL("IPlayerService", "GetOwnedGames", "v1", params))
	if err != nil {
		return nil, err
	}

	var wrapper ownedGamesWrapper
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("decoding owned games for %d: %w", steamUserID, err)
	}
	ids := make([]int64, 0, len(wrapper.Response.Games))
	for _, g := range wrapper.Response.Games {
		ids = append(ids, g.AppID)
	}
	return ids, nil
}

// PlayerSummary fetches the user's public profile, or nil when Steam
// doesn't know the ID.
func (c *Client) PlayerSummary(steamUserID int64) (*users.Summary, error) {
	params := url.Values{"steamids": {strconv.FormatInt(steamUserID, 10)}}
	body, err := c.get(c.apiURL("ISteamUser", "GetPlayerSummaries", "v2", params))
	if err != nil {
		return nil, err
	}

	var wrapper playerSummariesWrapper
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("decoding player summary for %d: %w", steamUserID, err)
	}
	if len(wrapper.Response.Players) == 0 {
		return nil, nil
	}
	player := wrapper.Response.Players[0]
	steamID, err := strconv.ParseInt(player.SteamID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad steam id %q in player summary: %w", player.SteamID, err)
	}
	return &users.Summary{
		SteamID:    steamID,
		Nickname:   player.PersonaName,
		AvatarHash: player.AvatarHash,
	}, nil
}

func (c *Client) apiURL(iface, method, version string, params url.Values) string {
	params.Set("key", c.apiKey)
	return fmt.Sprintf("%s/%s/%s/%s/?%s", c.apiBase, iface, method, version, params.Encode())
}

func (c *Client) get(rawURL string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building steam request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling steam: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading steam response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("steam returned %d for %s", resp.StatusCode, redactKey(rawURL, c.apiKey))
	}
	c.dumpResponse(rawURL, body)
	return body, nil
}

// dumpResponse writes the raw body to the debug log directory. Best
// effort only.
func (c *Client) dumpResponse(rawURL string, body []byte) {
	if c.logDir == "" {
		return
	}
	name := fmt.Sprintf("%d-%s.log", time.Now().UnixNano(), sanitizeFilename(rawURL))
	if err := os.WriteFile(filepath.Join(c.logDir, name), body, 0o644); err != nil {
		c.log.Warn("writing steam response log", zap.Error(err))
	}
}

func sanitizeFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "request"
	}
	clean := strings.Trim(strings.ReplaceAll(u.Path, "/", "-"), "-")
	if clean == "" {
		return "request"
	}
	return clean
}

func redactKey(rawURL, key string) string {
	if key == "" {
		return rawURL
	}
	return strings.ReplaceAll(rawURL, key, "REDACTED")
}
