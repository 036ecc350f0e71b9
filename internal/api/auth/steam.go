package auth

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"compatdb-app/config"
	"compatdb-app/internal/app/http/middleware"
	"compatdb-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// steamOpenIDEndpoint is Steam's OpenID 2.0 provider. Steam never
// moved to OIDC, so the flow here is the older spec: redirect out,
// then verify the signed return with a check_authentication round
// trip.
const steamOpenIDEndpoint = "https://steamcommunity.com/openid/login"

const sessionTTL = 24 * time.Hour

// ProfileSource fetches a Steam user's public profile. Satisfied by
// the steam client.
type ProfileSource interface {
	PlayerSummary(steamUserID int64) (*users.Summary, error)
}

// Handler runs the Steam login flow and session issuance.
type Handler struct {
	users    *users.Repository
	profiles ProfileSource
	log      *zap.Logger

	// endpoint and client are swappable for tests.
	endpoint string
	client   *http.Client
}

func NewHandler(repo *users.Repository, profiles ProfileSource, log *zap.Logger) *Handler {
	return &Handler{
		users:    repo,
		profiles: profiles,
		log:      log,
		endpoint: steamOpenIDEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SteamStart handles GET /auth/steam: redirect the browser to Steam's
// login page. identifier_select tells Steam to pick the identity; the
// claimed id comes back in the callback.
func (h *Handler) SteamStart(c *gin.Context) {
	params := url.Values{
		"openid.ns":         {"http://specs.openid.net/auth/2.0"},
		"openid.mode":       {"checkid_setup"},
		"openid.return_to":  {config.BASE_URL + "/auth/steam/callback"},
		"openid.realm":      {config.BASE_URL},
		"openid.identity":   {"http://specs.openid.net/auth/2.0/identifier_select"},
		"openid.claimed_id": {"http://specs.openid.net/auth/2.0/identifier_select"},
	}
	c.Redirect(http.StatusFound, h.endpoint+"?"+params.Encode())
}

// SteamCallback handles GET /auth/steam/callback: verify the signed
// assertion with Steam, then find or create the local user and hand
// out the session cookie.
func (h *Handler) SteamCallback(c *gin.Context) {
	if c.Query("openid.mode") != "id_res" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login was cancelled"})
		return
	}

	valid, err := h.checkAuthentication(c.Request.URL.Query())
	if err != nil {
		h.log.Error("steam openid verification", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not verify login with Steam"})
		return
	}
	if !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login assertion"})
		return
	}

	steamID, err := steamIDFromClaimedID(c.Query("openid.claimed_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login assertion"})
		return
	}

	user, err := h.findOrCreateUser(steamID)
	if err != nil {
		h.log.Error("resolving user after login", zap.Int64("steam_id", steamID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	tokenString, err := issueAppJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.SetCookie(middleware.SessionCookie, tokenString, int(sessionTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// Logout clears the session cookie.
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// checkAuthentication replays the assertion back to Steam with the
// mode swapped to check_authentication, per OpenID 2.0 direct
// verification. Steam answers is_valid:true only for assertions it
// just signed.
func (h *Handler) checkAuthentication(assertion url.Values) (bool, error) {
	params := url.Values{}
	for key, values := range assertion {
		if strings.HasPrefix(key, "openid.") {
			params[key] = values
		}
	}
	params.Set("openid.mode", "check_authentication")

	resp, err := h.client.PostForm(h.endpoint, params)
	if err != nil {
		return false, fmt.Errorf("calling steam openid: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("reading steam openid response: %w", err)
	}
	return strings.Contains(string(body), "is_valid:true"), nil
}

// steamIDFromClaimedID pulls the numeric Steam ID out of the claimed
// identity URL, e.g. https://steamcommunity.com/openid/id/76561197970839256.
func steamIDFromClaimedID(claimedID string) (int64, error) {
	idx := strings.LastIndex(claimedID, "/")
	if idx < 0 || idx == len(claimedID)-1 {
		return 0, fmt.Errorf("malformed claimed id %q", claimedID)
	}
	steamID, err := strconv.ParseInt(claimedID[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed claimed id %q: %w", claimedID, err)
	}
	return steamID, nil
}

// findOrCreateUser returns the local account for a verified Steam ID,
// registering it on first login. Either way last_auth is bumped.
func (h *Handler) findOrCreateUser(steamID int64) (*users.User, error) {
	user, err := h.users.BySteamID(steamID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		summary, err := h.profiles.PlayerSummary(steamID)
		if err != nil {
			return nil, err
		}
		if summary == nil {
			return nil, fmt.Errorf("steam has no profile for %d", steamID)
		}
		return h.users.Create(*summary)
	}
	if err := h.users.BumpAuthDate(user); err != nil {
		return nil, err
	}
	return user, nil
}

func issueAppJWT(user *users.User) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"steam_id": user.SteamUserID,
		"nickname": user.Nickname,
		"exp":      time.Now().Add(sessionTTL).Unix(),
	})
	return t.SignedString([]byte(config.JWT_SECRET))
}
