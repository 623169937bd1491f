package cookie

import (
	"net/http"
	"strings"
	"time"

	"cinema-booking/internal/pkg/config"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookieName  = "access_token"
	RefreshTokenCookieName = "refresh_token"

	bearerPrefix = "Bearer "
)

type Tokens struct {
	Access     string
	Refresh    string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func SetTokenCookies(c *gin.Context, cfg config.CookieConfig, tokens Tokens) {
	c.SetSameSite(getSameSite(cfg.SameSite))
	setHTTPOnly(c, cfg, AccessTokenCookieName, tokens.Access, int(tokens.AccessTTL.Seconds()))
	setHTTPOnly(c, cfg, RefreshTokenCookieName, tokens.Refresh, int(tokens.RefreshTTL.Seconds()))
}

func ClearTokenCookies(c *gin.Context, cfg config.CookieConfig) {
	c.SetSameSite(getSameSite(cfg.SameSite))
	setHTTPOnly(c, cfg, AccessTokenCookieName, "", -1)
	setHTTPOnly(c, cfg, RefreshTokenCookieName, "", -1)
}

func setHTTPOnly(c *gin.Context, cfg config.CookieConfig, name, value string, maxAge int) {
	c.SetCookie(name, value, maxAge, "/", cfg.Domain, cfg.Secure, true)
}

// GetAccessToken reads the access token cookie, falling back to an
// Authorization bearer header for scanner devices without a cookie jar.
func GetAccessToken(c *gin.Context) string {
	if token, err := c.Cookie(AccessTokenCookieName); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	}
	return ""
}

func GetRefreshToken(c *gin.Context) string {
	token, _ := c.Cookie(RefreshTokenCookieName)
	return token
}

func getSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
