package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"fleetview/internal/config"
	domainSession "fleetview/internal/domain/session"
)

const (
	SessionKey  = "session"
	UserIDKey   = "userID"
	UsernameKey = "username"

	loginPath = "/login"
	homePath  = "/"
)

// SessionResolver maps a cookie/bearer token to a live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domainSession.Session, error)
}

// SessionGuard gates every route on (hasToken, isPublicRoute):
//
//	no token, protected route -> send to login, preserving the intended path
//	no token, public route    -> allow
//	token, public route       -> send to home (no point showing login again)
//	token, protected route    -> resolve the session and allow
//
// Browser clients get real redirects; API clients get a 401 carrying the
// redirect target. A token that fails to resolve counts as no token.
func SessionGuard(cfg *config.Config, sessions SessionResolver, publicPaths ...string) gin.HandlerFunc {
	public := make(map[string]bool, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = true
	}

	return func(c *gin.Context) {
		token := extractToken(c, cfg.Session.CookieName)

		var sess *domainSession.Session
		if token != "" {
			resolved, err := sessions.Resolve(c.Request.Context(), token)
			if err != nil {
				clearSessionCookie(c, cfg)
				token = ""
			} else {
				sess = resolved
			}
		}

		isPublic := public[c.FullPath()] || public[c.Request.URL.Path]

		if sess == nil {
			if isPublic {
				c.Next()
				return
			}
			redirectToLogin(c)
			return
		}

		if isPublic {
			c.Redirect(http.StatusSeeOther, homePath)
			c.Abort()
			return
		}

		c.Set(SessionKey, sess)
		c.Set(UserIDKey, sess.UserID)
		c.Set(UsernameKey, sess.Username)
		c.Next()
	}
}

// GetSession retrieves the resolved session from the Gin context.
func GetSession(c *gin.Context) *domainSession.Session {
	if value, exists := c.Get(SessionKey); exists {
		if sess, ok := value.(*domainSession.Session); ok {
			return sess
		}
	}
	return nil
}

func extractToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}

func redirectToLogin(c *gin.Context) {
	target := loginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())

	if strings.Contains(c.GetHeader("Accept"), "text/html") {
		c.Redirect(http.StatusSeeOther, target)
		c.Abort()
		return
	}

	c.JSON(http.StatusUnauthorized, gin.H{
		"success":  false,
		"message":  "Authentication required",
		"redirect": target,
	})
	c.Abort()
}

func clearSessionCookie(c *gin.Context, cfg *config.Config) {
	c.SetCookie(cfg.Session.CookieName, "", -1, "/", "", cfg.Session.Secure, true)
}
