package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"animehost/internal/models"
	"animehost/internal/session"
)

const sessionContextKey = "current_session"

// SessionLoader resolves the session cookie, if any, and attaches the
// session to the request context. It never blocks a request; public pages
// use it so views can show who is logged in.
func SessionLoader(store session.Store, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err == nil && token != "" {
			if sess, err := store.Get(c.Request.Context(), token); err == nil {
				c.Set(sessionContextKey, sess)
			}
		}
		c.Next()
	}
}

// AuthRequired redirects anonymous requests to the login page, carrying the
// original path so the user lands back where they were headed.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentSession(c); !ok {
			target := "/login?redirect=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentSession returns the session attached by SessionLoader.
func CurrentSession(c *gin.Context) (models.Session, bool) {
	val, exists := c.Get(sessionContextKey)
	if !exists {
		return models.Session{}, false
	}
	sess, ok := val.(models.Session)
	return sess, ok
}
