package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"animehost/internal/models"
	"animehost/internal/session"
)

const testCookie = "animehost_session"

func newAuthRouter(store session.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SessionLoader(store, testCookie))
	router.GET("/public", func(c *gin.Context) {
		if sess, ok := CurrentSession(c); ok {
			c.String(http.StatusOK, "hello "+sess.Username)
			return
		}
		c.String(http.StatusOK, "hello stranger")
	})
	router.GET("/upload", AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, "upload form")
	})
	return router
}

func TestAuthRequiredRedirectsAnonymous(t *testing.T) {
	router := newAuthRouter(session.NewMemoryStore("secret", time.Hour))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/upload", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login?redirect=%2Fupload", rec.Header().Get("Location"))
}

func TestAuthRequiredPassesLoggedInUser(t *testing.T) {
	store := session.NewMemoryStore("secret", time.Hour)
	token, err := store.Create(context.Background(), models.User{ID: "u1", Email: "miko@example.com", Username: "miko"})
	require.NoError(t, err)

	router := newAuthRouter(store)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/upload", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "upload form", rec.Body.String())
}

func TestSessionLoaderToleratesBadCookie(t *testing.T) {
	router := newAuthRouter(session.NewMemoryStore("secret", time.Hour))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "tampered"})
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hello stranger", rec.Body.String())
}

func TestSessionLoaderAttachesSession(t *testing.T) {
	store := session.NewMemoryStore("secret", time.Hour)
	token, err := store.Create(context.Background(), models.User{ID: "u1", Email: "miko@example.com", Username: "miko"})
	require.NoError(t, err)

	router := newAuthRouter(store)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hello miko", rec.Body.String())
}
