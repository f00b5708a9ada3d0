package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"animehost/internal/service"
)

func (h HandlerSet) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", h.view(c, gin.H{
		"Title":    "Login",
		"Redirect": c.Query("redirect"),
	}))
}

func (h HandlerSet) Login(c *gin.Context) {
	token, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	})
	if err != nil {
		msg := "Login failed. Please try again."
		if errors.Is(err, service.ErrInvalidCredentials) {
			msg = err.Error()
		} else {
			h.log.Error().Err(err).Msg("login failed")
		}
		c.HTML(http.StatusOK, "login.html", h.view(c, gin.H{
			"Title":    "Login",
			"Error":    msg,
			"Redirect": c.PostForm("redirect"),
		}))
		return
	}

	h.setSessionCookie(c, token)

	c.Redirect(http.StatusFound, safeRedirect(c.PostForm("redirect")))
}

func (h HandlerSet) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", h.view(c, gin.H{
		"Title": "Register",
	}))
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	token, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Username:        c.PostForm("username"),
		Email:           c.PostForm("email"),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirmPassword"),
	})
	if err != nil {
		msg := "Failed to register. Please try again."
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			msg = err.Error()
		case errors.Is(err, service.ErrEmailTaken):
			msg = "That email is already registered."
		default:
			h.log.Error().Err(err).Msg("registration failed")
		}
		c.HTML(http.StatusOK, "register.html", h.view(c, gin.H{
			"Title": "Register",
			"Error": msg,
		}))
		return
	}

	h.setSessionCookie(c, token)
	c.Redirect(http.StatusFound, "/")
}

func (h HandlerSet) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cfg.Session.CookieName); err == nil {
		h.auth.Logout(c.Request.Context(), token)
	}
	c.SetCookie(h.cfg.Session.CookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// safeRedirect keeps post-login redirects on this site. Only local absolute
// paths pass; "//host" and "/\host" are protocol-relative URLs to browsers,
// so anything but a plain "/" prefix falls back to the gallery.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") ||
		strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}

func (h HandlerSet) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(h.cfg.Session.TTL.Seconds())
	c.SetCookie(h.cfg.Session.CookieName, token, maxAge, "/", "", false, true)
}
