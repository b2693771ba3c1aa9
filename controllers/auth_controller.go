package controllers

import (
	"net/http"
	"strings"

	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/navigation"
	"github.com/yashrajoria/storefront/services"
	"github.com/yashrajoria/storefront/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	auth     services.AuthService
	sessions *store.SessionStore
	cart     *store.CartStore
	nav      *navigation.Navigator
	logger   *zap.Logger
}

func NewAuthController(auth services.AuthService, sessions *store.SessionStore, cart *store.CartStore, nav *navigation.Navigator, logger *zap.Logger) *AuthController {
	return &AuthController{auth: auth, sessions: sessions, cart: cart, nav: nav, logger: logger}
}

func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.ErrMissingFields)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		fail(c, apperrors.ErrMissingFields)
		return
	}

	if err := ac.auth.Register(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}

	_ = ac.nav.Navigate(navigation.Login)
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Account created. Sign in to continue.",
		"navigation": ac.nav.State(),
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		fail(c, apperrors.ErrMissingFields)
		return
	}
	creds.Email = strings.TrimSpace(creds.Email)

	session, err := ac.sessions.Login(c.Request.Context(), creds)
	if err != nil {
		fail(c, err)
		return
	}

	ac.logger.Info("Signed in", zap.Int64("user_id", session.User.ID), zap.String("type", string(session.User.Type)))
	c.JSON(http.StatusOK, gin.H{
		"user":       session.User,
		"navigation": ac.nav.State(),
	})
}

// Logout drops the session first so the cleared cart is not persisted.
func (ac *AuthController) Logout(c *gin.Context) {
	ac.sessions.Logout()
	ac.cart.Clear()

	c.JSON(http.StatusOK, gin.H{
		"message":    "Signed out",
		"navigation": ac.nav.State(),
	})
}
