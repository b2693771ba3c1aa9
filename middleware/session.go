package middleware

import (
	"net/http"

	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/navigation"
	"github.com/yashrajoria/storefront/store"

	"github.com/gin-gonic/gin"
)

// SessionKey holds the models.Session of the signed-in user on the gin context.
const SessionKey = "session"

// SessionReader is the read side of store.SessionStore.
type SessionReader interface {
	Current() (models.Session, bool)
	State() store.SessionState
}

// RequireSession gates the tab screens. While logged out it answers 401
// pointing at the auth navigator.
func RequireSession(sessions SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessions.Current()
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"kind":      apperrors.KindUnauthorized,
				"code":      http.StatusUnauthorized,
				"message":   apperrors.ErrNotSignedIn.Message,
				"navigator": navigation.AuthNavigator,
			})
			return
		}
		c.Set(SessionKey, session)
		c.Next()
	}
}

// RequireGuest gates the auth screens. While logged in it answers 409
// pointing at the tab navigator.
func RequireGuest(sessions SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions.State() == store.LoggedIn {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"kind":      apperrors.KindConflict,
				"code":      http.StatusConflict,
				"message":   apperrors.ErrAlreadySignedIn.Message,
				"navigator": navigation.TabsNavigator,
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireSession.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok || !session.User.IsAdmin() {
			c.AbortWithStatusJSON(apperrors.ErrForbidden.Code, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// GetSession returns the session stored by RequireSession.
func GetSession(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return models.Session{}, false
	}
	session, ok := v.(models.Session)
	return session, ok
}
