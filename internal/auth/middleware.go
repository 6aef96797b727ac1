package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/models"
)

const (
	sessionCookie = "session"
	identityKey   = "identity"
)

// Identity is the acting user of a request: either a loaded User or anonymous.
type Identity struct {
	user *models.User
}

func Anonymous() Identity { return Identity{} }

func Authenticated(u *models.User) Identity { return Identity{user: u} }

func (i Identity) User() (*models.User, bool) { return i.user, i.user != nil }

func SetSession(c *gin.Context, token string) {
	c.SetCookie(sessionCookie, token, int(sessionTTL/time.Second), "/", "", false, true)
}

func ClearSession(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
}

// CurrentUser resolves the session cookie to an Identity once per request.
// A missing, expired or otherwise broken token yields Anonymous.
func CurrentUser(db *gorm.DB, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := Anonymous()
		if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
			if claims, err := ParseToken(token, secret); err == nil {
				var u models.User
				if err := db.First(&u, claims.UserID).Error; err == nil {
					identity = Authenticated(&u)
				}
			}
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

func IdentityFrom(c *gin.Context) Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(Identity); ok {
			return identity
		}
	}
	return Anonymous()
}

// CurrentFrom is a template-friendly shortcut: the acting user or nil.
func CurrentFrom(c *gin.Context) *models.User {
	u, _ := IdentityFrom(c).User()
	return u
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFrom(c).User(); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
