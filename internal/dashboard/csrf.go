package dashboard

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	csrfCookie  = "tutordash_csrf"
	csrfField   = "_csrf"
	csrfContext = "dashboard.csrf"
)

// csrfToken returns the request's double submit token, issuing a cookie when
// the browser has none.
func (s *Server) csrfToken(c *gin.Context) string {
	if token := c.GetString(csrfContext); token != "" {
		return token
	}
	token, err := c.Cookie(csrfCookie)
	if err != nil || token == "" {
		token = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(csrfCookie, token, 0, "/", "", false, true)
	}
	c.Set(csrfContext, token)
	return token
}

// checkCSRF rejects posts whose form token does not match the cookie.
func (s *Server) checkCSRF(c *gin.Context) {
	if !s.csrf {
		c.Next()
		return
	}
	cookie, err := c.Cookie(csrfCookie)
	posted := c.PostForm(csrfField)
	if err != nil || cookie == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(posted)) != 1 {
		forbidden(c, "missing or invalid "+csrfField+" token")
		return
	}
	c.Next()
}

