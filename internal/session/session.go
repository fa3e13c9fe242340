// Package session configures the cookie session that carries flash messages
// and comment form state between a POST and the redirected GET.
package session

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

// CookieName is the name of the session cookie.
const CookieName = "storyfront_session"

// Lifetime bounds how long form state survives; it only has to outlive a redirect.
const Lifetime = time.Hour

// New creates a session manager backed by an in-process store.
func New(isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = memstore.NewWithCleanupInterval(10 * time.Minute)

	sm.Lifetime = Lifetime
	sm.Cookie.Name = CookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	return sm
}
