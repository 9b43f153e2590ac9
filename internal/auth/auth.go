package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/abrezinsky/councilvote/internal/models"
)

const (
	CookieName    = "councilvote_session"
	SessionExpiry = 12 * time.Hour
)

// Words for generated admin passwords
var councilWords = []string{
	"ballot", "council", "campus", "quorum", "motion",
	"tally", "civic", "senate", "debate", "caucus",
	"poster", "mentor", "agenda", "gavel", "podium",
	"locker", "prefect", "honor", "delegate",
}

// UserStore is the part of the repository sessions depend on
type UserStore interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
	SetSessionToken(ctx context.Context, id int, token string) error
}

type session struct {
	userID int
	expiry time.Time
}

// Auth tracks staff and admin sessions. Each user is bound to the device of
// their most recent login; older tokens stop validating.
type Auth struct {
	store    UserStore
	sessions map[string]session
	mu       sync.RWMutex
	now      func() time.Time
}

// New creates a new Auth instance backed by store
func New(store UserStore) *Auth {
	return &Auth{
		store:    store,
		sessions: make(map[string]session),
		now:      time.Now,
	}
}

// GeneratePassword creates a random 3-word password
func GeneratePassword() string {
	words := make([]string, 3)
	for i := range words {
		words[i] = councilWords[randomInt(len(councilWords))]
	}
	return strings.Join(words, "-")
}

// HashPassword returns a bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Login opens a session for an authenticated user and binds the user to it
func (a *Auth) Login(ctx context.Context, user *models.User) (string, error) {
	token := generateToken()
	if err := a.store.SetSessionToken(ctx, user.ID, token); err != nil {
		return "", err
	}

	a.mu.Lock()
	a.sessions[token] = session{userID: user.ID, expiry: a.now().Add(SessionExpiry)}
	a.mu.Unlock()

	return token, nil
}

// Logout invalidates a session token and releases the device binding
func (a *Auth) Logout(ctx context.Context, token string) {
	a.mu.Lock()
	s, ok := a.sessions[token]
	delete(a.sessions, token)
	a.mu.Unlock()
	if !ok {
		return
	}

	if u, err := a.store.GetUser(ctx, s.userID); err == nil && u.ActiveSessionToken == token {
		a.store.SetSessionToken(ctx, s.userID, "")
	}
}

// ValidateSession returns the user holding token, if the session is live and
// still the user's active binding
func (a *Auth) ValidateSession(ctx context.Context, token string) (*models.User, bool) {
	a.mu.RLock()
	s, exists := a.sessions[token]
	a.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if a.now().After(s.expiry) {
		a.mu.Lock()
		delete(a.sessions, token)
		a.mu.Unlock()
		return nil, false
	}

	u, err := a.store.GetUser(ctx, s.userID)
	if err != nil || u.ActiveSessionToken != token {
		a.mu.Lock()
		delete(a.sessions, token)
		a.mu.Unlock()
		return nil, false
	}
	return u, true
}

// GetSessionFromRequest extracts and validates the session from a request
func (a *Auth) GetSessionFromRequest(r *http.Request) (*models.User, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	return a.ValidateSession(r.Context(), cookie.Value)
}

// RequireRole middleware for API endpoints. Missing sessions get 401 and
// sessions with another role get 403.
func (a *Auth) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := a.GetSessionFromRequest(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized - please log in")
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "Forbidden - insufficient role")
		})
	}
}

// RequirePage middleware for HTML pages (redirects to loginPath)
func (a *Auth) RequirePage(loginPath string, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, ok := a.GetSessionFromRequest(r); ok {
				for _, role := range roles {
					if user.Role == role {
						next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
						return
					}
				}
			}
			http.Redirect(w, r, loginPath, http.StatusFound)
		})
	}
}

// RequireStaff accepts STAFF and ADMIN sessions
func (a *Auth) RequireStaff(next http.Handler) http.Handler {
	return a.RequireRole(models.RoleStaff, models.RoleAdmin)(next)
}

// RequireAdmin accepts ADMIN sessions only
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return a.RequireRole(models.RoleAdmin)(next)
}

type ctxKey struct{}

// WithUser stores the session user in ctx
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the session user set by RequireRole
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*models.User)
	return u, ok && u != nil
}

// SetSessionCookie sets the session cookie on the response
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionExpiry.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"code":"` + code + `","error":"` + msg + `"}`))
}

// generateToken creates a random session token
func generateToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// randomInt returns a random int in [0, max)
func randomInt(max int) int {
	bytes := make([]byte, 1)
	rand.Read(bytes)
	return int(bytes[0]) % max
}
