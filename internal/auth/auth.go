package auth

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	SessionName = "myr_admin"

	keyAuthenticated = "authenticated"
	keyUsername      = "username"
	keyLoginAt       = "loginAt"
)

// Principal is the proof of an admin login handed to guarded handlers.
type Principal struct {
	Username   string
	LoggedInAt time.Time
}

// Authenticator checks the single configured admin credential.
type Authenticator struct {
	username string
	hash     []byte
}

func NewAuthenticator(username, bcryptHash string) (*Authenticator, error) {
	if _, err := bcrypt.Cost([]byte(bcryptHash)); err != nil {
		return nil, errors.Wrap(err, "ADMIN_PASSWORD_HASH is not a bcrypt hash")
	}
	return &Authenticator{username: username, hash: []byte(bcryptHash)}, nil
}

// Verify always runs the hash comparison so a wrong username and a wrong
// password cost the same.
func (a *Authenticator) Verify(username, password string) bool {
	hashErr := bcrypt.CompareHashAndPassword(a.hash, []byte(password))
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	return userOK && hashErr == nil
}

// Sessions reads and writes the admin flag on the server-side session.
type Sessions struct {
	store sessions.Store
}

func NewSessions(store sessions.Store) *Sessions {
	return &Sessions{store: store}
}

// Login marks the session as authenticated, issuing a fresh session id.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, username string) error {
	session, _ := s.store.Get(r, SessionName)
	// drop any id carried in from before the login
	session.ID = ""
	session.IsNew = true
	session.Values[keyAuthenticated] = true
	session.Values[keyUsername] = username
	session.Values[keyLoginAt] = time.Now().Unix()
	return s.store.Save(r, w, session)
}

// Principal returns the logged-in admin, if any.
func (s *Sessions) Principal(r *http.Request) (Principal, bool) {
	session, err := s.store.Get(r, SessionName)
	if err != nil || session == nil {
		return Principal{}, false
	}
	if ok, _ := session.Values[keyAuthenticated].(bool); !ok {
		return Principal{}, false
	}
	p := Principal{}
	p.Username, _ = session.Values[keyUsername].(string)
	if at, ok := session.Values[keyLoginAt].(int64); ok {
		p.LoggedInAt = time.Unix(at, 0).UTC()
	}
	return p, true
}

// Logout destroys the session record and expires the cookie.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, SessionName)
	session.Values = map[interface{}]interface{}{}
	session.Options.MaxAge = -1
	return s.store.Save(r, w, session)
}
