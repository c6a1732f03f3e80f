package auth

import (
	"context"
	"encoding/base32"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const sessionMaxAge = 24 * 60 * 60

// CookieOptions builds the cookie settings for a cross-site admin panel.
// SameSite=None needs Secure, so insecure dev setups fall back to Lax.
func CookieOptions(secure bool) *sessions.Options {
	opts := &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteNoneMode,
	}
	if !secure {
		opts.SameSite = http.SameSiteLaxMode
	}
	return opts
}

// NewStore returns a Redis-backed store, or a filesystem store under dir
// when Redis is not configured. Both keep the values server-side.
func NewStore(rdb *redis.Client, secret, dir string, secure bool) (sessions.Store, error) {
	opts := CookieOptions(secure)
	if rdb != nil {
		return NewRedisStore(rdb, opts, []byte(secret)), nil
	}
	path := filepath.Join(dir, "myr-sessions")
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, errors.Wrap(err, "session dir")
	}
	store := sessions.NewFilesystemStore(path, []byte(secret))
	store.Options = opts
	store.MaxAge(opts.MaxAge)
	return store, nil
}

// RedisStore keeps session values in Redis; the cookie only carries the
// signed session id.
type RedisStore struct {
	rdb     *redis.Client
	codecs  []securecookie.Codec
	Options *sessions.Options
	prefix  string
}

var _ sessions.Store = (*RedisStore)(nil)

func NewRedisStore(rdb *redis.Client, opts *sessions.Options, keyPairs ...[]byte) *RedisStore {
	codecs := securecookie.CodecsFromPairs(keyPairs...)
	for _, c := range codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(opts.MaxAge)
		}
	}
	return &RedisStore{rdb: rdb, codecs: codecs, Options: opts, prefix: "session:"}
}

func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	if err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.codecs...); err != nil {
		session.ID = ""
		return session, nil
	}
	found, err := s.load(r.Context(), session)
	if err != nil {
		return session, err
	}
	session.IsNew = !found
	return session, nil
}

func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	ctx := r.Context()
	if session.Options.MaxAge <= 0 {
		if session.ID != "" {
			if err := s.rdb.Del(ctx, s.prefix+session.ID).Err(); err != nil {
				return errors.Wrap(err, "delete session")
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = strings.TrimRight(
			base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)), "=")
	}
	data, err := securecookie.EncodeMulti(session.Name(), session.Values, s.codecs...)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if err := s.rdb.Set(ctx, s.prefix+session.ID, data, ttl).Err(); err != nil {
		return errors.Wrap(err, "store session")
	}

	cookie, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return errors.Wrap(err, "encode session id")
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), cookie, session.Options))
	return nil
}

func (s *RedisStore) load(ctx context.Context, session *sessions.Session) (bool, error) {
	data, err := s.rdb.Get(ctx, s.prefix+session.ID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "load session")
	}
	if err := securecookie.DecodeMulti(session.Name(), data, &session.Values, s.codecs...); err != nil {
		return false, errors.Wrap(err, "decode session")
	}
	return true, nil
}
