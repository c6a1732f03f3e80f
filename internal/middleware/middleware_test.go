package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/auth"
)

func newRouter(s *auth.Sessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", func(c *gin.Context) {
		if err := s.Login(c.Writer, c.Request, "admin"); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	r.GET("/secret", RequireAdmin(s), func(c *gin.Context) {
		p, ok := Admin(c)
		if !ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, p.Username)
	})
	r.POST("/orders", OrderRateLimit(nil), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestRequireAdmin(t *testing.T) {
	store := sessions.NewFilesystemStore(t.TempDir(), []byte("0123456789abcdef0123456789abcdef"))
	store.Options = auth.CookieOptions(false)
	r := newRouter(auth.NewSessions(store))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secret", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: got %d, want 401", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("login: got %d", w.Code)
	}
	cookies := w.Result().Cookies()

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "admin" {
		t.Fatalf("logged in: got %d %q", w.Code, w.Body.String())
	}
}

func TestOrderRateLimitWithoutRedis(t *testing.T) {
	r := newRouter(nil)
	for i := 0; i < OrderMaxRequests+5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", nil))
		if w.Code != http.StatusCreated {
			t.Fatalf("request %d: got %d", i, w.Code)
		}
	}
}
