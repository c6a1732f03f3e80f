package notify

import (
	"net/http/httptest"
	"testing"
)

func TestHubOriginCheck(t *testing.T) {
	if NewHub(nil).upgrader.CheckOrigin != nil {
		t.Fatal("unconfigured hub must use the same-origin check")
	}

	h := NewHub([]string{"https://admin.myr.pk"})
	tests := map[string]bool{
		"":                     true,
		"https://admin.myr.pk": true,
		"https://evil.example": false,
	}
	for origin, want := range tests {
		req := httptest.NewRequest("GET", "/admin/orders/live", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		if got := h.upgrader.CheckOrigin(req); got != want {
			t.Errorf("CheckOrigin(%q) = %v, want %v", origin, got, want)
		}
	}
}
