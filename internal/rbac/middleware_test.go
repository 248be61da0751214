package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace-ledger/internal/auth"

	"github.com/gin-gonic/gin"
)

func doRequest(t *testing.T, mw gin.HandlerFunc, role string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if role != "" {
			c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), "user-1", role))
		}
		c.Next()
	})
	r.GET("/x", mw, func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequireAnyRole(t *testing.T) {
	mw := RequireAnyRole(RoleSeller)

	if code := doRequest(t, mw, RoleSeller); code != http.StatusOK {
		t.Fatalf("seller: %d", code)
	}
	if code := doRequest(t, mw, RoleBuyer); code != http.StatusForbidden {
		t.Fatalf("buyer: %d", code)
	}
	if code := doRequest(t, mw, ""); code != http.StatusUnauthorized {
		t.Fatalf("anonymous: %d", code)
	}
}

func TestSuperAdminBypasses(t *testing.T) {
	mw := RequireAnyRole(RoleSeller)
	if code := doRequest(t, mw, RoleSuperAdmin); code != http.StatusOK {
		t.Fatalf("super_admin: %d", code)
	}
}

func TestRequireAdmin(t *testing.T) {
	mw := RequireAdmin()
	if code := doRequest(t, mw, RoleAdmin); code != http.StatusOK {
		t.Fatalf("admin: %d", code)
	}
	if code := doRequest(t, mw, RoleBuyer); code != http.StatusForbidden {
		t.Fatalf("buyer: %d", code)
	}
}
