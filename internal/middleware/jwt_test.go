package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func newAdminRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AdminRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"admin": c.GetString("admin_email")})
	})
	return r
}

func TestAdminRequiredUniform401(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_secret")
	r := newAdminRouter()

	expired := signToken(t, "test_secret", jwt.MapClaims{
		"email": "admin@example.com",
		"exp":   time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := signToken(t, "autre_secret", jwt.MapClaims{
		"email": "admin@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	// Header absent, malformé, token bidon, expiré, mauvaise clé : même
	// réponse dans tous les cas
	cases := []struct {
		name   string
		header string
	}{
		{"header absent", ""},
		{"schéma non Bearer", "Basic abc"},
		{"token bidon", "Bearer pas.un.jwt"},
		{"token expiré", "Bearer " + expired},
		{"mauvaise clé", "Bearer " + wrongKey},
	}

	var bodies []string
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: code = %d, attendu 401", tc.name, w.Code)
		}
		bodies = append(bodies, w.Body.String())
	}

	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Errorf("réponses 401 non uniformes: %q vs %q", bodies[0], bodies[i])
		}
	}
}

func TestAdminRequiredAcceptsValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_secret")
	r := newAdminRouter()

	valid := signToken(t, "test_secret", jwt.MapClaims{
		"email": "admin@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+valid)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, attendu 200 (body: %s)", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["admin"] != "admin@example.com" {
		t.Errorf("admin = %s, attendu admin@example.com", body["admin"])
	}
}
