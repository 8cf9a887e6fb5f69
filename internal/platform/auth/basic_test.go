package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGuardedRouter(t *testing.T) *gin.Engine {
	t.Helper()
	authenticator, err := NewBasicAuthenticator("admin", "s3cret", nil)
	require.NoError(t, err)
	router := gin.New()
	router.DELETE("/orders/:id", authenticator.Middleware(), func(c *gin.Context) {
		c.String(http.StatusNoContent, "")
	})
	return router
}

func TestNewBasicAuthenticator_RequiresCredentials(t *testing.T) {
	_, err := NewBasicAuthenticator("", "pw", nil)
	assert.Error(t, err)
	_, err = NewBasicAuthenticator("admin", "", nil)
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	authenticator, err := NewBasicAuthenticator("admin", "s3cret", nil)
	require.NoError(t, err)

	assert.NoError(t, authenticator.Verify("admin", "s3cret"))
	assert.ErrorIs(t, authenticator.Verify("admin", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, authenticator.Verify("root", "s3cret"), ErrInvalidCredentials)
}

func TestMiddleware(t *testing.T) {
	router := newGuardedRouter(t)

	tests := []struct {
		name     string
		login    string
		password string
		setAuth  bool
		expected int
	}{
		{name: "missing credentials", expected: http.StatusUnauthorized},
		{name: "wrong password", login: "admin", password: "nope", setAuth: true, expected: http.StatusUnauthorized},
		{name: "valid credentials", login: "admin", password: "s3cret", setAuth: true, expected: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/orders/1", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.login, tt.password)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.expected, rec.Code)
			if tt.expected == http.StatusUnauthorized {
				assert.Equal(t, `Basic realm="orders"`, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}
