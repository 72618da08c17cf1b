package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskdeck/internal/models"
	"github.com/monocle-dev/taskdeck/internal/services"
	"github.com/monocle-dev/taskdeck/internal/types"
	"github.com/rs/zerolog"
)

type fakeResolver struct {
	tokens map[string]*models.User
	err    error
	seen   string
}

func (f *fakeResolver) ResolveSession(_ context.Context, token string) (*models.User, *models.Session, error) {
	f.seen = token
	if f.err != nil {
		return nil, nil, f.err
	}
	user, ok := f.tokens[token]
	if !ok {
		return nil, nil, fmt.Errorf("resolve: %w", services.ErrAuth)
	}
	return user, &models.Session{ID: "session-" + token, UserID: user.ID}, nil
}

func newAuthRouter(resolver SessionResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/private", AuthMiddleware(resolver, zerolog.Nop()), func(ctx *gin.Context) {
		value, _ := ctx.Get(types.ContextUserKey)
		user := value.(AuthenticatedUser)
		ctx.JSON(http.StatusOK, gin.H{"id": user.ID, "handle": user.Handle, "session": user.SessionID})
	})

	return r
}

func TestAuthMiddleware(t *testing.T) {
	email := "alice@example.com"
	resolver := &fakeResolver{tokens: map[string]*models.User{
		"good": {BaseModel: models.BaseModel{ID: 7}, Handle: "alice", Email: &email},
	}}
	r := newAuthRouter(resolver)

	tests := []struct {
		name   string
		header string
		cookie string
		status int
	}{
		{"missing token", "", "", http.StatusUnauthorized},
		{"malformed header", "Token good", "", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", "", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", "", http.StatusUnauthorized},
		{"bearer token", "Bearer good", "", http.StatusOK},
		{"cookie token", "", "good", http.StatusOK},
		{"header wins over cookie", "Bearer good", "bad", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status == http.StatusOK && !strings.Contains(rec.Body.String(), `"session":"session-good"`) {
				t.Fatalf("unexpected body %s", rec.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareStoreFailure(t *testing.T) {
	r := newAuthRouter(&fakeResolver{err: errors.New("database is down")})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "database") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/projects/:project_id", func(ctx *gin.Context) {
		ctx.Status(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/42", nil))

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"status":404`, `"route":"/projects/:project_id"`, `"path":"/projects/42"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}
