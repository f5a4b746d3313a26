package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
	"github.com/target-ledger/backend/internal/infra/metrics"
	"github.com/target-ledger/backend/internal/integration/entrypoint/dto"
)

type stubTokenService struct {
	claims *adapter.TokenClaims
	err    error
}

func (s stubTokenService) ValidateAccessToken(context.Context, string) (*adapter.TokenClaims, error) {
	return s.claims, s.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	userID := uuid.New()
	valid := stubTokenService{claims: &adapter.TokenClaims{UserID: userID, Role: entity.RoleOwner, DisplayName: "Ana"}}

	cases := []struct {
		name         string
		service      adapter.TokenService
		header       string
		expectedCode int
		expectedErr  string
	}{
		{"missing header", valid, "", http.StatusUnauthorized, string(domainerror.ErrCodeMissingToken)},
		{"wrong scheme", valid, "Basic abc", http.StatusUnauthorized, string(domainerror.ErrCodeInvalidToken)},
		{"empty token", valid, "Bearer   ", http.StatusUnauthorized, string(domainerror.ErrCodeMissingToken)},
		{"invalid token", stubTokenService{err: domainerror.ErrInvalidToken}, "Bearer x", http.StatusUnauthorized, string(domainerror.ErrCodeInvalidToken)},
		{"unknown role", stubTokenService{err: domainerror.ErrUnknownRole}, "Bearer x", http.StatusUnauthorized, string(domainerror.ErrCodeUnknownRole)},
		{"valid token", valid, "Bearer good", http.StatusOK, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", NewAuthMiddleware(tc.service).Authenticate(), func(c *gin.Context) {
				actor, ok := GetActorFromContext(c)
				if !ok {
					c.Status(http.StatusInternalServerError)
					return
				}
				c.JSON(http.StatusOK, gin.H{"owner_id": actor.OwnerID, "role": actor.Role})
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.expectedCode {
				t.Fatalf("expected status %d, got %d", tc.expectedCode, w.Code)
			}
			if tc.expectedErr != "" {
				var body dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if body.Code != tc.expectedErr {
					t.Errorf("expected code %s, got %s", tc.expectedErr, body.Code)
				}
				return
			}

			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body["owner_id"] != userID.String() || body["role"] != string(entity.RoleOwner) {
				t.Errorf("expected actor %s owner, got %v", userID, body)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	t.Run("limits per key within the window", func(t *testing.T) {
		rl := NewRateLimiterWithConfig(2, time.Minute)
		if !rl.allow("a") || !rl.allow("a") {
			t.Fatal("expected first two requests to pass")
		}
		if rl.allow("a") {
			t.Error("expected third request to be limited")
		}
		if !rl.allow("b") {
			t.Error("expected another key to pass")
		}
	})

	t.Run("window expiry resets the count", func(t *testing.T) {
		rl := NewRateLimiterWithConfig(1, 10*time.Millisecond)
		rl.allow("a")
		time.Sleep(20 * time.Millisecond)
		if !rl.allow("a") {
			t.Error("expected request after window to pass")
		}
	})

	t.Run("cleanup and reset drop entries", func(t *testing.T) {
		rl := NewRateLimiterWithConfig(1, time.Millisecond)
		rl.allow("a")
		time.Sleep(5 * time.Millisecond)
		rl.Cleanup()
		if len(rl.entries) != 0 {
			t.Errorf("expected expired entries to be removed, got %d", len(rl.entries))
		}
		rl.allow("b")
		rl.Reset()
		if len(rl.entries) != 0 {
			t.Errorf("expected reset to clear entries, got %d", len(rl.entries))
		}
	})

	t.Run("middleware keys by actor", func(t *testing.T) {
		rl := NewRateLimiterWithConfig(1, time.Minute)
		alice := entity.Actor{OwnerID: uuid.New(), Role: entity.RoleRoot}
		bob := entity.Actor{OwnerID: uuid.New(), Role: entity.RoleRoot}

		r := gin.New()
		r.POST("/recalculate", func(c *gin.Context) {
			if c.GetHeader("X-Actor") == "bob" {
				c.Set(string(ActorKey), bob)
			} else {
				c.Set(string(ActorKey), alice)
			}
		}, rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusAccepted) })

		send := func(who string) int {
			req := httptest.NewRequest(http.MethodPost, "/recalculate", nil)
			req.Header.Set("X-Actor", who)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			return w.Code
		}

		if code := send("alice"); code != http.StatusAccepted {
			t.Errorf("expected 202, got %d", code)
		}
		if code := send("alice"); code != http.StatusTooManyRequests {
			t.Errorf("expected 429, got %d", code)
		}
		if code := send("bob"); code != http.StatusAccepted {
			t.Errorf("expected 202 for bob, got %d", code)
		}
	})
}

func TestRequestMetrics(t *testing.T) {
	r := gin.New()
	r.Use(RequestMetrics())
	r.GET("/targets/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/targets/42", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	count := testutil.CollectAndCount(metrics.HTTPRequestDuration, "http_request_duration_seconds")
	if count == 0 {
		t.Error("expected the request to be observed")
	}
}
