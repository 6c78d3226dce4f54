package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"conflict", Conflict("time_conflict", "taken"), KindConflict},
		{"wrapped not found", fmt.Errorf("load: %w", NotFoundErr("barber_not_found", "x")), KindNotFound},
XX, errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsBusiness(t *testing.T) {
	err := fmt.Errorf("ctx: %w", Conflict("slug_already_exists", "taken"))
	assert.True(t, IsBusiness(err, "slug_already_exists"))
	assert.False(t, IsBusiness(err, "time_conflict"))
	assert.False(t, IsBusiness(errors.New("x"), "x"))
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid input", InvalidInput("invalid_request", "bad"), http.StatusBadRequest, "invalid_request"},
		{"forbidden", Forbidden("plan_inactive", "plan inactive"), http.StatusForbidden, "plan_inactive"},
		{"unavailable", Unavailable("storage_unavailable", errors.New("dial tcp")), http.StatusServiceUnavailable, "storage_unavailable"},
		{"canceled", Canceled(context.Canceled), StatusClientClosedRequest, "request_canceled"},
		{"internal hides cause", InternalErr("save_failed", errors.New("pq: secret detail")), http.StatusInternalServerError, "save_failed"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Respond(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body HTTPError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotContains(t, w.Body.String(), "secret detail")
		})
	}
}
