package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminkit/adminkit/pkg/tenant"
)

func TestTenantAPIError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing identifier", tenant.ErrTenantRequired, http.StatusUnauthorized, "tenant_required"},
		{"unknown tenant", tenant.ErrTenantNotFound, http.StatusNotFound, "tenant_not_found"},
		{"deactivated tenant", tenant.ErrTenantInactive, http.StatusForbidden, "tenant_inactive"},
		{"expired tenant", tenant.ErrTenantExpired, http.StatusForbidden, "tenant_expired"},
		{"malformed identifier", tenant.ErrInvalidIdentifier, http.StatusBadRequest, "invalid_tenant_identifier"},
		{"provider failure is masked", errors.New("pg: connection reset"), http.StatusInternalServerError, "internal_server_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/quizzes", nil)

			tenantAPIError(rec, req, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantCode, body.Error.Code)
		})
	}
}
