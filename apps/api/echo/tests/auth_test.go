package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/tulamba/mafunzo/apps/api/echo"
)

func TestAuth_login(t *testing.T) {
	app, _ := setup(t, nil, nil)

	tests := []httpTest{
		{
			name:     "valid credentials",
			body:     marchallObj(t, echoapi.LoginRequest{Username: "admin", Password: "password"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, echoapi.LoginRequest{Username: "admin", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "unknown username",
			body:     marchallObj(t, echoapi.LoginRequest{Username: "root", Password: "password"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "missing fields",
			body:     marchallObj(t, echoapi.LoginRequest{}),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"username": "this field is required", "password": "this field is required"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
			var resp echoapi.LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshalling LoginResponse: %v", err)
			}
			if resp.Token == "" {
				t.Error("expected a token")
			}
		})
	}
}

func TestAuth_adminRoutesRequireToken(t *testing.T) {
	app, _ := setup(t, nil, nil)

	paths := []string{"/v1/courses", "/v1/employees", "/v1/dashboard"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, path)
			app.ServeHTTP(rec, req)

			tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestAuth_tokenRefresh(t *testing.T) {
	app, _ := setup(t, nil, nil)

	req, rec := newAuthRequest(http.MethodPost, "/v1/auth/token-refresh", getAdminToken(t))
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
	}
	var resp echoapi.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling LoginResponse: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a refreshed token")
	}
}
