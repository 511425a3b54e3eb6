package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tmusoni/darasa/core/auth"
	testutil "github.com/tmusoni/darasa/tests"
)

func Test_authApi_register(t *testing.T) {
	app := setup(t)

	testutil.CreateAccount(t, authRepo, "Existing User", "existing", "S3cret!pass")

	payload := func(name, uname, pwd string) []byte {
		return marchallObj(t, auth.NewAccount{
			Name: name, Username: uname, Password: pwd, PasswordConfirm: pwd,
		})
	}

	tests := []httpTest{
		{
			name: "username too short", body: payload("Amina Juma", "aj", "S3cret!pass"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "username must be at least 4 characters in length"}),
		},
		{
			name: "username taken", body: payload("Amina Juma", "existing", "S3cret!pass"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": auth.ErrUsernameExists.Error()}),
		},
		{
			name: "all-numeric password", body: payload("Amina Juma", "amina", "12345678"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password cannot be entirely numeric"}),
		},
		{
			name: "password similar to username", body: payload("Amina Juma", "aminajuma", "Aminajuma#1"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password cannot be similar to account attributes"}),
		},
		{
			name: "register", body: payload("Amina Juma", "amina", "S3cret!pass"),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/auth/register"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusCreated {
				if tt.wantData != nil {
					checkCodeAndData(t, tt, rec)
				}
				return
			}

			var resp LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("json.Unmarshal() failed, %v", err)
			}
			if resp.Token == "" {
				t.Error("no token issued on registration")
			}
			if resp.Account.Username != "amina" {
				t.Errorf("username = %q, want %q", resp.Account.Username, "amina")
			}
			if resp.Account.CreatedAt.IsZero() {
				t.Error("CreatedAt not set")
			}
		})
	}
}

func Test_authApi_login(t *testing.T) {
	app := setup(t)

	testutil.CreateAccount(t, authRepo, "Amina Juma", "amina", "S3cret!pass")

	payload := func(uname, pwd string) []byte {
		return marchallObj(t, auth.Credentials{Username: uname, Password: pwd})
	}

	tests := []httpTest{
		{
			name: "username required", body: payload("", "S3cret!pass"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required"}),
		},
		{
			name: "unknown account", body: payload("nobody", "S3cret!pass"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: auth.ErrInvalidCredentials.Error()}),
		},
		{
			name: "wrong password", body: payload("amina", "wrong"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: auth.ErrInvalidCredentials.Error()}),
		},
		{
			name: "login is case-insensitive on username", body: payload("AMINA", "S3cret!pass"),
			wantCode: http.StatusOK,
		},
		{name: "login", body: payload("amina", "S3cret!pass"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/auth/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				checkCodeAndData(t, tt, rec)
				return
			}

			var resp LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("json.Unmarshal() failed, %v", err)
			}
			if resp.Token == "" {
				t.Error("no token issued on login")
			}
			if resp.Account.LastLogin.IsZero() {
				t.Error("LastLogin not recorded")
			}
		})
	}
}

func Test_authApi_me(t *testing.T) {
	app := setup(t)

	amina := testutil.CreateAccount(t, authRepo, "Amina Juma", "amina", "S3cret!pass")

	ghost := auth.Account{Username: "ghost", Name: "No Longer Here"}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "account gone", token: getToken(t, ghost), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "me", token: getToken(t, amina), wantCode: http.StatusOK, wantData: marchallObj(t, amina)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/auth/me"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
