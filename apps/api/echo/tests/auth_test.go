package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dams-project/backend/core/auth"
)

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "dams_sid" {
			return c
		}
	}
	return nil
}

func Test_authApi_studentLogin(t *testing.T) {
	ta := setup(t)
	std := createStudent(t, ta.students, "1AB21CS001", "secret")

	tests := []httpTest{
		{name: "required fields", body: marshallObj(t, map[string]string{}), wantCode: http.StatusBadRequest},
		{
			name: "unknown USN", body: marshallObj(t, map[string]string{"usn": "1AB21CS099", "password": "secret"}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name: "wrong password", body: marshallObj(t, map[string]string{"usn": std.USN, "password": "nope"}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{name: "ok", body: marshallObj(t, map[string]string{"usn": std.USN, "password": "secret"}), wantCode: http.StatusOK},
		{name: "lowercase USN cleaned", body: marshallObj(t, map[string]string{"usn": " 1ab21cs001 ", "password": "secret"}), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/student-login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode != http.StatusOK {
				return
			}
			var resp struct {
				Principal auth.Principal `json:"principal"`
				Token     string         `json:"token"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("json.Unmarshal() failed: %v", err)
			}
			if resp.Token == "" {
				t.Error("failed! empty token")
			}
			if resp.Principal.Role != auth.RoleStudent || resp.Principal.ID != std.USN {
				t.Errorf("failed! principal = %+v", resp.Principal)
			}
			cookie := sessionCookie(rec)
			if cookie == nil {
				t.Fatal("failed! session cookie not set")
			}
			if cookie.Value != resp.Token {
				t.Error("failed! cookie does not carry the session token")
			}
			if !cookie.HttpOnly {
				t.Error("failed! session cookie is not HttpOnly")
			}
		})
	}
}

func Test_authApi_session(t *testing.T) {
	ta := setup(t)
	token := studentToken(t, ta, "1AB21CS001")

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errNotAuthenticated)},
		{name: "bogus token", token: "bogus", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errNotAuthenticated)},
		{name: "ok", token: token, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/api/auth/session"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var p auth.Principal
				if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if p.ID != "1AB21CS001" || p.Role != auth.RoleStudent {
					t.Errorf("failed! principal = %+v", p)
				}
			}
		})
	}
}

func Test_authApi_logout(t *testing.T) {
	ta := setup(t)
	token := studentToken(t, ta, "1AB21CS001")

	req, rec := newAuthRequest(http.MethodPost, "/api/auth/logout", token)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout failed: code %d, body %s", rec.Code, rec.Body.String())
	}
	if cookie := sessionCookie(rec); cookie == nil || cookie.MaxAge != -1 {
		t.Error("failed! session cookie not cleared")
	}

	// session is gone
	req, rec = newAuthRequest(http.MethodGet, "/api/auth/session", token)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("session after logout: code = %d; want %d", rec.Code, http.StatusUnauthorized)
	}
}

// sentOTP digs the last emailed one-time code out of the mock mailbox.
func sentOTP(t *testing.T, ta testApp) string {
	t.Helper()

	msgs := ta.mailSvc.SentMessages()
	if len(msgs) == 0 {
		t.Fatal("no OTP email was sent")
	}
	data, ok := msgs[len(msgs)-1].TemplateData.(struct {
		Code   string
		Expiry int
	})
	if !ok {
		t.Fatalf("unexpected template data %T", msgs[len(msgs)-1].TemplateData)
	}
	return data.Code
}

func Test_authApi_adminLogin(t *testing.T) {
	ta := setup(t)
	adm := createAdmin(t, ta.admins, "admin@test.edu", "secret")
	creds := map[string]string{"email": adm.Email, "password": "secret"}

	// wrong password: no code goes out
	req, rec := newRequest(http.MethodPost, "/api/auth/admin-login", marshallObj(t, map[string]string{"email": adm.Email, "password": "nope"}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("wrong password: code = %d; want %d", rec.Code, http.StatusBadRequest)
	}
	if len(ta.mailSvc.SentMessages()) != 0 {
		t.Error("failed! an email went out for a rejected login")
	}

	// password accepted: a one-time code is emailed, no session yet
	req, rec = newRequest(http.MethodPost, "/api/auth/admin-login", marshallObj(t, creds))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login failed: code %d, body %s", rec.Code, rec.Body.String())
	}
	if cookie := sessionCookie(rec); cookie != nil {
		t.Error("failed! a session cookie was set before OTP verification")
	}
	code := sentOTP(t, ta)
	if len(code) != 6 {
		t.Errorf("OTP length = %d, want 6", len(code))
	}

	// a wrong guess burns the code
	verify := func(c string) *httptest.ResponseRecorder {
		req, rec := newRequest(http.MethodPost, "/api/auth/admin-verify-otp", marshallObj(t, map[string]string{"email": adm.Email, "otp": c}))
		ta.app.ServeHTTP(rec, req)
		return rec
	}
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if rec := verify(wrong); rec.Code != http.StatusBadRequest {
		t.Errorf("wrong OTP: code = %d; want %d", rec.Code, http.StatusBadRequest)
	}
	if rec := verify(code); rec.Code != http.StatusBadRequest {
		t.Errorf("burnt OTP: code = %d; want %d", rec.Code, http.StatusBadRequest)
	}

	// full round trip
	req, rec = newRequest(http.MethodPost, "/api/auth/admin-login", marshallObj(t, creds))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login failed: code %d", rec.Code)
	}
	rec = verify(sentOTP(t, ta))
	if rec.Code != http.StatusOK {
		t.Fatalf("OTP verification failed: code %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Principal auth.Principal `json:"principal"`
		Token     string         `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if resp.Principal.Role != auth.RoleAdmin || resp.Principal.ID != adm.Email {
		t.Errorf("failed! principal = %+v", resp.Principal)
	}
	if resp.Token == "" {
		t.Error("failed! empty token")
	}

	// the code is single use
	if rec := verify(sentOTP(t, ta)); rec.Code != http.StatusBadRequest {
		t.Errorf("replayed OTP: code = %d; want %d", rec.Code, http.StatusBadRequest)
	}
}
