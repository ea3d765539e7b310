package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dams-project/backend/core/roster"
	"github.com/dams-project/backend/core/student"
)

// adminToken runs the full two-step admin login and returns the session token.
func adminToken(t *testing.T, ta testApp) string {
	t.Helper()
	createAdmin(t, ta.admins, "hod@test.edu", "secret")

	req, rec := newRequest(http.MethodPost, "/api/auth/admin-login",
		marshallObj(t, map[string]string{"email": "hod@test.edu", "password": "secret"}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login failed: code %d, body %s", rec.Code, rec.Body.String())
	}
	code := sentOTP(t, ta)
	return login(t, ta.app, "/api/auth/admin-verify-otp", map[string]string{"email": "hod@test.edu", "otp": code})
}

func Test_adminApi_students(t *testing.T) {
	ta := setup(t)
	adminTok := adminToken(t, ta)
	facultyTok := facultyToken(t, ta, "FAC01")

	newStd := marshallObj(t, map[string]interface{}{
		"usn": "1AB21CS010", "name": "New Student", "email": "new@test.edu",
		"password": "secret", "sem": 3, "section": "A",
	})

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodGet, path: "/api/admin/students",
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errNotAuthenticated),
		},
		{
			name: "admin required", method: http.MethodGet, path: "/api/admin/students", token: facultyTok,
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "create: required fields", method: http.MethodPost, path: "/api/admin/students",
			body: marshallObj(t, map[string]string{}), token: adminTok, wantCode: http.StatusBadRequest,
		},
		{
			name: "create", method: http.MethodPost, path: "/api/admin/students",
			body: newStd, token: adminTok, wantCode: http.StatusCreated,
		},
		{
			name: "delete", method: http.MethodDelete, path: "/api/admin/students/1AB21CS010",
			token: adminTok, wantCode: http.StatusNoContent,
		},
		{
			name: "delete: gone", method: http.MethodDelete, path: "/api/admin/students/1AB21CS010",
			token: adminTok, wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "student not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.name == "create" {
				var std student.Student
				if err := json.Unmarshal(rec.Body.Bytes(), &std); err != nil {
					t.Fatalf("unmarshal failed: %v", err)
				}
				if std.USN != "1AB21CS010" || std.Semester != 3 || std.Section != "A" {
					t.Errorf("created student = %+v", std)
				}
			}
		})
	}
}

func Test_adminApi_queryStudents(t *testing.T) {
	ta := setup(t)
	adminTok := adminToken(t, ta)
	createStudent(t, ta.students, "1AB21CS001", "secret") // 3 A
	createStudent(t, ta.students, "1AB21CS002", "secret") // 3 A

	// whole department
	req, rec := newAuthRequest(http.MethodGet, "/api/admin/students", adminTok)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("querying students failed: code %d, body %s", rec.Code, rec.Body.String())
	}
	var stds []student.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &stds); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(stds) != 2 {
		t.Errorf("students = %d, want 2", len(stds))
	}

	// one class, no match
	req, rec = newAuthRequest(http.MethodGet, "/api/admin/students?sem=5&section=B", adminTok)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("querying class failed: code %d, body %s", rec.Code, rec.Body.String())
	}
	stds = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &stds); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(stds) != 0 {
		t.Errorf("students = %d, want 0", len(stds))
	}
}

func Test_adminApi_roster(t *testing.T) {
	ta := setup(t)
	adminTok := adminToken(t, ta)
	createFaculty(t, ta.faculty, "FAC01", "secret")

	subject := marshallObj(t, map[string]interface{}{
		"code": "cs301", "name": "Operating Systems", "sem": 3, "credits": 4,
	})
	assignment := marshallObj(t, map[string]string{
		"subject_code": "CS301", "section": "a", "faculty_id": "fac01",
	})
	advisor := marshallObj(t, map[string]interface{}{
		"sem": 3, "section": "A", "faculty_id": "FAC01",
	})

	tests := []httpTest{
		{
			name: "assign before subject exists", method: http.MethodPost, path: "/api/admin/assignments",
			body: assignment, token: adminTok,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "subject not found"}),
		},
		{
			name: "save subject", method: http.MethodPost, path: "/api/admin/subjects",
			body: subject, token: adminTok, wantCode: http.StatusCreated,
			wantData: marshallObj(t, roster.Subject{Code: "CS301", Name: "Operating Systems", Semester: 3, Credits: 4}),
		},
		{
			name: "assign faculty", method: http.MethodPost, path: "/api/admin/assignments",
			body: assignment, token: adminTok, wantCode: http.StatusCreated,
			wantData: marshallObj(t, map[string]string{"success": "Faculty assigned."}),
		},
		{
			name: "assign advisor", method: http.MethodPost, path: "/api/admin/advisors",
			body: advisor, token: adminTok, wantCode: http.StatusCreated,
			wantData: marshallObj(t, map[string]string{"success": "Class advisor assigned."}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the assignment query is normalized the same way as the write path
	req, rec := newAuthRequest(http.MethodGet, "/api/admin/assignments?subject_code=cs301&section=a", adminTok)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("querying assignment failed: code %d, body %s", rec.Code, rec.Body.String())
	}
	var a roster.FacultyAssignment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if a.FacultyID != "FAC01" || a.SubjectCode != "CS301" || a.Section != "A" {
		t.Errorf("assignment = %+v", a)
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/admin/advisors", adminTok)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("querying advisors failed: code %d, body %s", rec.Code, rec.Body.String())
	}
	var advisors []roster.ClassAdvisor
	if err := json.Unmarshal(rec.Body.Bytes(), &advisors); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(advisors) != 1 || advisors[0].FacultyID != "FAC01" {
		t.Errorf("advisors = %+v", advisors)
	}

	// the faculty sees their own teaching list for the class
	facultyTok := login(t, ta.app, "/api/auth/faculty-login", map[string]string{"id": "FAC01", "password": "secret"})
	req, rec = newAuthRequest(http.MethodGet, "/api/subjects?sem=3&section=a", facultyTok)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("querying teaching subjects failed: code %d, body %s", rec.Code, rec.Body.String())
	}
	var teaching []roster.Subject
	if err := json.Unmarshal(rec.Body.Bytes(), &teaching); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(teaching) != 1 || teaching[0].Code != "CS301" {
		t.Errorf("teaching subjects = %+v", teaching)
	}
}

func Test_adminApi_createAdmin(t *testing.T) {
	ta := setup(t)
	adminTok := adminToken(t, ta)

	tests := []httpTest{
		{
			name: "duplicate email", body: marshallObj(t, map[string]string{"email": "hod@test.edu", "password": "otherpass123"}),
			token:    adminTok,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"email": "an admin with this email already exists"}),
		},
		{
			name: "create", body: marshallObj(t, map[string]string{"email": "deputy@test.edu", "password": "deputypass1"}),
			token:    adminTok,
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/admin/admins"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the new admin can start a login of their own
	req, rec := newRequest(http.MethodPost, "/api/auth/admin-login",
		marshallObj(t, map[string]string{"email": "deputy@test.edu", "password": "deputypass1"}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("new admin login failed: code %d, body %s", rec.Code, rec.Body.String())
	}
}
