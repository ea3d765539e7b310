package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dams-project/backend/core/attendance"
)

func Test_attendanceApi_submit(t *testing.T) {
	ta := setup(t)
	createStudent(t, ta.students, "1AB21CS001", "secret")
	createStudent(t, ta.students, "1AB21CS002", "secret")
	studentTok := studentToken(t, ta, "1AB21CS003")
	facultyTok := facultyToken(t, ta, "FAC01")

	submission := marshallObj(t, attendance.Submission{
		SubjectCode: "CS301",
		Semester:    3,
		Section:     "A",
		Date:        "2026-02-10",
		Hours:       2,
		AbsentUSNs:  []string{"1AB21CS002"},
	})

	tests := []httpTest{
		{name: "auth required", body: submission, wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errNotAuthenticated)},
		{
			name: "faculty required", body: submission, token: studentTok,
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "required fields", body: marshallObj(t, map[string]string{}), token: facultyTok, wantCode: http.StatusBadRequest},
		{
			name: "ok", body: submission, token: facultyTok, wantCode: http.StatusCreated,
			wantData: marshallObj(t, map[string]int{"recorded": 3}), // 3 students in 3 A
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/attendance"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_attendanceApi_summary_guestAccess(t *testing.T) {
	ta := setup(t)
	createStudent(t, ta.students, "1AB21CS001", "secret")
	facultyTok := facultyToken(t, ta, "FAC01")

	// two classes taken, one missed
	req, rec := newAuthRequest(http.MethodPost, "/api/attendance", facultyTok, marshallObj(t, attendance.Submission{
		SubjectCode: "CS301", Semester: 3, Section: "A", Date: "2026-02-10", Hours: 2,
	}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seeding attendance failed: code %d, body %s", rec.Code, rec.Body.String())
	}

	tests := []httpTest{
		{name: "no session and no usn", path: "/api/attendance/summary", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errNotAuthenticated)},
		{
			name: "malformed usn", path: "/api/attendance/summary?usn=lol",
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "invalid usn"}),
		},
		{name: "guest via usn", path: "/api/attendance/summary?usn=1AB21CS001", wantCode: http.StatusOK},
		{name: "lowercase usn cleaned", path: "/api/attendance/summary?usn=1ab21cs001", wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode != http.StatusOK {
				return
			}
			var summary []attendance.SubjectSummary
			if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
				t.Fatalf("json.Unmarshal() failed: %v", err)
			}
			if len(summary) != 1 || summary[0].SubjectCode != "CS301" {
				t.Fatalf("summary = %+v, want one CS301 entry", summary)
			}
			if summary[0].Total != 2 || summary[0].Attended != 2 {
				t.Errorf("attended/total = %d/%d, want 2/2", summary[0].Attended, summary[0].Total)
			}
		})
	}
}

func Test_attendanceApi_summary_ownSession(t *testing.T) {
	ta := setup(t)
	token := studentToken(t, ta, "1AB21CS001")

	// a logged-in student gets their own record without a usn param
	req, rec := newAuthRequest(http.MethodGet, "/api/attendance/summary", token)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary failed: code %d, body %s", rec.Code, rec.Body.String())
	}

	var summary []attendance.SubjectSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if len(summary) != 0 {
		t.Errorf("summary = %+v, want empty for a fresh student", summary)
	}
}

func Test_attendanceApi_classReport(t *testing.T) {
	ta := setup(t)
	studentTok := studentToken(t, ta, "1AB21CS001")
	facultyTok := facultyToken(t, ta, "FAC01")

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errNotAuthenticated)},
		{
			name: "students not allowed", token: studentTok,
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "staff ok", token: facultyTok, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/api/attendance/report?sem=3&section=A&subject_code=CS301"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
