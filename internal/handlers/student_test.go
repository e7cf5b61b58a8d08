package handlers_test

import (
	"net/http"
	"testing"

	"github.com/consultdesk/consultdesk/internal/handlers"
	"github.com/consultdesk/consultdesk/internal/storetest"
)

func TestStudentCRUD(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]interface{}{
		"name":    "Maya Chen",
		"email":   " Maya.Chen@Uni.example.edu ",
		"program": "Epidemiology",
		"level":   "PhD",
	}
	rec := ts.do(t, http.MethodPost, "/api/students", body)
	expectStatus(t, rec, http.StatusCreated)

	var st handlers.StudentResponse
	decode(t, rec, &st)
	if st.Email != "maya.chen@uni.example.edu" || st.Level != "PhD" {
		t.Fatalf("unexpected student: %+v", st)
	}

	rec = ts.do(t, http.MethodPost, "/api/students", body)
	expectStatus(t, rec, http.StatusConflict)

	rec = ts.do(t, http.MethodPut, "/api/students/"+st.ID, map[string]interface{}{"level": "Graduate"})
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &st)
	if st.Level != "Graduate" || st.Name != "Maya Chen" {
		t.Fatalf("unexpected update: %+v", st)
	}

	rec = ts.do(t, http.MethodPut, "/api/students/"+st.ID, map[string]interface{}{"level": "Postdoc"})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = ts.do(t, http.MethodDelete, "/api/students/"+st.ID, nil)
	expectStatus(t, rec, http.StatusNoContent)

	rec = ts.do(t, http.MethodGet, "/api/students/"+st.ID, nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestCreateStudentRejectsBadEmail(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/students", map[string]interface{}{
		"name": "A", "email": "not-an-email", "program": "X", "level": "BS",
	})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestAssignments(t *testing.T) {
	ts := newTestServer(t)
	p := storetest.Project(t, ts.store, ts.user.ID, "Thesis", "100")
	st := storetest.Student(t, ts.store, ts.user.ID, "jordan")
	path := "/api/projects/" + p.ID + "/students"

	rec := ts.do(t, http.MethodPost, path, map[string]interface{}{"studentId": st.ID, "role": "Analyst"})
	expectStatus(t, rec, http.StatusCreated)

	var a handlers.AssignmentResponse
	decode(t, rec, &a)
	if a.StudentID != st.ID || a.Role != "Analyst" || a.Student == nil || a.Student.Name != "jordan" {
		t.Fatalf("unexpected assignment: %+v", a)
	}
	if !a.AssignedAt.Equal(ts.clock.Now()) {
		t.Fatalf("assigned at: got %v, want %v", a.AssignedAt, ts.clock.Now())
	}

	rec = ts.do(t, http.MethodPost, path, map[string]interface{}{"studentId": st.ID})
	expectStatus(t, rec, http.StatusConflict)

	rec = ts.do(t, http.MethodGet, path, nil)
	expectStatus(t, rec, http.StatusOK)
	var list []handlers.AssignmentResponse
	decode(t, rec, &list)
	if len(list) != 1 || list[0].Student == nil {
		t.Fatalf("list: got %+v", list)
	}

	rec = ts.do(t, http.MethodDelete, path+"/"+st.ID, nil)
	expectStatus(t, rec, http.StatusNoContent)

	rec = ts.do(t, http.MethodDelete, path+"/"+st.ID, nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestAssignOtherUsersStudentIsNotFound(t *testing.T) {
	ts := newTestServer(t)
	other := storetest.User(t, ts.store, "other")
	p := storetest.Project(t, ts.store, ts.user.ID, "Thesis", "100")
	st := storetest.Student(t, ts.store, other.ID, "sam")

	rec := ts.do(t, http.MethodPost, "/api/projects/"+p.ID+"/students", map[string]interface{}{"studentId": st.ID})
	expectStatus(t, rec, http.StatusNotFound)
}
