package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	. "github.com/tulamba/mafunzo/apps/api/echo"
	"github.com/tulamba/mafunzo/core/course"
	"github.com/tulamba/mafunzo/core/employee"
	emailsvc "github.com/tulamba/mafunzo/services/email"
	inmemdb "github.com/tulamba/mafunzo/storage/database/inmem"
	testutil "github.com/tulamba/mafunzo/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

func setup(t *testing.T, courses []course.Course, employees []employee.Employee) (*Server, *employee.Service) {
	t.Helper()
	db, _ := testutil.PrepareDB(t, courses, employees)

	crsRepo := inmemdb.NewCourseRepository(db)
	crsSvc := course.NewService(crsRepo)
	empSvc := employee.NewService(
		inmemdb.NewEmployeeRepository(db),
		crsRepo,
		emailsvc.NewConsoleServiceMock(),
		testutil.NopLogger{},
	)
	crsSvc.SetProgressSyncer(empSvc)

	app := NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         testutil.NopLogger{},
			CourseSvc:      crsSvc,
			EmployeeSvc:    empSvc,
		},
	)
	return app, empSvc
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getAdminToken(t *testing.T) string {
	claims := GetAdminClaims("admin")
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getAdminToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(tt.wantData)),
			B:        difflib.SplitLines(rec.Body.String()),
			FromFile: "want",
			ToFile:   "got",
			Context:  2,
		})
		t.Errorf("failed! data mismatch:\n%s", diff)
	}
}
