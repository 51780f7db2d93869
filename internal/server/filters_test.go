package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/jobdeck/jobdeck/internal/runtime"
	"github.com/jobdeck/jobdeck/internal/store"
)

func TestFilterBoundsWithoutRedis(t *testing.T) {
	e := echo.New()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	handler := &FiltersHandler{Store: &store.Store{DB: db}}

	mock.ExpectQuery(`COALESCE\(MIN\(fit_score\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"min", "max"}).AddRow(0.0, 100.0))
	mock.ExpectQuery(`COALESCE\(MIN\(salary_min\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"min", "max"}).AddRow(50000, 180000))
	mock.ExpectQuery(`SELECT DISTINCT source FROM jobs`).
		WillReturnRows(sqlmock.NewRows([]string{"source"}).AddRow("remotive"))
	mock.ExpectQuery(`SELECT location FROM jobs`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"location"}))
	mock.ExpectQuery(`SELECT work_type FROM jobs`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"work_type"}).AddRow("remote"))

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/filters", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	if err := handler.bounds(ctx); err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var resp store.FilterBounds
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SalaryMax != 180000 || len(resp.Sources) != 1 || resp.Sources[0] != "REMOTIVE" {
		t.Fatalf("unexpected bounds: %+v", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFilterBoundsRequireToken(t *testing.T) {
	e := echo.New()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	secret := []byte("filters-secret")
	handler := &FiltersHandler{Store: &store.Store{DB: db}}
	handler.Register(e.Group("/api/jobs"), runtime.EchoAuthMiddleware(secret))

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/filters", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	// A valid token reaches the handler. The store errors so a 503
	// proves the middleware let the request through.
	mock.ExpectQuery(`COALESCE\(MIN\(fit_score\), 0\)`).
		WillReturnError(errStoreDown)
	token, err := runtime.SignJWT("user-1", secret, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/jobs/filters", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with token, got %d", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFilterBoundsStoreFailureIs503(t *testing.T) {
	e := echo.New()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	handler := &FiltersHandler{Store: &store.Store{DB: db}}

	mock.ExpectQuery(`COALESCE\(MIN\(fit_score\), 0\)`).
		WillReturnError(errStoreDown)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/filters", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	err = handler.bounds(ctx)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %v", err)
	}
}
