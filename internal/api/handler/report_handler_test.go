package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ZaspDragon/timeclock-api/internal/core/domain"
	"github.com/ZaspDragon/timeclock-api/internal/core/ports"
)

type stubReportService struct {
	runFn func(ctx context.Context, input ports.ReportInput) (*ports.ReportResult, error)
}

func (s *stubReportService) Run(ctx context.Context, input ports.ReportInput) (*ports.ReportResult, error) {
	return s.runFn(ctx, input)
}

func sampleReport() *ports.ReportResult {
	return &ports.ReportResult{
		Summary: []ports.PersonSummary{
			{Name: "Ana Torres", Company: "Acme", Hours: 15.5, Days: 2},
		},
		Detail:     []ports.TimeLogView{*sampleTodayView()},
		GrandTotal: 15.5,
	}
}

func TestReportHandler_Run(t *testing.T) {
	e := newTestEcho()
	handler := NewReportHandler(&stubReportService{
		runFn: func(_ context.Context, input ports.ReportInput) (*ports.ReportResult, error) {
			if input.Role != "manager" {
				t.Fatalf("role not forwarded: %q", input.Role)
			}
			if input.Name != "ana" || input.Company != "acme" {
				t.Fatalf("filters not forwarded: %q %q", input.Name, input.Company)
			}
			return sampleReport(), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/reports?from=2024-03-04&to=2024-03-10&name=ana&company=acme", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setIdentity(c, "manager")

	if err := handler.Run(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["grand_total"] != 15.5 || resp["count"] != float64(1) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	summary, ok := resp["summary"].([]any)
	if !ok || len(summary) != 1 {
		t.Fatalf("summary missing: %+v", resp)
	}
}

func TestReportHandler_Run_Forbidden(t *testing.T) {
	e := newTestEcho()
	handler := NewReportHandler(&stubReportService{
		runFn: func(context.Context, ports.ReportInput) (*ports.ReportResult, error) {
			return nil, domain.ErrForbidden
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/reports", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setIdentity(c, "employee")

	if err := handler.Run(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestReportHandler_Export_CSV(t *testing.T) {
	e := newTestEcho()
	handler := NewReportHandler(&stubReportService{
		runFn: func(context.Context, ports.ReportInput) (*ports.ReportResult, error) {
			return sampleReport(), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/export?from=2024-03-04&to=2024-03-10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setIdentity(c, "manager")

	if err := handler.Export(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cd := rec.Header().Get(echo.HeaderContentDisposition)
	if !strings.Contains(cd, "master_time_log_2024-03-04_to_2024-03-10.csv") {
		t.Errorf("content disposition: %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "Ana Torres") {
		t.Error("csv body missing data row")
	}
}

func TestReportHandler_Export_XLSX(t *testing.T) {
	e := newTestEcho()
	handler := NewReportHandler(&stubReportService{
		runFn: func(context.Context, ports.ReportInput) (*ports.ReportResult, error) {
			return sampleReport(), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/export?from=2024-03-04&to=2024-03-10&format=xlsx", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setIdentity(c, "manager")

	if err := handler.Export(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type: %q", ct)
	}
	if !strings.Contains(rec.Header().Get(echo.HeaderContentDisposition), ".xlsx") {
		t.Errorf("content disposition: %q", rec.Header().Get(echo.HeaderContentDisposition))
	}
}

func TestReportHandler_Export_FilenameBoundsFromRows(t *testing.T) {
	e := newTestEcho()
	handler := NewReportHandler(&stubReportService{
		runFn: func(context.Context, ports.ReportInput) (*ports.ReportResult, error) {
			older := *sampleTodayView()
			older.Date = "2024-03-04"
			newer := *sampleTodayView()
			newer.Date = "2024-03-06"
			return &ports.ReportResult{Detail: []ports.TimeLogView{newer, older}}, nil
		},
	})

	// no explicit bounds: filename falls back to the detail rows
	req := httptest.NewRequest(http.MethodGet, "/v1/reports/export", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setIdentity(c, "manager")

	if err := handler.Export(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	cd := rec.Header().Get(echo.HeaderContentDisposition)
	if !strings.Contains(cd, "master_time_log_2024-03-04_to_2024-03-06.csv") {
		t.Errorf("content disposition: %q", cd)
	}
}
