package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "descstats/internal/errors"
	"descstats/internal/services"
	"descstats/internal/shared/testutil"
	"descstats/pkg/contracts"
	"descstats/pkg/contracts/domain"
)

// MockReportService is a mock implementation of ReportServiceInterface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ListReports(ctx context.Context) ([]services.ReportSummary, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.ReportSummary), args.Error(1)
}

func (m *MockReportService) GetReport(ctx context.Context, engine string) (*domain.Report, error) {
	args := m.Called(engine)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportService) GetDataset(ctx context.Context, engine, dataset string) (*domain.Section, error) {
	args := m.Called(engine, dataset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Section), args.Error(1)
}

func (m *MockReportService) GetColumn(ctx context.Context, engine, dataset, column string) (*services.ColumnResult, error) {
	args := m.Called(engine, dataset, column)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ColumnResult), args.Error(1)
}

func (m *MockReportService) ListFigures(ctx context.Context) ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func likeCountStats() domain.ColumnStats {
	st := domain.ColumnStats{Count: 3}
	st.SetNumeric(8, 4, 12)
	st.SetStdDev(4)
	return st
}

func flatSection() *domain.Section {
	cols := domain.NewColumnSet()
	cols.Set("likeCount", likeCountStats())
	return &domain.Section{Columns: cols}
}

func newRouter(t *testing.T, svc ReportServiceInterface) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	handler := NewReportsHandler(svc, logger, apierrors.NewErrorHandler(logger, false, nil))

	r := chi.NewRouter()
	r.Mount("/api/reports", handler.Routes())
	r.Get("/api/figures", handler.ListFigures)
	return r
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReportsHandler_ListReports(t *testing.T) {
	updated := time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name           string
		setupMock      func(*MockReportService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "lists generated reports",
			setupMock: func(m *MockReportService) {
				m.On("ListReports").Return([]services.ReportSummary{
					{Engine: "pure", Datasets: []string{"fb_ads"}, UpdatedAt: updated, SizeBytes: 10},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"count":1,"data":[{"engine":"pure","datasets":["fb_ads"],"updated_at":"2024-11-05T12:00:00Z","size_bytes":10}]}`,
		},
		{
			name: "no reports yet",
			setupMock: func(m *MockReportService) {
				m.On("ListReports").Return([]services.ReportSummary{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"count":0,"data":[]}`,
		},
		{
			name: "storage failure",
			setupMock: func(m *MockReportService) {
				m.On("ListReports").Return(nil, errors.New("disk gone"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"Internal Server Error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReportService)
			tt.setupMock(svc)

			rec := serve(newRouter(t, svc), "/api/reports")

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestReportsHandler_GetReport(t *testing.T) {
	rep := domain.NewReport()
	rep.Set("tw_posts", flatSection())

	svc := new(MockReportService)
	svc.On("GetReport", "frame").Return(rep, nil)
	svc.On("GetReport", "columnar").Return(nil, fmt.Errorf("%w: columnar", services.ErrReportMissing))

	router := newRouter(t, svc)

	rec := serve(router, "/api/reports/frame")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), `{"tw_posts":{"likeCount":{"count":3,"mean":8`))

	rec = serve(router, "/api/reports/columnar")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"report not found"`)

	svc.AssertExpectations(t)
}

func TestReportsHandler_InvalidEngine(t *testing.T) {
	svc := new(MockReportService)
	rec := serve(newRouter(t, svc), "/api/reports/Bad..Name")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/errors/validation"`)
	svc.AssertNotCalled(t, "GetReport", mock.Anything)
}

func TestReportsHandler_GetDataset(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMock      func(*MockReportService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "found",
			path: "/api/reports/pure/tw_posts",
			setupMock: func(m *MockReportService) {
				m.On("GetDataset", "pure", "tw_posts").Return(flatSection(), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"likeCount":{"count":3`,
		},
		{
			name: "absent dataset",
			path: "/api/reports/pure/fb_posts",
			setupMock: func(m *MockReportService) {
				m.On("GetDataset", "pure", "fb_posts").Return(nil, apierrors.NewNotFoundError("dataset"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"/errors/not-found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReportService)
			tt.setupMock(svc)

			rec := serve(newRouter(t, svc), tt.path)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestReportsHandler_GetColumn(t *testing.T) {
	svc := new(MockReportService)
	svc.On("GetColumn", "columnar", "tw_posts", "likeCount").Return(&services.ColumnResult{
		Engine: "columnar", Dataset: "tw_posts", Column: "likeCount", Stats: likeCountStats(),
	}, nil)

	rec := serve(newRouter(t, svc), "/api/reports/columnar/tw_posts/columns/likeCount")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Column string             `json:"column"`
		Stats  domain.ColumnStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "likeCount", body.Column)
	assert.Equal(t, 3, body.Stats.Count)
	assert.Equal(t, 4.0, *body.Stats.StdDev)
	svc.AssertExpectations(t)
}

func TestReportsHandler_ListFigures(t *testing.T) {
	svc := new(MockReportService)
	svc.On("ListFigures").Return([]string{"tw_posts/lang_bar.png"}, nil)

	rec := serve(newRouter(t, svc), "/api/figures")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":1,"data":["tw_posts/lang_bar.png"]}`, rec.Body.String())
}

func TestServeIndex(t *testing.T) {
	svc := new(MockReportService)
	svc.On("ListReports").Return([]services.ReportSummary{
		{Engine: "pure", Datasets: []string{"fb_ads", "tw_posts"}},
	}, nil)
	svc.On("ListFigures").Return([]string{}, nil)

	rec := serve(ServeIndex(svc, nil), "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `href="/api/reports/pure/tw_posts"`)
	assert.Contains(t, rec.Body.String(), "No figures rendered yet.")
}

type stubHealth struct{ ready string }

func (s stubHealth) HealthCheck(context.Context) services.HealthStatus {
	return services.HealthStatus{Status: "ok"}
}

func (s stubHealth) ReadinessCheck(context.Context) services.ReadinessStatus {
	return services.ReadinessStatus{Status: s.ready, OutputDir: "/out"}
}

func (s stubHealth) Version() contracts.VersionInfo {
	return contracts.VersionInfo{Version: "1.2.3"}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		health         stubHealth
		handler        func(*HealthHandler) http.HandlerFunc
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "health",
			handler:        func(h *HealthHandler) http.HandlerFunc { return h.HealthCheck },
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ok"}`,
		},
		{
			name:           "ready",
			health:         stubHealth{ready: "ok"},
			handler:        func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"ok"`,
		},
		{
			name:           "degraded",
			health:         stubHealth{ready: "degraded"},
			handler:        func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `"status":"degraded"`,
		},
		{
			name:           "version",
			handler:        func(h *HealthHandler) http.HandlerFunc { return h.Version },
			expectedStatus: http.StatusOK,
			expectedBody:   `"version":"1.2.3"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.health, nil)
			rec := serve(tt.handler(h), "/")

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	eh := apierrors.NewErrorHandler(nil, false, nil)

	rec := serve(NewMetricsHandler(nil, eh), "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	exporter := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("descstats_rows_loaded_total 6\n"))
	})
	rec = serve(NewMetricsHandler(exporter, eh), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "descstats_rows_loaded_total")
}
