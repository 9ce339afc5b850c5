package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/stretchr/testify/assert"
)

func Test_NewHTTPServer(t *testing.T) {
	// given
	var cfg config.HTTPConfig
	cfg.Port = 8081
	cfg.MaxHeaderBytes = 4096
	cfg.Timeout.Read = time.Second
	cfg.Timeout.Write = 2 * time.Second
	cfg.Timeout.Idle = 3 * time.Second
	cfg.Timeout.ReadHeader = 4 * time.Second

	// when
	srv := NewHTTPServer("catalog", cfg, http.NotFoundHandler())

	// then
	assert.Equal(t, ":8081", srv.Addr)
	assert.Equal(t, 4096, srv.MaxHeaderBytes)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, srv.WriteTimeout)
	assert.Equal(t, 3*time.Second, srv.IdleTimeout)
	assert.Equal(t, 4*time.Second, srv.ReadHeaderTimeout)
}

func Test_NewChiRouter_Middleware(t *testing.T) {
	// given
	mux := NewChiRouter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux.Get("/panic", func(w http.ResponseWriter, r *http.Request) { panic("boom") })
	mux.Get("/ok", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	// when
	okRec := httptest.NewRecorder()
	mux.ServeHTTP(okRec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	panicRec := httptest.NewRecorder()
	mux.ServeHTTP(panicRec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	// then
	assert.Equal(t, http.StatusOK, okRec.Code)
	assert.NotEmpty(t, okRec.Header().Get(web.XRequestId))
	assert.Equal(t, http.StatusInternalServerError, panicRec.Code)
}

func Test_NewDiagnosticsServer(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "catalog_browse_requests_total 1\n")
	})
	testCases := []struct {
		name         string
		cfg          config.DiagnosticsConfig
		path         string
		expectedCode int
	}{
		{name: "metrics served", cfg: config.DiagnosticsConfig{Addr: ":9090", Metrics: true, MetricsPath: "/metrics"}, path: "/metrics", expectedCode: http.StatusOK},
		{name: "metrics disabled", cfg: config.DiagnosticsConfig{Addr: ":9090", PProf: true, MetricsPath: "/metrics"}, path: "/metrics", expectedCode: http.StatusNotFound},
		{name: "pprof index", cfg: config.DiagnosticsConfig{Addr: ":9090", PProf: true, MetricsPath: "/metrics"}, path: "/debug/pprof/", expectedCode: http.StatusOK},
		{name: "pprof disabled", cfg: config.DiagnosticsConfig{Addr: ":9090", Metrics: true, MetricsPath: "/metrics"}, path: "/debug/pprof/", expectedCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			srv := NewDiagnosticsServer(tc.cfg, metrics)
			rec := httptest.NewRecorder()
			// when
			srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			// then
			assert.Equal(t, ":9090", srv.Addr)
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}
