// Package web serves the dashboard widget over HTTP: an HTML page with the
// chart data injected as JSON, plus JSON endpoints for the client-side
// view switcher.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"nathanbeddoewebdev/cfdash/internal/dashboard"
	"nathanbeddoewebdev/cfdash/internal/observability"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// UserHeader carries the authenticated user set by a fronting proxy.
const UserHeader = "X-Forwarded-User"

//go:embed templates/*.html
var templateFS embed.FS

var widgetTemplate = template.Must(template.ParseFS(templateFS, "templates/widget.html"))

// Renderer produces dashboard view-models.
type Renderer interface {
	Render(ctx context.Context, req dashboard.Request) (*dashboard.ViewModel, error)
}

// Config wires a Server.
type Config struct {
	Renderer Renderer

	// DefaultUser is used when a request carries no UserHeader.
	DefaultUser string

	Logger   logrus.FieldLogger
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
}

// Server is the dashboard HTTP server.
type Server struct {
	renderer    Renderer
	defaultUser string
	log         logrus.FieldLogger
	metrics     *observability.Metrics
	gatherer    prometheus.Gatherer
	router      *mux.Router
}

// NewServer creates a Server and registers its routes.
func NewServer(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = observability.Discard()
	}
	s := &Server{
		renderer:    cfg.Renderer,
		defaultUser: cfg.DefaultUser,
		log:         log,
		metrics:     cfg.Metrics,
		gatherer:    cfg.Gatherer,
		router:      mux.NewRouter(),
	}
	s.RegisterRoutes(s.router)
	return s
}

// RegisterRoutes registers the dashboard routes on router.
func (s *Server) RegisterRoutes(router *mux.Router) {
	router.Use(s.logRequests)
	router.Use(observability.HTTPMetricsMiddleware(s.metrics, routeTemplate))

	router.HandleFunc("/", s.getWidget).Methods(http.MethodGet)
	router.HandleFunc("/api/dashboard", s.getDashboard).Methods(http.MethodGet)
	router.HandleFunc("/api/view", s.postView).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.getHealth).Methods(http.MethodGet)
	if s.gatherer != nil {
		router.Handle("/metrics", observability.Handler(s.gatherer)).Methods(http.MethodGet)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully. The address is bound before it returns control to the
// server goroutine, so a port in use is reported as an error.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.WithField("addr", ln.Addr().String()).Info("dashboard server listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// --- Handlers ---

// widgetData is the template input for the HTML widget.
type widgetData struct {
	View   *dashboard.ViewModel
	Script scriptData
}

// scriptData is injected into the page as JSON for the charting code.
type scriptData struct {
	*dashboard.ViewModel
	Client clientConfig `json:"client"`
}

// clientConfig tells the page how to request a different view.
type clientConfig struct {
	CurrentUser string `json:"current_user"`
	ViewURL     string `json:"view_url"`
}

// getWidget handles GET /.
func (s *Server) getWidget(w http.ResponseWriter, r *http.Request) {
	vm, ok := s.render(w, r, s.requestFromQuery(r))
	if !ok {
		return
	}

	data := widgetData{
		View: vm,
		Script: scriptData{
			ViewModel: vm,
			Client:    clientConfig{CurrentUser: vm.UserID, ViewURL: "/api/view"},
		},
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := widgetTemplate.Execute(w, data); err != nil {
		s.log.WithError(err).Error("failed to render widget template")
	}
}

// getDashboard handles GET /api/dashboard.
func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	vm, ok := s.render(w, r, s.requestFromQuery(r))
	if !ok {
		return
	}
	writeJSON(w, viewStatus(vm), vm)
}

// viewRequest is the body of POST /api/view.
type viewRequest struct {
	Range  string `json:"range"`
	Metric string `json:"metric"`
	User   string `json:"user"`
}

// postView handles POST /api/view. The body is either JSON or a form.
func (s *Server) postView(w http.ResponseWriter, r *http.Request) {
	var body viewRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form body"})
			return
		}
		body = viewRequest{
			Range:  r.PostForm.Get("range"),
			Metric: r.PostForm.Get("metric"),
			User:   r.PostForm.Get("user"),
		}
	}

	vm, ok := s.render(w, r, dashboard.Request{
		CurrentUserID:  s.currentUser(r),
		UserOverride:   body.User,
		RangeOverride:  body.Range,
		MetricOverride: body.Metric,
	})
	if !ok {
		return
	}
	writeJSON(w, viewStatus(vm), vm)
}

// getHealth handles GET /healthz.
func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Helpers ---

func (s *Server) render(w http.ResponseWriter, r *http.Request, req dashboard.Request) (*dashboard.ViewModel, bool) {
	vm, err := s.renderer.Render(r.Context(), req)
	if err != nil {
		s.log.WithError(err).Error("dashboard render failed")
		http.Error(w, "dashboard unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	return vm, true
}

func (s *Server) requestFromQuery(r *http.Request) dashboard.Request {
	q := r.URL.Query()
	return dashboard.Request{
		CurrentUserID:  s.currentUser(r),
		UserOverride:   q.Get("user"),
		RangeOverride:  q.Get("range"),
		MetricOverride: q.Get("metric"),
	}
}

// currentUser returns the proxy-supplied user, falling back to the
// configured default.
func (s *Server) currentUser(r *http.Request) string {
	if u := strings.TrimSpace(r.Header.Get(UserHeader)); u != "" {
		return u
	}
	if s.defaultUser != "" {
		return s.defaultUser
	}
	return "admin"
}

// viewStatus maps a failed fetch to 502 so API clients can tell it apart
// from a successful render; the body still carries the view-model.
func viewStatus(vm *dashboard.ViewModel) int {
	if vm.Failed() {
		return http.StatusBadGateway
	}
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// routeTemplate labels metrics with the matched route template.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := observability.WrapResponseWriter(w)
		next.ServeHTTP(rw, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rw.Status(),
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}
