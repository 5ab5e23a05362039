package otahttp

import (
	"fmt"
	"net/http"
	"net/url"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/frantjc/ota"
	"github.com/frantjc/ota/internal/otaerr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	PathIndex     = "/"
	PathStatus    = "/api/status"
	PathUpload    = "/api/upload"
	PathUploads   = "/static/uploads"
	PathManifests = "/static/manifests"
	PathHealthz   = "/healthz"
	PathReadyz    = "/readyz"
	PathMetrics   = "/metrics"
)

type handler struct {
	Config
}

// NewHandler returns the HTTP API described by cfg.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Bucket == nil {
		return nil, fmt.Errorf("bucket is required")
	}

	cfg.init()

	var (
		h = &handler{Config: cfg}
		r = chi.NewRouter()
	)

	r.Use(
		middleware.RealIP,
		middleware.RequestID,
		h.observe,
		recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"*"},
			ExposedHeaders: []string{"ETag", "Content-Length"},
		}),
	)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5, contentTypeJSON))

		r.Get(PathIndex, handleErr(h.handleIndex))
		r.Get(PathStatus, handleErr(h.handleStatus))
		r.Post(PathUpload, handleErr(h.handleUpload))
	})

	r.Get(PathUploads+"/{file}", handleErr(h.handleUploads))
	r.Get(PathManifests+"/{file}", handleErr(h.handleManifests))

	r.Get(PathHealthz, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, "ok")
	})

	r.Get(PathReadyz, func(w http.ResponseWriter, r *http.Request) {
		if ok, err := h.Bucket.IsAccessible(r.Context()); err != nil || !ok {
			http.Error(w, "bucket inaccessible", http.StatusServiceUnavailable)
			return
		}

		_, _ = fmt.Fprint(w, "ok")
	})

	if h.MetricsHandler != nil {
		r.Method(http.MethodGet, PathMetrics, h.MetricsHandler)
	}

	r.NotFound(handleErr(func(_ http.ResponseWriter, r *http.Request) error {
		return otaerr.HTTPStatusCodeErrorWithMessage(
			fmt.Errorf("no route for %s", r.URL.Path),
			http.StatusNotFound,
			"Endpoint not found",
		)
	}))

	r.MethodNotAllowed(handleErr(func(_ http.ResponseWriter, r *http.Request) error {
		return otaerr.HTTPStatusCodeErrorWithMessage(
			fmt.Errorf("method %s not allowed for %s", r.Method, r.URL.Path),
			http.StatusMethodNotAllowed,
			"Method not allowed",
		)
	}))

	return r, nil
}

func (h *handler) baseURL(r *http.Request) (*url.URL, error) {
	if h.BaseURL != nil {
		return h.BaseURL, nil
	}

	return urlFromReq(r)
}

// observe carries a request-scoped logger in the request's context and
// records every request once it has been served.
func (h *handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			start = time.Now()
			ww    = middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			log   = ota.LoggerFrom(r.Context()).WithValues("requestID", middleware.GetReqID(r.Context()))
		)

		r = r.WithContext(ota.WithLogger(r.Context(), log))

		defer func() {
			var (
				duration = time.Since(start)
				status   = ww.Status()
				route    = "unmatched"
			)
			if status == 0 {
				status = http.StatusOK
			}

			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			h.Metrics.ObserveRequest(r.Method, route, strconv.Itoa(status), duration.Seconds())
			log.V(1).Info("served request",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", duration,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// recoverer turns a panic into an opaque 500.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				err, ok := rvr.(error)
				if !ok {
					err = fmt.Errorf("%v", rvr)
				}

				ota.LoggerFrom(r.Context()).Error(err, "recovered from panic", "stack", string(debug.Stack()))

				handleErr(func(http.ResponseWriter, *http.Request) error {
					return fmt.Errorf("panic: %w", err)
				})(w, r)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
