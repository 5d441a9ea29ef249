// Package httpapi renders the service over HTTP: generic collection routes,
// workflow verbs and the legacy demo data endpoints.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"medshare/docs/openapi"
	"medshare/internal/core"
	"medshare/internal/metrics"
)

// Options configures the router.
type Options struct {
	Logger         core.Logger
	Metrics        *metrics.Metrics
	CORSOrigins    []string
	RateLimitRPS   float64 // 0 disables rate limiting
	RateLimitBurst int
}

// API binds HTTP handlers to a service.
type API struct {
	svc    *core.Service
	logger core.Logger
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func serveSpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openapi.APISpec)
}

// NewRouter returns the complete HTTP handler for svc.
func NewRouter(svc *core.Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	a := &API{svc: svc, logger: logger}

	// Outer middleware wraps the router so unmatched routes and CORS
	// preflights are covered too.
	var h http.Handler = a.routes(opts.Metrics)
	if opts.RateLimitRPS > 0 {
		h = newRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).handler(h)
	}
	h = cors(opts.CORSOrigins)(h)
	h = accessLog(logger)(h)
	return requestID(h)
}

func (a *API) routes(m *metrics.Metrics) *mux.Router {
	r := mux.NewRouter()
	if m != nil {
		r.Use(m.Middleware)
		r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", a.health).Methods(http.MethodGet)
	api.HandleFunc("/openapi.yaml", serveSpec).Methods(http.MethodGet)
	api.HandleFunc("/clear", a.clearAll).Methods(http.MethodPost)

	api.HandleFunc("/data", a.listDemo).Methods(http.MethodGet)
	api.HandleFunc("/data", a.createDemo).Methods(http.MethodPost)
	api.HandleFunc("/data/{id}", a.deleteDemo).Methods(http.MethodDelete)

	api.HandleFunc("/fund/summary", a.fundSummary).Methods(http.MethodGet)
	api.HandleFunc("/purchases", a.recordPurchase).Methods(http.MethodPost)
	api.HandleFunc("/notifications/clear", a.clearNotifications).Methods(http.MethodPost)

	api.HandleFunc("/micro-grants", a.listGrants).Methods(http.MethodGet)
	api.HandleFunc("/micro-grants", a.requestGrant).Methods(http.MethodPost)
	api.HandleFunc("/micro-grants/{id}/support", a.supportGrant).Methods(http.MethodPost)

	api.HandleFunc("/wishlists/{id}/approve", a.approveWishlist).Methods(http.MethodPost)
	api.HandleFunc("/wishlists/{id}/reject", a.rejectWishlist).Methods(http.MethodPost)

	api.HandleFunc("/donations/{id}/claim", a.claimDonation).Methods(http.MethodPost)
	api.HandleFunc("/donations/{id}/approve-claim", a.approveClaim).Methods(http.MethodPost)
	api.HandleFunc("/donations/{id}/reject-claim", a.rejectClaim).Methods(http.MethodPost)
	api.HandleFunc("/donations/{id}/cancel-claim", a.cancelClaim).Methods(http.MethodPost)

	api.HandleFunc("/{collection}", a.listRecords).Methods(http.MethodGet)
	api.HandleFunc("/{collection}", a.createRecord).Methods(http.MethodPost)
	api.HandleFunc("/{collection}/{id}", a.getRecord).Methods(http.MethodGet)
	api.HandleFunc("/{collection}/{id}", a.updateRecord).Methods(http.MethodPatch, http.MethodPut)
	api.HandleFunc("/{collection}/{id}", a.deleteRecord).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
