package chi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prospector/internal/domain"
	enrichuc "github.com/kailas-cloud/prospector/internal/usecase/enrich"
	healthuc "github.com/kailas-cloud/prospector/internal/usecase/health"
	searchuc "github.com/kailas-cloud/prospector/internal/usecase/search"
)

// Credit balance response headers.
const (
	headerCreditsRemaining = "X-Credits-Remaining"
	headerCreditsLimit     = "X-Credits-Limit"
)

// Server serves the search and enrichment API.
type Server struct {
	search        *searchuc.Service
	enrich        *enrichuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	enrich *enrichuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:        search,
		enrich:        enrich,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Mount registers the API routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(creditsMiddleware)

		r.Post("/person/search", s.SearchPeople)
		r.Post("/person/enrich", s.EnrichPerson)
		r.Post("/person/enrich/bulk", s.BulkEnrichPeople)
		r.Post("/person/identify", s.IdentifyPerson)
		r.Post("/company/search", s.SearchCompanies)
		r.Post("/company/enrich", s.EnrichCompany)
		r.Post("/ip/enrich", s.EnrichIP)
		r.Get("/ip/enrich", s.EnrichIP)
		r.Post("/job-title/enrich", s.EnrichJobTitle)
		r.Get("/job-title/enrich", s.EnrichJobTitle)
	})
}

// SearchPeople handles POST /api/v1/person/search.
// A body with sql runs that query verbatim; otherwise the filter fields build the query.
func (s *Server) SearchPeople(w http.ResponseWriter, r *http.Request) {
	var req personSearchRequest
	if !s.bind(w, r, &req) {
		return
	}
	f := req.filter()
	if req.isRaw() && !f.IsEmpty() {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "sql cannot be combined with filter fields")
		return
	}

	var (
		out any
		err error
	)
	if req.isRaw() {
		out, err = s.search.RunRawPeopleQuery(r.Context(), req.SQL, req.page())
	} else {
		out, err = s.search.SearchPeople(r.Context(), f, req.page())
	}
	s.respond(w, r, out, err)
}

// SearchCompanies handles POST /api/v1/company/search.
func (s *Server) SearchCompanies(w http.ResponseWriter, r *http.Request) {
	var req companySearchRequest
	if !s.bind(w, r, &req) {
		return
	}
	f := req.filter()
	if req.isRaw() && !f.IsEmpty() {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "sql cannot be combined with filter fields")
		return
	}

	var (
		out any
		err error
	)
	if req.isRaw() {
		out, err = s.search.RunRawCompanyQuery(r.Context(), req.SQL, req.page())
	} else {
		out, err = s.search.SearchCompanies(r.Context(), f, req.page())
	}
	s.respond(w, r, out, err)
}

// EnrichPerson handles POST /api/v1/person/enrich.
func (s *Server) EnrichPerson(w http.ResponseWriter, r *http.Request) {
	var req personEnrichRequest
	if !s.bind(w, r, &req) {
		return
	}
	out, err := s.enrich.EnrichPerson(r.Context(), req.lookup())
	s.respond(w, r, out, err)
}

// BulkEnrichPeople handles POST /api/v1/person/enrich/bulk.
func (s *Server) BulkEnrichPeople(w http.ResponseWriter, r *http.Request) {
	var req bulkEnrichRequest
	if !s.bind(w, r, &req) {
		return
	}
	out, err := s.enrich.BulkEnrichPeople(r.Context(), req.params())
	s.respond(w, r, out, err)
}

// IdentifyPerson handles POST /api/v1/person/identify.
func (s *Server) IdentifyPerson(w http.ResponseWriter, r *http.Request) {
	var req identifyRequest
	if !s.bind(w, r, &req) {
		return
	}
	out, err := s.enrich.IdentifyPerson(r.Context(), req.identity())
	s.respond(w, r, out, err)
}

// EnrichCompany handles POST /api/v1/company/enrich.
func (s *Server) EnrichCompany(w http.ResponseWriter, r *http.Request) {
	var req companyEnrichRequest
	if !s.bind(w, r, &req) {
		return
	}
	out, err := s.enrich.EnrichCompany(r.Context(), req.lookup())
	s.respond(w, r, out, err)
}

// EnrichIP handles GET and POST /api/v1/ip/enrich.
func (s *Server) EnrichIP(w http.ResponseWriter, r *http.Request) {
	var req ipEnrichRequest
	if !s.bind(w, r, &req, "ip") {
		return
	}
	out, err := s.enrich.EnrichIP(r.Context(), req.IP)
	s.respond(w, r, out, err)
}

// EnrichJobTitle handles GET and POST /api/v1/job-title/enrich.
func (s *Server) EnrichJobTitle(w http.ResponseWriter, r *http.Request) {
	var req jobTitleEnrichRequest
	if !s.bind(w, r, &req, "job_title") {
		return
	}
	out, err := s.enrich.EnrichJobTitle(r.Context(), req.JobTitle)
	s.respond(w, r, out, err)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// bind decodes the request into dst: the JSON body for POST, the named query parameters for GET.
// It writes a 400 and returns false on failure.
func (s *Server) bind(w http.ResponseWriter, r *http.Request, dst any, queryParams ...string) bool {
	var err error
	if r.Method == http.MethodGet {
		err = bindQuery(r, dst, queryParams...)
	} else {
		err = decodeJSON(r, dst)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return false
	}
	return true
}

// respond writes out as 200, or maps err to an error response.
// Either way the upstream credit balance is reported when known.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, out any, err error) {
	setCreditHeaders(w, domain.CreditsFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger.Warn("domain error", zap.String("path", r.URL.Path), zap.Error(err))
			return
		}
	}
	if errors.Is(err, context.Canceled) {
		s.logger.Info("request canceled", zap.String("path", r.URL.Path))
		return
	}
	s.logger.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

// creditsMiddleware installs the credit collector the upstream client writes into,
// unless an outer middleware already did.
func creditsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if domain.CreditsFromContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx, _ := domain.NewContextWithCredits(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func setCreditHeaders(w http.ResponseWriter, c *domain.Credits) {
	if c == nil || !c.Known {
		return
	}
	w.Header().Set(headerCreditsRemaining, strconv.Itoa(c.Remaining))
	w.Header().Set(headerCreditsLimit, strconv.Itoa(c.Limit))
}
