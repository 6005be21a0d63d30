package devremote

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
	"github.com/bunkbed-tech/fushigi-sub000/internal/validation"
)

// Server serves the record API.
type Server struct {
	store     *Store
	validator *validation.Validator
	token     string
	router    *chi.Mux
	api       huma.API
	logger    *slog.Logger
}

// ServerOptions configures a Server.
type ServerOptions struct {
	// Token, when set, must be presented as a bearer credential.
	Token string
	// RateLimit caps requests per second per client; zero disables it.
	RateLimit float64
	Burst     int
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewServer creates a Server over store.
func NewServer(store *Store, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	if opts.RateLimit > 0 {
		now := opts.Now
		if now == nil {
			now = time.Now
		}
		router.Use(newClientLimiter(opts.RateLimit, opts.Burst, now).middleware(logger))
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	config := huma.DefaultConfig("Fushigi dev record service", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	s := &Server{
		store:     store,
		validator: validation.New(),
		token:     opts.Token,
		router:    router,
		api:       humachi.New(router, config),
		logger:    logger,
	}
	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
	}, s.handleHealth)

	huma.Register(s.api, huma.Operation{
		OperationID: "listRecords",
		Method:      http.MethodGet,
		Path:        "/api/collections/{collection}/records",
		Summary:     "List records",
		Description: "Returns one page of a collection in insertion order.",
		Tags:        []string{"Records"},
	}, s.handleList)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createRecord",
		Method:        http.MethodPost,
		Path:          "/api/collections/{collection}/records",
		Summary:       "Create record",
		Tags:          []string{"Records"},
		DefaultStatus: http.StatusOK,
	}, s.handleCreate)
}

// HealthOutput is the health response.
type HealthOutput struct {
	Body struct {
		Status string `json:"status" doc:"Always ok while the server runs"`
	}
}

func (s *Server) handleHealth(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	out := &HealthOutput{}
	out.Body.Status = "ok"
	return out, nil
}

// ListInput is the list request.
type ListInput struct {
	Authorization string `header:"Authorization"`
	Collection    string `path:"collection"`
	Page          int    `query:"page" default:"1" minimum:"1"`
	PerPage       int    `query:"perPage" default:"30" minimum:"1" maximum:"500"`
}

// ListOutput is the list response.
type ListOutput struct {
	Body *Page
}

func (s *Server) handleList(ctx context.Context, input *ListInput) (*ListOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}
	if _, ok := collections[input.Collection]; !ok {
		return nil, huma.Error404NotFound("collection " + input.Collection + " not found")
	}

	page, err := s.store.List(ctx, input.Collection, input.Page, input.PerPage)
	if err != nil {
		return nil, s.toHumaError(err)
	}
	return &ListOutput{Body: page}, nil
}

// CreateInput is the create request.
type CreateInput struct {
	Authorization string `header:"Authorization"`
	Collection    string `path:"collection"`
	Body          map[string]any
}

// CreateOutput is the create response.
type CreateOutput struct {
	Body Record
}

func (s *Server) handleCreate(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	if err := s.authorize(input.Authorization); err != nil {
		return nil, err
	}
	if err := checkCreate(s.validator, input.Collection, input.Body); err != nil {
		return nil, s.toHumaError(err)
	}

	rec, err := s.store.Create(ctx, input.Collection, input.Body)
	if err != nil {
		return nil, s.toHumaError(err)
	}
	return &CreateOutput{Body: rec}, nil
}

func (s *Server) authorize(header string) error {
	if s.token == "" {
		return nil
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token != s.token {
		return huma.Error401Unauthorized("The request requires valid record authorization token.")
	}
	return nil
}

// toHumaError maps a domain error to an HTTP error.
func (s *Server) toHumaError(err error) error {
	switch domainerrors.CodeOf(err) {
	case domainerrors.CodeValidation, domainerrors.CodeAlreadyExists:
		return huma.Error400BadRequest("Failed to create record.", err)
	case domainerrors.CodeNotFound:
		return huma.Error404NotFound(err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		return huma.Error500InternalServerError("Something went wrong while processing your request.")
	}
}
