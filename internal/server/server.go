// Package server exposes a remote.Store over HTTP so several daybook
// devices can share one todo list.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sandeepkv93/daybook/internal/remote"
)

const DefaultBasePath = "/v1"

type Config struct {
	Store    remote.Store
	BasePath string
	Auth     AuthConfig
	Logger   *slog.Logger
}

type apiErrorBody struct {
	Code    string `json:"code" example:"not_found"`
	Message string `json:"message" example:"remote: record not found"`
}

// apiError is the {"error":{code,message}} envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns the HTTP handler serving cfg.Store.
func New(cfg Config) (http.Handler, error) {
	if cfg.Store == nil {
		return nil, errors.New("server: store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = DefaultBasePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	router.Use(requestLogger(logger))

	hcfg := huma.DefaultConfig("daybook API", "1.0.0")
	hcfg.DocsPath = ""
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group, cfg.Store)
	registerTodos(group, cfg.Store)
	return router, nil
}

func newAPIError(status int, code, message string) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{status: status, Body: apiErrorBody{Code: code, Message: message}}
}

func handleError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, remote.ErrNotFound):
		return newAPIError(http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, remote.ErrConflict):
		return newAPIError(http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, remote.ErrInvalidField):
		return newAPIError(http.StatusBadRequest, "bad_request", err.Error())
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			p, _ := PrincipalFromContext(r.Context())
			logger.Debug("http request",
				"subject", p.Subject,
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}

func registerHealth(api huma.API, store remote.Store) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		if p, ok := store.(remote.Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return nil, newAPIError(http.StatusServiceUnavailable, "unavailable", err.Error())
			}
		}
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

type listTodosResponse struct {
	Items []remote.Record `json:"items"`
}

type todoPath struct {
	ID string `path:"id"`
}

func registerTodos(api huma.API, store remote.Store) {
	huma.Register(api, huma.Operation{
		OperationID: "list-todos",
		Method:      http.MethodGet,
		Path:        "/todos",
		Summary:     "List every todo",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body listTodosResponse `json:"body"`
	}, error) {
		items, err := store.SelectAll(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		if items == nil {
			items = []remote.Record{}
		}
		return &struct {
			Body listTodosResponse `json:"body"`
		}{Body: listTodosResponse{Items: items}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "insert-todo",
		Method:        http.MethodPost,
		Path:          "/todos",
		Summary:       "Insert a todo",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		RawBody []byte `contentType:"application/json"`
	}) (*struct {
		Body remote.Record `json:"body"`
	}, error) {
		var rec remote.Record
		if err := json.Unmarshal(input.RawBody, &rec); err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body must be a todo record")
		}
		if err := validateRecord(rec); err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error())
		}
		if err := store.Insert(ctx, rec); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body remote.Record `json:"body"`
		}{Body: rec}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "update-todo",
		Method:        http.MethodPatch,
		Path:          "/todos/{id}",
		Summary:       "Update selected fields of a todo",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID      string `path:"id"`
		RawBody []byte `contentType:"application/json"`
	}) (*struct{}, error) {
		var fields remote.Fields
		if err := json.Unmarshal(input.RawBody, &fields); err != nil || len(fields) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body must be a non-empty object")
		}
		if err := store.Update(ctx, input.ID, fields); err != nil {
			return nil, handleError(err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-todo",
		Method:        http.MethodDelete,
		Path:          "/todos/{id}",
		Summary:       "Delete a todo",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, func(ctx context.Context, input *todoPath) (*struct{}, error) {
		if err := store.Delete(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return nil, nil
	})
}

func validateRecord(rec remote.Record) error {
	switch {
	case strings.TrimSpace(rec.ID) == "":
		return errors.New("id is required")
	case strings.TrimSpace(rec.Text) == "":
		return errors.New("text is required")
	case rec.TargetDate == "":
		return errors.New("target_date is required")
	}
	if _, err := remote.ParseTimestamp(rec.UpdatedAt); err != nil {
		return fmt.Errorf("updated_at: %w", err)
	}
	if _, err := remote.ParseTimestamp(rec.CreatedAt); err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	return nil
}

// Serve runs handler on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	logger.Info("serving daybook API", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
