// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"
)

// NewRouter registra as rotas de leitura sob o prefixo configurado
// (default /items):
//
//	GET /items                 Scan
//	GET /items/{hash}          Query
//	GET /items/{hash}/{sort}   GetItem
func NewRouter(svc *Service) *mux.Router {
	route := "/items"
	if svc.Config != nil {
		route = svc.Config.Server.RoutePrefix()
	}

	r := mux.NewRouter()
	r.Use(ObservabilityMiddleware(svc.Logger))

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		svc.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc(route, svc.handleScan).Methods(http.MethodGet)
	r.HandleFunc(route+"/{hash}", svc.handleQuery).Methods(http.MethodGet)
	r.HandleFunc(route+"/{hash}/{sort}", svc.handleGet).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		svc.writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		svc.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	return r
}

func (s *Service) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	resp, err := s.Scan(ctx, r.URL.Query())
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	resp, err := s.Query(ctx, mux.Vars(r)["hash"], r.URL.Query())
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	vars := mux.Vars(r)
	item, err := s.Get(ctx, vars["hash"], vars["sort"])
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

// StartHTTPServer serve a API até ctx ser cancelado e então faz shutdown gracioso.
func StartHTTPServer(ctx context.Context, svc *Service) error {
	port := 8080
	if svc.Config != nil && svc.Config.Server.Port != 0 {
		port = svc.Config.Server.Port
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewRouter(svc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		svc.Logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc.Logger.Info().Msg("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// --- MIDDLEWARE DE OBSERVABILIDADE ---
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	startTime   time.Time
	wroteHeader bool
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	duration := time.Since(rw.startTime)
	rw.Header().Set(HeaderLatency, fmt.Sprintf("%d", duration.Milliseconds()))
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// ObservabilityMiddleware propaga/gera o correlation id, mede a latência e
// loga cada requisição. O logger com correlation_id fica no contexto
// (zerolog.Ctx).
func ObservabilityMiddleware(base zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			corrID := r.Header.Get(HeaderCorrelationID)
			if corrID == "" {
				corrID = uuid.NewString()
			}
			w.Header().Set(HeaderCorrelationID, corrID)

			logger := base.With().Str("correlation_id", corrID).Logger()
			ctx := logger.WithContext(r.Context())

			wrapper := &responseWriterWrapper{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				startTime:      start,
			}

			next.ServeHTTP(wrapper, r.WithContext(ctx))

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.statusCode).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Msg("request completed")
		})
	}
}
