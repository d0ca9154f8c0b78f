// Package api serves a stand-in for the CIP-API interpretation request list
// endpoint, used for local runs against fixture data.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/gwrecon/internal/adapters/cipapi"
)

// Directory answers interpretation request lookups.
type Directory interface {
	InterpretationRequests(ctx context.Context, requestNumber string) ([]cipapi.InterpretationRequest, error)
}

// Server wires the stub routes.
type Server struct {
	healthHandler   *HealthHandler
	requestsHandler *InterpretationRequestHandler
}

// NewServer creates a server answering from dir. A non-empty token is
// required as a bearer credential on the list endpoint.
func NewServer(dir Directory, token string) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		requestsHandler: NewInterpretationRequestHandler(dir, token),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc(cipapi.ListPath, MetricsMiddleware(s.requestsHandler.HandleList, "interpretation_request"))
	mux.HandleFunc(cipapi.ListPath+"/", MetricsMiddleware(s.requestsHandler.HandleList, "interpretation_request"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
