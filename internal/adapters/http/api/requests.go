package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/gwrecon/internal/adapters/cipapi"
)

// InterpretationRequestHandler serves GET /api/2/interpretation-request.
type InterpretationRequestHandler struct {
	dir   Directory
	token string
}

// NewInterpretationRequestHandler creates the list handler.
func NewInterpretationRequestHandler(dir Directory, token string) *InterpretationRequestHandler {
	return &InterpretationRequestHandler{dir: dir, token: token}
}

// HandleList filters by the interpretation_request_id query parameter. The
// response always has the list envelope, with an empty results array on a miss.
func (h *InterpretationRequestHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if h.token != "" && r.Header.Get("Authorization") != "Bearer "+h.token {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}

	number := strings.TrimSpace(r.URL.Query().Get(cipapi.QueryParam))
	if number == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing %s", ErrBadRequest, cipapi.QueryParam))
		return
	}
	if _, err := strconv.ParseUint(number, 10, 64); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %s must be numeric", ErrBadRequest, cipapi.QueryParam))
		return
	}

	found, err := h.dir.InterpretationRequests(r.Context(), number)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	if found == nil {
		found = []cipapi.InterpretationRequest{}
	}
	writeJSON(w, http.StatusOK, cipapi.ListResponse{Count: len(found), Results: found})
}
