package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matzehuels/treerings/pkg/errors"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

type errResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps err onto a status through its error code. Internal
// errors are logged and answered without detail.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var rl *errors.RateLimitedError
	if errors.As(err, &rl) {
		if rl.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
		}
		s.writeJSON(w, http.StatusTooManyRequests, errResponse{Error: rl.Error(), Code: string(errors.ErrCodeRateLimited)})
		return
	}

	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
		s.writeJSON(w, status, errResponse{Error: http.StatusText(status), Code: string(errors.GetCode(err))})
		return
	}
	s.writeJSON(w, status, errResponse{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))})
}
