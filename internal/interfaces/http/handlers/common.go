package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lexclock/pkg/errors"
)

// DefaultMaxBodySize bounds request bodies when no limit is configured.
const DefaultMaxBodySize = 1 << 20

// internalErrorBody is written when a response value cannot be encoded.
var internalErrorBody = []byte(`{"code":"` + string(errors.ErrCodeInternal) + `","message":"internal server error"}` + "\n")

// writeJSON writes a JSON response with the given status code. The body is
// encoded before the header goes out so an unencodable value becomes a 500
// rather than a truncated success.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if data == nil {
		w.WriteHeader(statusCode)
		return
	}
	body, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(internalErrorBody)
		return
	}
	w.WriteHeader(statusCode)
	_, _ = w.Write(append(body, '\n'))
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeAppError maps err to its HTTP status via the error code table.
// Server-side failures are logged and masked.
func writeAppError(w http.ResponseWriter, logger logging.Logger, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Error("request failed", logging.Err(err))
		writeJSON(w, status, ErrorResponse{
			Code:    string(errors.ErrCodeInternal),
			Message: "internal server error",
		})
		return
	}

	resp := ErrorResponse{Code: string(errors.GetCode(err)), Message: err.Error()}
	if ae, ok := errors.AsAppError(err); ok {
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads a JSON body of at most maxBytes into dst. Unknown fields
// are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst interface{}) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return errors.InvalidParam("request body is empty")
		}
		return errors.InvalidParam("malformed JSON request body").WithCause(err).WithDetail(err.Error())
	}
	if dec.More() {
		return errors.InvalidParam("request body must contain a single JSON object")
	}
	return nil
}
