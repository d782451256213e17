package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tasklet/internal/api"
	"tasklet/internal/media"
)

const maxJSONBody = 1 << 20

// apiError pins an HTTP status and numeric code to an error. The first
// classification wins: wrapping an apiError in another constructor keeps the
// inner status.
type apiError struct {
	status  int
	errCode int
	err     error
}

func (e apiError) Error() string {
	if e.err == nil {
		return http.StatusText(e.status)
	}
	return e.err.Error()
}

func (e apiError) Unwrap() error { return e.err }

func classify(status, code int, err error) error {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}
	var existing apiError
	if errors.As(err, &existing) && existing.status != 0 {
		return existing
	}
	return apiError{status: status, errCode: code, err: err}
}

func badRequest(err error) error { return badRequestCode(err, ErrCodeInvalidArgument) }

func badRequestCode(err error, code int) error {
	return classify(http.StatusBadRequest, code, err)
}

func notFound(err error) error { return notFoundCode(err, ErrCodeTodoNotFound) }

func notFoundCode(err error, code int) error {
	return classify(http.StatusNotFound, code, err)
}

// uploadFailed is a client error: the caller sent a file the host refused.
func uploadFailed(err error) error {
	var upErr *media.UploadError
	if !errors.As(err, &upErr) {
		err = &media.UploadError{Err: err}
	}
	return classify(http.StatusBadRequest, ErrCodeUploadFailed, err)
}

func internalError(err error) error {
	return classify(http.StatusInternalServerError, ErrCodeInternal, err)
}

func storeFailure(err error) error {
	return classify(http.StatusInternalServerError, ErrCodeStoreFailure, err)
}

func httpStatusFromError(err error) int {
	var apiErr apiError
	if errors.As(err, &apiErr) {
		return apiErr.status
	}
	return http.StatusInternalServerError
}

func errorNumericCode(status int, err error) int {
	var apiErr apiError
	if errors.As(err, &apiErr) && apiErr.errCode > 0 {
		return apiErr.errCode
	}
	return defaultErrorCodeByStatus(status)
}

func errorCode(status int, err error) string {
	return errorSlugs[errorNumericCode(status, err)]
}

// writeErrorReq renders the error envelope. 5xx messages are replaced so
// store or host details never reach the client; the log keeps them.
func (s *Server) writeErrorReq(w http.ResponseWriter, r *http.Request, status int, err error) {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}
	resp := api.ErrorResponse{
		Error:     err.Error(),
		Code:      errorCode(status, err),
		ErrorCode: errorNumericCode(status, err),
	}

	logger := s.log().With("status", status, "code", resp.Code, "error_code", resp.ErrorCode)
	if r != nil {
		logger = logger.With("method", r.Method, "path", r.URL.Path)
	}
	if id := w.Header().Get(requestIDHeader); id != "" {
		logger = logger.With("request_id", id)
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		resp.Error = "internal error"
	} else {
		logger.Debug("request rejected", "error", err)
	}

	s.writeJSON(w, status, resp)
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeErrorReq(w, r, httpStatusFromError(err), err)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("encode response", "status", status, "error", err)
	}
}

// errEmptyBody is returned by decodeJSON when the body holds no JSON value at
// all, as opposed to a truncated or malformed one.
var errEmptyBody = badRequestCode(errors.New("request body is empty"), ErrCodeInvalidJSON)

// decodeJSON reads exactly one JSON value, capped at maxJSONBody.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err == nil && dec.More() {
		err = errors.New("unexpected trailing data after JSON payload")
	}

	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case err == io.EOF:
		return errEmptyBody
	case errors.As(err, &tooLarge):
		return badRequestCode(errors.New("request body too large"), ErrCodeRequestTooLarge)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return badRequestCode(errors.New("invalid JSON payload"), ErrCodeInvalidJSON)
	}
	return badRequestCode(err, ErrCodeInvalidJSON)
}

func classifyMultipartError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(strings.ToLower(err.Error()), "request body too large") {
		return badRequestCode(errors.New("request body too large"), ErrCodeRequestTooLarge)
	}
	return badRequest(err)
}

// pathIDOrNotFound answers 404 for ids no store could have issued, before the
// body is read.
func (s *Server) pathIDOrNotFound(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if !validateID(id) {
		s.writeErrorReq(w, r, http.StatusNotFound, notFound(fmt.Errorf("todo %q not found", id)))
		return "", false
	}
	return id, true
}
