package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	mserrors "github.com/Rahulrocknov18/meetingsummarizer/pkg/errors"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/meetings"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/pipeline"
)

// multipartMemory caps the in-memory portion of multipart parsing;
// larger parts spill to disk.
const multipartMemory = 32 << 20

// errorResponse is the error body shape: code and retry_after appear only
// when applicable.
type errorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	RetryAfter string `json:"retry_after,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, pipeline.MaxUploadBytes+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.writeError(w, r, fmt.Errorf("%w: request body exceeds the upload limit", mserrors.ErrPayloadTooLarge))
			return
		}
		s.writeError(w, r, fmt.Errorf("%w: invalid multipart request: %v", mserrors.ErrValidation, err))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: no audio file provided", mserrors.ErrValidation))
		return
	}
	defer file.Close()

	m, err := s.ingestor.Ingest(r.Context(), pipeline.Upload{
		Title:       r.FormValue("title"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{"meeting": m})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListMeetings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*meetings.Meeting{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"meetings": list})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.store.GetDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	result, err := s.transcription.Run(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body := map[string]any{
		"success":    true,
		"transcript": result.Transcript,
		"duration":   result.DurationSeconds,
	}
	if result.AlreadyExisted {
		body["message"] = "Transcript already exists"
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	result, err := s.summarization.Run(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body := map[string]any{
		"success":      true,
		"summary":      result.Summary,
		"action_items": result.ActionItems,
	}
	if result.AlreadyExisted {
		body["message"] = "Summary already exists"
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": err.Error()})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", logging.Err(err))
	}
}

// writeError maps the error taxonomy onto HTTP statuses and the shared
// error body shape.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case mserrors.IsValidation(err):
		status = http.StatusBadRequest
	case mserrors.IsNotFound(err):
		status = http.StatusNotFound
	case mserrors.IsPayloadTooLarge(err):
		status = http.StatusRequestEntityTooLarge
	case mserrors.IsInvalidState(err):
		status = http.StatusConflict
		resp.Code = "INVALID_STATE"
	case mserrors.IsRateLimit(err):
		rle, _ := mserrors.AsRateLimit(err)
		status = http.StatusTooManyRequests
		resp.Code = "RATE_LIMIT_EXCEEDED"
		resp.RetryAfter = rle.RetryHint()
		resp.Error = fmt.Sprintf("Rate limit exceeded. Please wait %s and try again.", rle.RetryHint())
	}

	if status >= http.StatusInternalServerError {
		s.logger.WithContext(r.Context()).Error("request failed",
			logging.Err(err),
			logging.F("method", r.Method),
			logging.F("path", r.URL.Path))
	}

	s.writeJSON(w, status, resp)
}
