package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/generation"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/types"
)

// Response bodies of the generation endpoint. Causes are logged, never sent.
const (
	msgTranscriptRequired = "transcript is required"
	msgGenerationFailed   = "Failed to generate SOAP note"
	msgBodyTooLarge       = "request body too large"
)

// handleGenerate turns a posted transcript into a note with the server-side
// credential
func (s *Service) handleGenerate(w http.ResponseWriter, r *http.Request) {
	log := s.logger.WithContext(r.Context())

	if s.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	}

	var req generation.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		log.WithError(err).Debug("Rejected undecodable generate request")
		s.writeErrorResponse(w, http.StatusBadRequest, msgTranscriptRequired)
		return
	}

	if err := s.validate.Struct(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, msgTranscriptRequired)
		return
	}

	note, err := s.generator.Generate(r.Context(), req.Transcript)
	if err != nil {
		if types.TypeOf(err) == types.ErrorTypeInput {
			s.writeErrorResponse(w, http.StatusBadRequest, msgTranscriptRequired)
			return
		}
		log.WithError(err).WithField("error_type", types.TypeOf(err)).Error("Error generating SOAP note")
		s.writeErrorResponse(w, http.StatusInternalServerError, msgGenerationFailed)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, generation.GenerateResponse{Note: note.Normalized()})
}

// writeJSONResponse writes a JSON response. HTML characters in clinical text
// are written as is.
func (s *Service) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		s.logger.WithError(err).Error("Failed to encode JSON response")
	}
}

// writeErrorResponse writes {"error": message}
func (s *Service) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, generation.ErrorResponse{Error: message})
}
