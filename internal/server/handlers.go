package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Xevion/go-buzz/internal"
	"github.com/Xevion/go-buzz/internal/audio"
	"github.com/Xevion/go-buzz/types"
)

func (s *Server) handleListTimes(w http.ResponseWriter, r *http.Request) {
	times := s.ctrl.Times()
	if times == nil {
		times = []types.BuzzTime{}
	}
	writeJSON(w, http.StatusOK, internal.TimesResponse{Times: times})
}

func (s *Server) handleAddTime(w http.ResponseWriter, r *http.Request) {
	var req internal.AddTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var (
		t     types.BuzzTime
		added bool
		err   error
	)
	switch {
	case req.Time != "" && req.Sun != "":
		writeError(w, http.StatusBadRequest, "set either time or sun, not both")
		return
	case req.Time != "":
		t, added, err = s.ctrl.AddTime(r.Context(), req.Time)
	case req.Sun == "sunrise" || req.Sun == "sunset":
		t, added, err = s.ctrl.AddSunTime(r.Context(), req.Sun == "sunset", req.Offset)
	default:
		writeError(w, http.StatusBadRequest, `time or sun ("sunrise" or "sunset") is required`)
		return
	}
	if err != nil {
		s.writeControllerError(w, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, internal.AddTimeResponse{Time: t, Added: added})
}

func (s *Server) handleRemoveTime(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ctrl.RemoveTime(r.Context(), types.TimeString(chi.URLParam(r, "time"))); err != nil {
		s.writeControllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if header.Size > s.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	if err := s.ctrl.SetClip(r.Context(), types.Clip{Name: header.Filename, Data: data}); err != nil {
		s.writeControllerError(w, err)
		return
	}
	s.logger.Info("Custom clip uploaded", "name", header.Filename, "size", len(data))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearAudio(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.ClearClip(r.Context()); err != nil {
		s.writeControllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	var req internal.VolumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.ctrl.SetVolume(req.Level); err != nil {
		s.writeControllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, internal.TestResponse{Started: s.ctrl.TestBuzz()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.ctrl.Status()
	if status.Times == nil {
		status.Times = []types.BuzzTime{}
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) writeControllerError(w http.ResponseWriter, err error) {
	if errors.Is(err, audio.ErrUnsupportedClip) || s.isBadRequest(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error("Request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, internal.ErrorResponse{Error: message})
}
