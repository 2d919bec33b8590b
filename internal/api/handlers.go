package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"roomdesk/internal/domain"
	"roomdesk/internal/export"
	"roomdesk/internal/models"
)

// statusFromError maps the domain error taxonomy onto HTTP statuses so
// every rejected operation tells the caller which precondition failed.
func statusFromError(err error) (int, string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.Is(err, domain.ErrSlotUnavailable):
		return http.StatusConflict, "slot unavailable"
	case errors.Is(err, domain.ErrNotPending):
		return http.StatusConflict, "booking is not pending"
	case errors.Is(err, domain.ErrAlreadyStarted):
		return http.StatusConflict, "booking has already started"
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusForbidden, "not authorized"
	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden, "not the booking owner"
	case errors.Is(err, domain.ErrBookingNotFound):
		return http.StatusNotFound, "booking not found"
	case errors.Is(err, domain.ErrRoomNotFound):
		return http.StatusNotFound, "room not found"
	case errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusNotFound, "profile not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (s *HTTPServer) writeDomainError(w http.ResponseWriter, err error) {
	code, message := statusFromError(err)
	if code == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request failed")
	}
	writeError(w, code, message)
}

func (s *HTTPServer) handleListRooms(w http.ResponseWriter, r *http.Request, actor models.Actor) {
	rooms, err := s.rooms.ListRooms(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (s *HTTPServer) handleRoomBookings(w http.ResponseWriter, r *http.Request, actor models.Actor) {
	roomID := r.PathValue("id")

	day := time.Now().UTC()
	if dateStr := strings.TrimSpace(r.URL.Query().Get("date")); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	bookings, err := s.bookings.ListRoomDay(r.Context(), roomID, day)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request, actor models.Actor) {
	roomID := r.PathValue("id")

	start, err := parseTimeParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseTimeParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	available, err := s.bookings.CheckSlot(r.Context(), roomID, start, end)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"available": available})
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request, actor models.Actor) {
	var req models.BookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.bookings.Create(r.Context(), actor, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request, actor models.Actor) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status != "" && status != models.StatusPending && status != models.StatusApproved && status != models.StatusRejected {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	// Admins may ask for everyone's bookings; users always get their own.
	if r.URL.Query().Get("all") != "" {
		from, to, err := parseRangeParams(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		bookings, err := s.bookings.ListAll(r.Context(), actor, status, from, to)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
		return
	}

	bookings, err := s.bookings.ListForUser(r.Context(), actor.ID, status)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

type transitionRequest struct {
	AdminNotes string `json:"admin_notes"`
}

func (s *HTTPServer) handleApprove(w http.ResponseWriter, r *http.Request, actor models.Actor) {
	s.handleTransition(w, r, actor, s.bookings.Approve)
}

func (s *HTTPServer) handleReject(w http.ResponseWriter, r *http.Request, actor models.Actor) {
	s.handleTransition(w, r, actor, s.bookings.Reject)
}

func (s *HTTPServer) handleTransition(w http.ResponseWriter, r *http.Request, actor models.Actor, transition func(ctx context.Context, actor models.Actor, id, adminNotes string) (*models.Booking, error)) {
	bookingID := r.PathValue("id")

	// Admin notes are optional; an empty or absent body is fine.
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := transition(r.Context(), actor, bookingID, strings.TrimSpace(req.AdminNotes))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleCancel(w http.ResponseWriter, r *http.Request, actor models.Actor) {
	if err := s.bookings.Cancel(r.Context(), actor, r.PathValue("id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request, actor models.Actor) {
	from, to, err := parseRangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if from.IsZero() {
		from = time.Now().UTC().AddDate(0, -1, 0)
	}
	if to.IsZero() {
		to = time.Now().UTC().AddDate(0, 2, 0)
	}

	bookings, err := s.bookings.ListAll(r.Context(), actor, "", from, to)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	workbook, err := export.Workbook(from, to, bookings)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	defer workbook.Close()

	fileName := fmt.Sprintf("bookings_%s_to_%s.xlsx", from.Format("2006-01-02"), to.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := workbook.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("export write error")
	}
}

func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s; expected RFC3339", name)
	}
	return t.UTC(), nil
}

func parseRangeParams(r *http.Request) (time.Time, time.Time, error) {
	var from, to time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid from; expected YYYY-MM-DD")
		}
		from = parsed
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid to; expected YYYY-MM-DD")
		}
		to = parsed.Add(24 * time.Hour)
	}
	return from, to, nil
}
