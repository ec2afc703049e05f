package handler // declare the package name; contains HTTP handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/confhall/waitlist-service/internal/model"
	"github.com/confhall/waitlist-service/internal/scheduler"
)

// timestampLayout is the wire format for start/end timestamps, per
// spec.md §6.1: "YYYY-MM-DD HH:MM:SS".
const timestampLayout = "2006-01-02 15:04:05"

// SchedulerHandler implements the HTTP surface over a Scheduler. Each
// method decodes a request, calls into the scheduler, and maps its
// sentinel errors to a status code — the same shape as the teacher's
// customer_reservation.go handlers calling a transactional repository
// method and switching on the returned sentinel.
type SchedulerHandler struct {
	Scheduler *scheduler.Scheduler
}

// NewSchedulerHandler constructs a SchedulerHandler.
func NewSchedulerHandler(s *scheduler.Scheduler) *SchedulerHandler {
	return &SchedulerHandler{Scheduler: s}
}

type createUserRequest struct {
	UserID string   `json:"user_id"`
	Topics []string `json:"topics"`
}

// CreateUser handles POST /user.
func (h *SchedulerHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	_, err := h.Scheduler.CreateUser(c.Request().Context(), req.UserID, req.Topics)
	if err != nil {
		return schedulerError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "user created"})
}

type createConferenceRequest struct {
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Slots    int      `json:"slots"`
	Topics   []string `json:"topics"`
}

// CreateConference handles POST /conference.
func (h *SchedulerHandler) CreateConference(c echo.Context) error {
	var req createConferenceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	start, err := time.ParseInLocation(timestampLayout, req.Start, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start timestamp"})
	}
	end, err := time.ParseInLocation(timestampLayout, req.End, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end timestamp"})
	}
	_, err = h.Scheduler.CreateConference(c.Request().Context(), req.Name, req.Location, start, end, req.Slots, req.Topics)
	if err != nil {
		return schedulerError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "conference created"})
}

type bookRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// Book handles POST /book.
func (h *SchedulerHandler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	result, err := h.Scheduler.Book(c.Request().Context(), req.UserID, req.Name)
	if err != nil {
		return schedulerError(c, err)
	}

	resp := echo.Map{
		"booking_id":        result.Booking.ID,
		"status":            wireStatus(result.Booking.Status),
		"message":           "booking created",
		"waitlist_position": nil,
	}
	if !result.WasConfirmed {
		resp["waitlist_position"] = result.WaitlistPosition
	}
	return c.JSON(http.StatusCreated, resp)
}

// GetBooking handles GET /booking/{id}.
func (h *SchedulerHandler) GetBooking(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	view, err := h.Scheduler.GetBooking(c.Request().Context(), id)
	if err != nil {
		return schedulerError(c, err)
	}
	return c.JSON(http.StatusOK, bookingJSON(view.Booking, view.ConferenceName))
}

type confirmRequest struct {
	BookingID uint64 `json:"booking_id"`
	UserID    string `json:"user_id"`
}

// ConfirmBooking handles POST /confirm.
func (h *SchedulerHandler) ConfirmBooking(c echo.Context) error {
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if _, err := h.Scheduler.Confirm(c.Request().Context(), req.BookingID, req.UserID); err != nil {
		return schedulerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking confirmed"})
}

type cancelRequest struct {
	BookingID uint64 `json:"booking_id"`
}

// CancelBooking handles POST /cancel.
func (h *SchedulerHandler) CancelBooking(c echo.Context) error {
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Scheduler.Cancel(c.Request().Context(), req.BookingID); err != nil {
		return schedulerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking canceled"})
}

// ListConferenceBookings handles GET /conference/{name}/bookings.
func (h *SchedulerHandler) ListConferenceBookings(c echo.Context) error {
	name := c.Param("name")
	bookings, err := h.Scheduler.ListConferenceBookings(c.Request().Context(), name)
	if err != nil {
		return schedulerError(c, err)
	}
	out := make([]echo.Map, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, bookingJSON(b.Booking, b.ConferenceName))
	}
	return c.JSON(http.StatusOK, out)
}

func bookingJSON(b model.Booking, conferenceName string) echo.Map {
	var deadline interface{}
	if b.ConfirmationDeadline != nil {
		deadline = b.ConfirmationDeadline.UTC().Format(timestampLayout)
	}
	var waitlistPos interface{}
	if b.WaitlistPosition != nil {
		waitlistPos = *b.WaitlistPosition
	}
	canConfirm := b.CanConfirm && b.ConfirmationDeadline != nil &&
		time.Now().UTC().Before(*b.ConfirmationDeadline)
	return echo.Map{
		"booking_id":            b.ID,
		"status":                wireStatus(b.Status),
		"conference_name":       conferenceName,
		"can_confirm":           canConfirm,
		"confirmation_deadline": deadline,
		"waitlist_position":     waitlistPos,
	}
}

// wireStatus maps the internal status constants to the wire strings
// spec.md §6.1 names. CONFIRMATION_PENDING is spelled "ConfirmationPending"
// on the wire, unlike the other three statuses, which keep the
// ENUM-style all-caps spelling used internally.
func wireStatus(s model.BookingStatus) string {
	if s == model.StatusConfirmationPending {
		return "ConfirmationPending"
	}
	return string(s)
}

func parseID(raw string) (uint64, error) {
	var id uint64
	var any bool
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, errors.New("not a valid id")
		}
		any = true
		id = id*10 + uint64(r-'0')
	}
	if !any {
		return 0, errors.New("not a valid id")
	}
	return id, nil
}

// schedulerError maps a scheduler sentinel error to an HTTP response,
// following the status codes spec.md §6.1/§7 assign to each failure
// mode.
func schedulerError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, scheduler.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, scheduler.ErrAccessDenied):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "access denied"})
	case errors.Is(err, scheduler.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	case errors.Is(err, scheduler.ErrDuplicate):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate"})
	case errors.Is(err, scheduler.ErrConferenceStarted):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "conference already started"})
	case errors.Is(err, scheduler.ErrOverlap):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "overlapping booking"})
	case errors.Is(err, scheduler.ErrInvalidState):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking state"})
	case errors.Is(err, scheduler.ErrExpired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "confirmation window expired"})
	case errors.Is(err, scheduler.ErrConferenceBusy):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conference is busy, retry"})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
