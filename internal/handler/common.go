package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/middleware"
	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/repository"
	"github.com/iliyamo/space-reservation/internal/reservation"
	"github.com/iliyamo/space-reservation/internal/service"
)

// Wall-clock formats used on the wire.  Reservation times carry no zone and
// are interpreted as UTC.
const (
	dateTimeLayout = "2006-01-02T15:04:05"
	dateLayout     = "2006-01-02"
)

// getUserID returns the member id stored by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.MemberID(c)
	if !ok {
		return 0, errors.New("invalid member_id in context")
	}
	return id, nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// parseDateTime accepts "2006-01-02T15:04:05" or RFC 3339 and returns UTC.
func parseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dateTimeLayout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// parseDate reads ?date=YYYY-MM-DD, defaulting to today (UTC).
func parseDate(c echo.Context) (time.Time, bool) {
	s := strings.TrimSpace(c.QueryParam("date"))
	if s == "" {
		return time.Now().UTC(), true
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	return t, err == nil
}

func formatDateTime(t time.Time) string { return t.UTC().Format(dateTimeLayout) }

// validText reports whether s has between min and max characters.
func validText(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

// validGuestPassword reports whether p is exactly four ASCII digits.
func validGuestPassword(p string) bool {
	if len(p) != 4 {
		return false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_request", "message": msg})
}

// rejectionStatus maps every rejection kind to its HTTP status.
var rejectionStatus = map[reservation.Kind]int{
	reservation.KindPolicyDisabled:         http.StatusBadRequest,
	reservation.KindDayNotEnabled:          http.StatusBadRequest,
	reservation.KindOutsideAvailableWindow: http.StatusBadRequest,
	reservation.KindInvalidDuration:        http.StatusBadRequest,
	reservation.KindNotUnitAligned:         http.StatusBadRequest,
	reservation.KindPastTime:               http.StatusBadRequest,
	reservation.KindTimeConflict:           http.StatusConflict,
	reservation.KindNoAuthority:            http.StatusForbidden,
	reservation.KindWrongPassword:          http.StatusUnauthorized,
	reservation.KindNotFound:               http.StatusNotFound,
}

// writeError translates domain and service errors into JSON responses.
// Anything unrecognised is logged and reported as 500.
func writeError(c echo.Context, err error) error {
	var rej *reservation.RejectionError
	switch {
	case errors.As(err, &rej):
		status, ok := rejectionStatus[rej.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		body := echo.Map{"error": string(rej.Kind), "message": rej.Message}
		if rej.Bound != "" {
			body["bound"] = rej.Bound
		}
		if len(rej.ConflictIDs) > 0 {
			body["conflicts"] = rej.ConflictIDs
		}
		return c.JSON(status, body)
	case errors.Is(err, service.ErrInvalidPolicy):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_policy", "message": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_request", "message": err.Error()})
	case errors.Is(err, service.ErrReservationsExist):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservations_exist", "message": "future reservations still exist"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_credentials"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email_exists", "message": "email already exists"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal_error"})
}

// ----- DTOs -----

type policyDTO struct {
	AvailableStart string `json:"available_start_time"`
	AvailableEnd   string `json:"available_end_time"`
	TimeUnit       int    `json:"reservation_time_unit"`
	MinDuration    int    `json:"reservation_minimum_time_unit"`
	MaxDuration    int    `json:"reservation_maximum_time_unit"`
	Enabled        bool   `json:"reservation_enable"`
	EnabledDays    string `json:"enabled_day_of_week"`
}

func policyOut(p model.TimePolicy) policyDTO {
	return policyDTO{
		AvailableStart: p.AvailableStart.String(),
		AvailableEnd:   p.AvailableEnd.String(),
		TimeUnit:       p.TimeUnit,
		MinDuration:    p.MinDuration,
		MaxDuration:    p.MaxDuration,
		Enabled:        p.Enabled,
		EnabledDays:    p.EnabledDays.String(),
	}
}

// toPolicy parses the wire form.  Structural checks are left to
// TimePolicy.Validate in the service layer.
func (d policyDTO) toPolicy() (model.TimePolicy, error) {
	start, err := model.ParseTimeOfDay(d.AvailableStart)
	if err != nil {
		return model.TimePolicy{}, err
	}
	end, err := model.ParseTimeOfDay(d.AvailableEnd)
	if err != nil {
		return model.TimePolicy{}, err
	}
	days, err := model.ParseWeekdays(d.EnabledDays)
	if err != nil {
		return model.TimePolicy{}, err
	}
	return model.TimePolicy{
		AvailableStart: start,
		AvailableEnd:   end,
		TimeUnit:       d.TimeUnit,
		MinDuration:    d.MinDuration,
		MaxDuration:    d.MaxDuration,
		Enabled:        d.Enabled,
		EnabledDays:    days,
	}, nil
}

type reservationResp struct {
	ID          uint64 `json:"id"`
	SpaceID     uint64 `json:"space_id"`
	StartTime   string `json:"start_date_time"`
	EndTime     string `json:"end_date_time"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
}

func reservationOut(r model.Reservation) reservationResp {
	return reservationResp{
		ID:          r.ID,
		SpaceID:     r.SpaceID,
		StartTime:   formatDateTime(r.StartTime),
		EndTime:     formatDateTime(r.EndTime),
		Name:        r.OwnerName,
		Description: r.Description,
		CreatedBy:   string(r.CreatedBy),
	}
}

type spaceResp struct {
	ID          uint64    `json:"id"`
	MapID       uint64    `json:"map_id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	Area        string    `json:"area"`
	Policy      policyDTO `json:"setting"`
}

func spaceOut(s model.Space) spaceResp {
	return spaceResp{
		ID:          s.ID,
		MapID:       s.MapID,
		Name:        s.Name,
		Color:       s.Color,
		Description: s.Description,
		Area:        s.Area,
		Policy:      policyOut(s.Policy),
	}
}

func spacesOut(list []model.Space) []spaceResp {
	out := make([]spaceResp, len(list))
	for i, s := range list {
		out[i] = spaceOut(s)
	}
	return out
}

type mapResp struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Drawing   string `json:"drawing"`
	SharingID string `json:"sharing_map_id"`
}

func mapOut(m model.Map) mapResp {
	return mapResp{ID: m.ID, Name: m.Name, Drawing: m.Drawing, SharingID: m.SharingID}
}
