package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/reservation"
)

// ReservationHandler exposes the reservation lifecycle to managers and
// guests.  Both sides share one code path; only the strategy differs.
type ReservationHandler struct {
	Service *reservation.Service
	Guest   reservation.GuestStrategy
}

func NewReservationHandler(svc *reservation.Service, guest reservation.GuestStrategy) *ReservationHandler {
	if svc == nil {
		panic("nil reservation service passed to NewReservationHandler")
	}
	return &ReservationHandler{Service: svc, Guest: guest}
}

type reservationReq struct {
	Start       string `json:"start_date_time"`
	End         string `json:"end_date_time"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Password    string `json:"password"`
}

type passwordReq struct {
	Password string `json:"password"`
}

// request validates the body fields and converts them.  Time policy checks
// happen later, in the admission engine.
func (r reservationReq) request(guest bool) (reservation.Request, string) {
	name := strings.TrimSpace(r.Name)
	if !validText(name, 1, 20) {
		return reservation.Request{}, "name must be 1-20 characters"
	}
	if !validText(r.Description, 0, 100) {
		return reservation.Request{}, "description must be at most 100 characters"
	}
	if guest && !validGuestPassword(r.Password) {
		return reservation.Request{}, "password must be 4 digits"
	}
	start, err := parseDateTime(r.Start)
	if err != nil {
		return reservation.Request{}, "invalid start_date_time"
	}
	end, err := parseDateTime(r.End)
	if err != nil {
		return reservation.Request{}, "invalid end_date_time"
	}
	if !start.Before(end) {
		return reservation.Request{}, "start_date_time must be before end_date_time"
	}
	return reservation.Request{
		Start:       start,
		End:         end,
		Name:        name,
		Description: r.Description,
		Password:    r.Password,
	}, ""
}

// target holds the path ids of a reservation route.
type target struct {
	mapID, spaceID, reservationID uint64
}

func readTarget(c echo.Context, withReservation bool) (target, string) {
	var t target
	var ok bool
	if t.mapID, ok = pathID(c, "mapId"); !ok {
		return t, "invalid map id"
	}
	if t.spaceID, ok = pathID(c, "spaceId"); !ok {
		return t, "invalid space id"
	}
	if withReservation {
		if t.reservationID, ok = pathID(c, "reservationId"); !ok {
			return t, "invalid reservation id"
		}
	}
	return t, ""
}

// manager builds the strategy of the authenticated member.
func manager(c echo.Context) (reservation.ManagerStrategy, bool) {
	id, err := getUserID(c)
	if err != nil {
		return reservation.ManagerStrategy{}, false
	}
	return reservation.ManagerStrategy{MemberID: id}, true
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// ----- shared implementations -----

func (h *ReservationHandler) list(c echo.Context, st reservation.Strategy) error {
	t, msg := readTarget(c, false)
	if msg != "" {
		return badRequest(c, msg)
	}
	date, ok := parseDate(c)
	if !ok {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	space, list, err := h.Service.ListDay(c.Request().Context(), t.mapID, t.spaceID, date, st)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]reservationResp, len(list))
	for i, r := range list {
		out[i] = reservationOut(r)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"space":        spaceOut(space),
		"date":         date.Format(dateLayout),
		"reservations": out,
	})
}

func (h *ReservationHandler) create(c echo.Context, st reservation.Strategy, guest bool) error {
	t, msg := readTarget(c, false)
	if msg != "" {
		return badRequest(c, msg)
	}
	var body reservationReq
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	req, msg := body.request(guest)
	if msg != "" {
		return badRequest(c, msg)
	}
	r, err := h.Service.Create(c.Request().Context(), t.mapID, t.spaceID, req, st)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, reservationOut(r))
}

func (h *ReservationHandler) get(c echo.Context, st reservation.Strategy, password string) error {
	t, msg := readTarget(c, true)
	if msg != "" {
		return badRequest(c, msg)
	}
	r, err := h.Service.Get(c.Request().Context(), t.mapID, t.spaceID, t.reservationID, password, st)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, reservationOut(r))
}

func (h *ReservationHandler) update(c echo.Context, st reservation.Strategy, guest bool) error {
	t, msg := readTarget(c, true)
	if msg != "" {
		return badRequest(c, msg)
	}
	var body reservationReq
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	req, msg := body.request(guest)
	if msg != "" {
		return badRequest(c, msg)
	}
	r, err := h.Service.Update(c.Request().Context(), t.mapID, t.spaceID, t.reservationID, req, st)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, reservationOut(r))
}

func (h *ReservationHandler) remove(c echo.Context, st reservation.Strategy, password string) error {
	t, msg := readTarget(c, true)
	if msg != "" {
		return badRequest(c, msg)
	}
	if err := h.Service.Delete(c.Request().Context(), t.mapID, t.spaceID, t.reservationID, password, st); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- manager endpoints -----

// ManagerList handles GET .../reservations?date=YYYY-MM-DD.
func (h *ReservationHandler) ManagerList(c echo.Context) error {
	st, ok := manager(c)
	if !ok {
		return unauthorized(c)
	}
	return h.list(c, st)
}

// ManagerCreate handles POST .../reservations.
func (h *ReservationHandler) ManagerCreate(c echo.Context) error {
	st, ok := manager(c)
	if !ok {
		return unauthorized(c)
	}
	return h.create(c, st, false)
}

func (h *ReservationHandler) ManagerGet(c echo.Context) error {
	st, ok := manager(c)
	if !ok {
		return unauthorized(c)
	}
	return h.get(c, st, "")
}

func (h *ReservationHandler) ManagerUpdate(c echo.Context) error {
	st, ok := manager(c)
	if !ok {
		return unauthorized(c)
	}
	return h.update(c, st, false)
}

func (h *ReservationHandler) ManagerDelete(c echo.Context) error {
	st, ok := manager(c)
	if !ok {
		return unauthorized(c)
	}
	return h.remove(c, st, "")
}

// ----- guest endpoints -----

func (h *ReservationHandler) GuestList(c echo.Context) error { return h.list(c, h.Guest) }

// GuestCreate requires a four digit password that later guards the
// reservation.
func (h *ReservationHandler) GuestCreate(c echo.Context) error { return h.create(c, h.Guest, true) }

// GuestRead returns one reservation to a guest presenting its password.
// POST keeps the password out of URLs and access logs.
func (h *ReservationHandler) GuestRead(c echo.Context) error {
	var body passwordReq
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	return h.get(c, h.Guest, body.Password)
}

func (h *ReservationHandler) GuestUpdate(c echo.Context) error { return h.update(c, h.Guest, true) }

// GuestDelete reads the password from the request body.
func (h *ReservationHandler) GuestDelete(c echo.Context) error {
	var body passwordReq
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	return h.remove(c, h.Guest, body.Password)
}
