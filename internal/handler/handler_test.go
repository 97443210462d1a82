package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/middleware"
	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/repository"
	"github.com/iliyamo/space-reservation/internal/reservation"
	"github.com/iliyamo/space-reservation/internal/service"
	"github.com/iliyamo/space-reservation/internal/utils"
)

const (
	secret  = "test-secret"
	ownerID = 100
	mapID   = 3
	spaceID = 7
)

// store is a single-lock in-memory reservation store.
type store struct {
	mu     sync.Mutex
	space  model.Space
	rows   map[uint64]model.Reservation
	nextID uint64
}

func newStore() *store {
	return &store{
		space: model.Space{
			ID:         spaceID,
			MapID:      mapID,
			MapOwnerID: ownerID,
			Name:       "meeting room",
			Policy: model.TimePolicy{
				AvailableStart: 9 * 60,
				AvailableEnd:   18 * 60,
				TimeUnit:       30,
				MinDuration:    30,
				MaxDuration:    120,
				Enabled:        true,
				EnabledDays:    model.NewWeekdays(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday),
			},
		},
		rows: make(map[uint64]model.Reservation),
	}
}

func (s *store) LoadSpace(_ context.Context, id uint64) (model.Space, error) {
	if id != s.space.ID {
		return model.Space{}, reservation.ErrNotFound
	}
	return s.space, nil
}

func (s *store) FindReservation(_ context.Context, sid, id uint64) (model.Reservation, error) {
	r, ok := s.rows[id]
	if !ok || r.SpaceID != sid {
		return model.Reservation{}, reservation.ErrNotFound
	}
	return r, nil
}

func (s *store) ListReservations(_ context.Context, sid uint64, from, to time.Time) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.Reservation
	for _, r := range s.rows {
		if r.SpaceID == sid {
			all = append(all, r)
		}
	}
	return reservation.Conflicts(all, reservation.Interval{Start: from, End: to}, 0), nil
}

func (s *store) WithinSpace(ctx context.Context, _ uint64, fn func(context.Context, reservation.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, s)
}

func (s *store) ConflictsWith(_ context.Context, sid uint64, start, end time.Time, excludeID uint64) ([]model.Reservation, error) {
	var all []model.Reservation
	for _, r := range s.rows {
		if r.SpaceID == sid {
			all = append(all, r)
		}
	}
	return reservation.Conflicts(all, reservation.Interval{Start: start, End: end}, excludeID), nil
}

func (s *store) SaveReservation(_ context.Context, r *model.Reservation) error {
	if r.ID == 0 {
		s.nextID++
		r.ID = s.nextID
	}
	s.rows[r.ID] = *r
	return nil
}

func (s *store) DeleteReservation(_ context.Context, sid, id uint64) error {
	if r, ok := s.rows[id]; !ok || r.SpaceID != sid {
		return reservation.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

// newServer mounts the reservation routes the way the router does, minus
// redis.
func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	st := newStore()
	engine := &reservation.Engine{Now: func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }}
	svc := reservation.NewService(st, st, engine, nil, nil)
	h := NewReservationHandler(svc, reservation.GuestStrategy{
		Hash:   func(p string) (string, error) { return "h:" + p, nil },
		Verify: func(hash, p string) bool { return hash == "h:"+p },
	})

	e := echo.New()
	m := e.Group("/v1/managers/maps/:mapId/spaces/:spaceId/reservations", middleware.JWTAuth(secret), middleware.RequireRole(model.RoleManager))
	m.GET("", h.ManagerList)
	m.POST("", h.ManagerCreate)
	m.GET("/:reservationId", h.ManagerGet)
	m.PUT("/:reservationId", h.ManagerUpdate)
	m.DELETE("/:reservationId", h.ManagerDelete)

	g := e.Group("/v1/guests/maps/:mapId/spaces/:spaceId/reservations")
	g.GET("", h.GuestList)
	g.POST("", h.GuestCreate)
	g.POST("/:reservationId", h.GuestRead)
	g.PUT("/:reservationId", h.GuestUpdate)
	g.DELETE("/:reservationId", h.GuestDelete)
	return e
}

func bearer(t *testing.T, memberID uint64) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, memberID, model.RoleManager, 5)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok.Token
}

func do(e *echo.Echo, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func booking(from, to, password string) string {
	return fmt.Sprintf(`{"name":"standup","description":"daily","start_date_time":"2030-01-07T%s:00","end_date_time":"2030-01-07T%s:00","password":%q}`,
		from, to, password)
}

const (
	managerPath = "/v1/managers/maps/3/spaces/7/reservations"
	guestPath   = "/v1/guests/maps/3/spaces/7/reservations"
)

func TestGuestReservationFlow(t *testing.T) {
	e := newServer(t)

	if rec := do(e, http.MethodPost, guestPath, "", booking("10:00", "11:00", "")); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing password: status = %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, guestPath, "", booking("10:00", "11:00", "12ab")); rec.Code != http.StatusBadRequest {
		t.Fatalf("non-digit password: status = %d", rec.Code)
	}

	rec := do(e, http.MethodPost, guestPath, "", booking("10:00", "11:00", "1234"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d (%s)", rec.Code, rec.Body)
	}
	var created reservationResp
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.CreatedBy != string(model.OriginGuest) || created.StartTime != "2030-01-07T10:00:00" {
		t.Fatalf("created = %+v", created)
	}
	if strings.Contains(rec.Body.String(), "h:1234") {
		t.Fatal("password hash leaked in response")
	}
	one := fmt.Sprintf("%s/%d", guestPath, created.ID)

	if rec := do(e, http.MethodPost, one, "", `{"password":"0000"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("read with wrong password: status = %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, one, "", `{"password":"1234"}`); rec.Code != http.StatusOK {
		t.Fatalf("read: status = %d", rec.Code)
	}

	rec = do(e, http.MethodPut, one, "", booking("11:00", "12:00", "1234"))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "2030-01-07T11:00:00") {
		t.Fatalf("update: status = %d (%s)", rec.Code, rec.Body)
	}

	if rec := do(e, http.MethodDelete, one, "", `{"password":"9999"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("delete with wrong password: status = %d", rec.Code)
	}
	if rec := do(e, http.MethodDelete, one, "", `{"password":"1234"}`); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	if rec := do(e, http.MethodPost, one, "", `{"password":"1234"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("read after delete: status = %d", rec.Code)
	}
}

func TestManagerReservationRejections(t *testing.T) {
	e := newServer(t)
	owner := bearer(t, ownerID)

	rec := do(e, http.MethodPost, managerPath, owner, booking("10:00", "11:00", ""))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d (%s)", rec.Code, rec.Body)
	}

	cases := []struct {
		name   string
		auth   string
		path   string
		body   string
		status int
		kind   string
	}{
		{"overlap", owner, managerPath, booking("10:30", "11:30", ""), http.StatusConflict, "time_conflict"},
		{"not owner", bearer(t, 200), managerPath, booking("12:00", "13:00", ""), http.StatusForbidden, "no_authority"},
		{"unaligned", owner, managerPath, booking("12:10", "13:10", ""), http.StatusBadRequest, "not_unit_aligned"},
		{"too long", owner, managerPath, booking("12:00", "15:00", ""), http.StatusBadRequest, "invalid_duration"},
		{"outside window", owner, managerPath, booking("17:30", "18:30", ""), http.StatusBadRequest, "outside_available_window"},
		{"wrong map", owner, "/v1/managers/maps/4/spaces/7/reservations", booking("12:00", "13:00", ""), http.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, tc.path, tc.auth, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.status, rec.Body)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["error"] != tc.kind {
				t.Fatalf("error = %v, want %s", body["error"], tc.kind)
			}
		})
	}

	rec = do(e, http.MethodPost, managerPath, owner, booking("10:30", "11:30", ""))
	if !strings.Contains(rec.Body.String(), `"conflicts":[1]`) {
		t.Fatalf("conflict ids missing: %s", rec.Body)
	}
}

func TestManagerListByDate(t *testing.T) {
	e := newServer(t)
	owner := bearer(t, ownerID)
	for _, slot := range [][2]string{{"14:00", "15:00"}, {"09:00", "10:00"}} {
		if rec := do(e, http.MethodPost, managerPath, owner, booking(slot[0], slot[1], "")); rec.Code != http.StatusCreated {
			t.Fatalf("seed: status = %d (%s)", rec.Code, rec.Body)
		}
	}

	rec := do(e, http.MethodGet, managerPath+"?date=2030-01-07", owner, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}
	var body struct {
		Reservations []reservationResp `json:"reservations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Reservations) != 2 {
		t.Fatalf("got %d reservations", len(body.Reservations))
	}

	if rec := do(e, http.MethodGet, managerPath+"?date=07-01-2030", owner, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date: status = %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, guestPath+"?date=2030-01-08", "", ""); rec.Code != http.StatusOK ||
		!strings.Contains(rec.Body.String(), `"reservations":[]`) {
		t.Fatalf("guest list other day: %d %s", rec.Code, rec.Body)
	}
}

func TestRequestValidation(t *testing.T) {
	e := newServer(t)
	owner := bearer(t, ownerID)
	cases := map[string]string{
		"empty name":     `{"name":"","start_date_time":"2030-01-07T10:00:00","end_date_time":"2030-01-07T11:00:00"}`,
		"long name":      `{"name":"` + strings.Repeat("x", 21) + `","start_date_time":"2030-01-07T10:00:00","end_date_time":"2030-01-07T11:00:00"}`,
		"bad start":      `{"name":"a","start_date_time":"tomorrow","end_date_time":"2030-01-07T11:00:00"}`,
		"end before":     `{"name":"a","start_date_time":"2030-01-07T11:00:00","end_date_time":"2030-01-07T10:00:00"}`,
		"long desc":      `{"name":"a","description":"` + strings.Repeat("d", 101) + `","start_date_time":"2030-01-07T10:00:00","end_date_time":"2030-01-07T11:00:00"}`,
		"malformed json": `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if rec := do(e, http.MethodPost, managerPath, owner, body); rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
			}
		})
	}
	if rec := do(e, http.MethodGet, "/v1/managers/maps/x/spaces/7/reservations", owner, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad map id: status = %d", rec.Code)
	}
}

func TestWriteErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{reservation.ErrPastTime, http.StatusBadRequest},
		{reservation.ErrWrongPassword, http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", reservation.ErrNoAuthority), http.StatusForbidden},
		{reservation.ErrNotFound, http.StatusNotFound},
		{service.ErrReservationsExist, http.StatusConflict},
		{fmt.Errorf("space: %w", service.ErrInvalidPolicy), http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{repository.ErrEmailExists, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		if err := writeError(c, tc.err); err != nil {
			t.Fatal(err)
		}
		if rec.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}
	}
}

func TestParseDateTime(t *testing.T) {
	want := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	for _, s := range []string{"2030-01-07T10:00:00", "2030-01-07T10:00:00Z", "2030-01-07T12:00:00+02:00"} {
		got, err := parseDateTime(s)
		if err != nil || !got.Equal(want) || got.Location() != time.UTC {
			t.Errorf("parseDateTime(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := parseDateTime("2030-01-07 10:00"); err == nil {
		t.Error("expected error for space separated input")
	}
}

func TestPolicyDTO(t *testing.T) {
	in := policyDTO{
		AvailableStart: "09:00",
		AvailableEnd:   "18:00",
		TimeUnit:       30,
		MinDuration:    30,
		MaxDuration:    120,
		Enabled:        true,
		EnabledDays:    "monday,friday",
	}
	p, err := in.toPolicy()
	if err != nil {
		t.Fatal(err)
	}
	if out := policyOut(p); out != in {
		t.Fatalf("policyOut = %+v, want %+v", out, in)
	}
	in.AvailableEnd = "25:00"
	if _, err := in.toPolicy(); err == nil {
		t.Fatal("expected error for 25:00")
	}
}
