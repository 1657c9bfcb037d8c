//go:build e2e

package reservation_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	nethttptest "net/http/httptest"
	"sync"
	"testing"
	"time"

	"cinema-reservation/internal/domain/event"
	"cinema-reservation/internal/handler/dto/request"
	"cinema-reservation/internal/handler/dto/response"
	"cinema-reservation/tests/common/dbtest"
	"cinema-reservation/tests/common/httptest"
	"cinema-reservation/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	reservationsURL = "/api/reservations"
	reservationURL  = "/api/reservations/%s"
	confirmURL      = "/api/reservations/%s/confirm"
	seatsURL        = "/api/showings/%s/seats"
	salesURL        = "/api/sales"
)

type ReservationSuite struct {
	e2e.SharedSuite
}

func (s *ReservationSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestReservationSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(ReservationSuite))
}

func (s *ReservationSuite) createHold(userID, showingID uuid.UUID, units []uuid.UUID, headers map[string]string) response.HoldResponse {
	t := s.T()
	body := request.CreateReservationRequest{UserID: userID, ShowingID: showingID, UnitIDs: units}

	w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL, body, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res response.HoldResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
	return res
}

func (s *ReservationSuite) seats(showingID uuid.UUID) response.ShowingSeatsResponse {
	t := s.T()
	w := httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(seatsURL, showingID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res response.ShowingSeatsResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
	return res
}

// =============================================================================
// TestConcurrentHolds - many users racing for the same seat
// =============================================================================

func (s *ReservationSuite) TestConcurrentHolds() {
	s.Run("exactly one of ten concurrent requests for one seat wins", func() {
		t := s.T()
		show := dbtest.CreateTestShowing(t, s.DB, "Inception", "12.50", []string{"A"}, 4)
		a1 := show.Unit(t, "A1")

		const contenders = 10
		bodies := make([][]byte, contenders)
		keys := make([]string, contenders)
		for i := range contenders {
			keys[i] = "racer-" + uuid.NewString()
			userID := dbtest.CreateTestUser(t, s.DB, fmt.Sprintf("racer%d@example.com", i), fmt.Sprintf("Racer %d", i))
			b, err := json.Marshal(request.CreateReservationRequest{
				UserID: userID, ShowingID: show.ID, UnitIDs: []uuid.UUID{a1},
			})
			require.NoError(t, err)
			bodies[i] = b
		}

		codes := make([]int, contenders)
		start := make(chan struct{})
		var wg sync.WaitGroup
		for i := range contenders {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				req := nethttptest.NewRequest(http.MethodPost, reservationsURL, bytes.NewReader(bodies[i]))
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("Idempotency-Key", keys[i])
				w := nethttptest.NewRecorder()
				s.Router.ServeHTTP(w, req)
				codes[i] = w.Code
			}()
		}
		close(start)
		wg.Wait()

		counts := map[int]int{}
		for _, c := range codes {
			counts[c]++
		}
		require.Equal(t, map[int]int{http.StatusCreated: 1, http.StatusConflict: contenders - 1}, counts)
		require.Equal(t, "HELD", dbtest.UnitStatus(t, s.DB, a1))
		require.Len(t, s.Publisher.OfType(event.TypeReservationCreated), 1)

		seats := s.seats(show.ID)
		require.Equal(t, response.AvailabilityResponse{Total: 4, Available: 3, Held: 1}, seats.Summary)
	})

	s.Run("overlapping multi-seat holds never share a seat", func() {
		t := s.T()
		show := dbtest.CreateTestShowing(t, s.DB, "Heat", "9.00", []string{"B"}, 3)
		u1 := dbtest.CreateTestUser(t, s.DB, "left@example.com", "Left")
		u2 := dbtest.CreateTestUser(t, s.DB, "right@example.com", "Right")

		bodies := [][]byte{}
		for _, r := range []struct {
			user  uuid.UUID
			units []uuid.UUID
		}{
			{u1, []uuid.UUID{show.Unit(t, "B1"), show.Unit(t, "B2")}},
			{u2, []uuid.UUID{show.Unit(t, "B3"), show.Unit(t, "B2")}},
		} {
			b, err := json.Marshal(request.CreateReservationRequest{UserID: r.user, ShowingID: show.ID, UnitIDs: r.units})
			require.NoError(t, err)
			bodies = append(bodies, b)
		}

		codes := make([]int, len(bodies))
		var wg sync.WaitGroup
		for i := range bodies {
			wg.Add(1)
			go func() {
				defer wg.Done()
				req := nethttptest.NewRequest(http.MethodPost, reservationsURL, bytes.NewReader(bodies[i]))
				req.Header.Set("Content-Type", "application/json")
				w := nethttptest.NewRecorder()
				s.Router.ServeHTTP(w, req)
				codes[i] = w.Code
			}()
		}
		wg.Wait()

		require.ElementsMatch(t, []int{http.StatusCreated, http.StatusConflict}, codes)
		require.Equal(t, "HELD", dbtest.UnitStatus(t, s.DB, show.Unit(t, "B2")))
		require.Equal(t, 2, s.seats(show.ID).Summary.Held)
	})
}

// =============================================================================
// TestHoldLifecycle - create, replay, confirm, cancel
// =============================================================================

func (s *ReservationSuite) TestHoldLifecycle() {
	s.Run("Normal case: hold then confirm sells the seats", func() {
		t := s.T()
		show := dbtest.CreateTestShowing(t, s.DB, "Alien", "10.00", []string{"C"}, 2)
		userID := dbtest.CreateTestUser(t, s.DB, "buyer@example.com", "Buyer")

		held := s.createHold(userID, show.ID, []uuid.UUID{show.Unit(t, "C2"), show.Unit(t, "C1")}, nil)
		require.Equal(t, "PENDING", held.Status)
		if diff := cmp.Diff([]string{"C1", "C2"}, held.SeatLabels); diff != "" {
			t.Errorf("seat labels mismatch (-want +got):\n%s", diff)
		}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(confirmURL, held.ID), nil, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var sold response.SaleResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &sold))
		require.Equal(t, held.ID, sold.ReservationID)
		require.Equal(t, "20", sold.TotalAmount.String())

		require.Equal(t, "CONFIRMED", dbtest.HoldStatus(t, s.DB, held.ID))
		require.Equal(t, "SOLD", dbtest.UnitStatus(t, s.DB, show.Unit(t, "C1")))
		require.Len(t, s.Publisher.OfType(event.TypePaymentConfirmed), 1)
		require.Len(t, s.Publisher.OfType(event.TypeSeatsSold), 1)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, salesURL+"?userId="+userID.String(), nil, nil)
		var list response.SaleListResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &list)
		require.Len(t, list.Items, 1)
		require.Equal(t, sold.ID, list.Items[0].ID)
	})

	s.Run("Normal case: same idempotency key replays the hold", func() {
		t := s.T()
		show := dbtest.CreateTestShowing(t, s.DB, "Alien", "10.00", []string{"D"}, 2)
		userID := dbtest.CreateTestUser(t, s.DB, "replay@example.com", "Replay")
		headers := map[string]string{"Idempotency-Key": "order-" + uuid.NewString()}

		first := s.createHold(userID, show.ID, []uuid.UUID{show.Unit(t, "D1")}, headers)

		// Different body so the duplicate-request guard lets it through.
		body := request.CreateReservationRequest{UserID: userID, ShowingID: show.ID, UnitIDs: []uuid.UUID{show.Unit(t, "D2")}}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL, body, headers)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))

		var replayed response.HoldResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &replayed))
		require.Equal(t, first.ID, replayed.ID)
		require.Equal(t, "AVAILABLE", dbtest.UnitStatus(t, s.DB, show.Unit(t, "D2")))
	})

	s.Run("Normal case: cancel releases the seats", func() {
		t := s.T()
		show := dbtest.CreateTestShowing(t, s.DB, "Alien", "10.00", []string{"E"}, 1)
		userID := dbtest.CreateTestUser(t, s.DB, "cancel@example.com", "Cancel")

		held := s.createHold(userID, show.ID, []uuid.UUID{show.Unit(t, "E1")}, nil)

		w := httptest.PerformRequest(t, s.Router, http.MethodDelete, fmt.Sprintf(reservationURL, held.ID), nil, nil)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
		require.Equal(t, "CANCELLED", dbtest.HoldStatus(t, s.DB, held.ID))
		require.Equal(t, "AVAILABLE", dbtest.UnitStatus(t, s.DB, show.Unit(t, "E1")))

		other := dbtest.CreateTestUser(t, s.DB, "next@example.com", "Next")
		s.createHold(other, show.ID, []uuid.UUID{show.Unit(t, "E1")}, nil)
	})

	s.Run("Error case: duplicate submission is rejected", func() {
		t := s.T()
		show := dbtest.CreateTestShowing(t, s.DB, "Alien", "10.00", []string{"F"}, 1)
		userID := dbtest.CreateTestUser(t, s.DB, "double@example.com", "Double")
		body := request.CreateReservationRequest{UserID: userID, ShowingID: show.ID, UnitIDs: []uuid.UUID{show.Unit(t, "F1")}}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL, body, nil)
		require.Equal(t, http.StatusCreated, w.Code)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL, body, nil)
		httptest.AssertErrorResponse(t, w, http.StatusConflict,
			"Duplicate request detected. Please wait a moment before retrying.")
	})

	s.Run("Error case: unknown seat is 404", func() {
		t := s.T()
		show := dbtest.CreateTestShowing(t, s.DB, "Alien", "10.00", []string{"G"}, 1)
		userID := dbtest.CreateTestUser(t, s.DB, "ghost@example.com", "Ghost")
		body := request.CreateReservationRequest{UserID: userID, ShowingID: show.ID, UnitIDs: []uuid.UUID{uuid.New()}}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL, body, nil)
		httptest.AssertErrorResponse(t, w, http.StatusNotFound, "Seat not found for showing")
	})
}

// =============================================================================
// TestExpiration - deadline enforcement and the reaper
// =============================================================================

func (s *ReservationSuite) TestExpiration() {
	s.Run("Error case: confirm after the deadline is refused", func() {
		t := s.T()
		show := dbtest.CreateTestShowing(t, s.DB, "Memento", "8.00", []string{"H"}, 1)
		userID := dbtest.CreateTestUser(t, s.DB, "late@example.com", "Late")

		held := s.createHold(userID, show.ID, []uuid.UUID{show.Unit(t, "H1")}, nil)
		dbtest.ExpireHold(t, s.DB, held.ID)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(confirmURL, held.ID), nil, nil)
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		require.NotEqual(t, "SOLD", dbtest.UnitStatus(t, s.DB, show.Unit(t, "H1")))
	})

	s.Run("Normal case: the reaper releases seats of lapsed holds", func() {
		t := s.T()
		show := dbtest.CreateTestShowing(t, s.DB, "Memento", "8.00", []string{"J"}, 2)
		userID := dbtest.CreateTestUser(t, s.DB, "idle@example.com", "Idle")

		held := s.createHold(userID, show.ID, []uuid.UUID{show.Unit(t, "J1"), show.Unit(t, "J2")}, nil)
		dbtest.ExpireHold(t, s.DB, held.ID)

		require.Eventually(t, func() bool {
			return dbtest.HoldStatus(t, s.DB, held.ID) == "EXPIRED"
		}, 5*time.Second, 100*time.Millisecond)

		require.Equal(t, "AVAILABLE", dbtest.UnitStatus(t, s.DB, show.Unit(t, "J1")))
		require.Equal(t, "AVAILABLE", dbtest.UnitStatus(t, s.DB, show.Unit(t, "J2")))
		require.Len(t, s.Publisher.OfType(event.TypeReservationExpired), 1)
		require.Len(t, s.Publisher.OfType(event.TypeSeatsReleased), 1)
	})
}
