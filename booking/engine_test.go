package booking

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"tripnest-server/models"
)

// fakeStore is an in-memory Store. WithUnitLock serializes writers with
// a mutex, mirroring the row lock the GORM store takes.
type fakeStore struct {
	mu        sync.Mutex
	writeLock sync.Mutex

	rooms        map[uint]*models.Room
	vehicles     map[uint]*models.Vehicle
	transfers    map[uint]*models.TransferVehicle
	reservations map[uint]*models.Reservation
	nextID       uint

	failInsert error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:        map[uint]*models.Room{},
		vehicles:     map[uint]*models.Vehicle{},
		transfers:    map[uint]*models.TransferVehicle{},
		reservations: map[uint]*models.Reservation{},
	}
}

func (s *fakeStore) GetUnit(ref UnitRef) (InventoryUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ref.Type {
	case UnitRoom:
		if m, ok := s.rooms[ref.ID]; ok {
			return UnitForRoom(m), nil
		}
	case UnitVehicle:
		if m, ok := s.vehicles[ref.ID]; ok {
			return UnitForVehicle(m), nil
		}
	case UnitTransfer:
		if m, ok := s.transfers[ref.ID]; ok {
			return UnitForTransfer(m), nil
		}
	}
	return nil, fmt.Errorf("unit %s/%d: %w", ref.Type, ref.ID, ErrNotFound)
}

func (s *fakeStore) ListUnits(f SearchFilters) ([]InventoryUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var units []InventoryUnit
	switch f.UnitType {
	case UnitRoom:
		for _, m := range s.rooms {
			if m.Status != unitStatusAvailable {
				continue
			}
			if f.City != "" && m.City != f.City {
				continue
			}
			if f.MaxPrice > 0 && m.NightlyPrice > f.MaxPrice {
				continue
			}
			if f.MinOccupancy > 0 && m.Occupancy < f.MinOccupancy {
				continue
			}
			units = append(units, UnitForRoom(m))
		}
	case UnitVehicle:
		for _, m := range s.vehicles {
			if m.Status != unitStatusAvailable {
				continue
			}
			if f.City != "" && m.City != f.City {
				continue
			}
			units = append(units, UnitForVehicle(m))
		}
	case UnitTransfer:
		for _, m := range s.transfers {
			if m.Status != unitStatusAvailable {
				continue
			}
			if f.City != "" && m.City != f.City {
				continue
			}
			units = append(units, UnitForTransfer(m))
		}
	}
	return units, nil
}

func (s *fakeStore) FindBlockingReservations(ref UnitRef) ([]Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var windows []Window
	for _, r := range s.reservations {
		if r.UnitType != ref.Type || r.UnitID != ref.ID {
			continue
		}
		blocking := false
		for _, st := range BlockingStatuses {
			if r.Status == st {
				blocking = true
			}
		}
		if blocking {
			windows = append(windows, Window{Start: r.StartAt, End: r.EndAt})
		}
	}
	return windows, nil
}

func (s *fakeStore) InsertReservation(r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert != nil {
		return s.failInsert
	}
	s.nextID++
	r.ID = s.nextID
	cp := *r
	s.reservations[r.ID] = &cp
	return nil
}

func (s *fakeStore) GetReservation(id uint) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) UpdateReservationStatus(id uint, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}
	r.Status = status
	return nil
}

func (s *fakeStore) WithUnitLock(ref UnitRef, fn func(Store) error) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()
	if _, err := s.GetUnit(ref); err != nil {
		return err
	}
	return fn(s)
}

func day(d int) time.Time {
	return time.Date(2024, 7, d, 0, 0, 0, 0, time.UTC)
}

func storeWithRoom(totalUnits int) (*fakeStore, UnitRef) {
	s := newFakeStore()
	s.rooms[1] = &models.Room{
		Title:        "Deluxe Double",
		City:         "Nouakchott",
		Occupancy:    2,
		TotalUnits:   totalUnits,
		NightlyPrice: 80,
		Status:       unitStatusAvailable,
	}
	s.rooms[1].ID = 1
	return s, UnitRef{UnitRoom, 1}
}

func TestCheckAvailabilityHalfOpenOverlap(t *testing.T) {
	s, ref := storeWithRoom(1)
	eng := NewEngine(s, 0)

	if _, err := eng.CreateReservation(CreateParams{Ref: ref, GuestID: 7, Start: day(1), End: day(5)}); err != nil {
		t.Fatalf("seed reservation: %v", err)
	}

	cases := []struct {
		name      string
		start     int
		end       int
		available bool
	}{
		{"fully inside", 2, 4, false},
		{"straddles end", 3, 7, false},
		{"straddles start", -2, 3, false}, // day(-2) normalizes to June 28
		{"identical", 1, 5, false},
		{"touching checkout", 5, 8, true},
		{"touching checkin", -2, 1, true},
		{"disjoint after", 10, 12, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			avail, err := eng.CheckAvailability(ref, Window{Start: day(tc.start), End: day(tc.end)})
			if err != nil {
				t.Fatalf("CheckAvailability: %v", err)
			}
			if avail.Available != tc.available {
				t.Fatalf("window [%d,%d): got available=%v, want %v", tc.start, tc.end, avail.Available, tc.available)
			}
		})
	}
}

func TestCreateReservationConflictAndCancel(t *testing.T) {
	s, ref := storeWithRoom(1)
	eng := NewEngine(s, 0)

	first, err := eng.CreateReservation(CreateParams{Ref: ref, GuestID: 7, Start: day(1), End: day(5)})
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if first.Status != StatusPending {
		t.Fatalf("expected pending status, got %q", first.Status)
	}

	_, err = eng.CreateReservation(CreateParams{Ref: ref, GuestID: 8, Start: day(3), End: day(7)})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for overlapping booking, got %v", err)
	}

	// Back-to-back booking shares an endpoint; half-open windows allow it.
	if _, err := eng.CreateReservation(CreateParams{Ref: ref, GuestID: 8, Start: day(5), End: day(8)}); err != nil {
		t.Fatalf("touching booking: %v", err)
	}

	// Cancelling the first frees its window immediately.
	if _, err := eng.TransitionStatus(first.ID, StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := eng.CreateReservation(CreateParams{Ref: ref, GuestID: 9, Start: day(3), End: day(5)}); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
}

func TestCapacityRespected(t *testing.T) {
	s, ref := storeWithRoom(2)
	eng := NewEngine(s, 0)

	for i := 0; i < 2; i++ {
		if _, err := eng.CreateReservation(CreateParams{Ref: ref, GuestID: uint(10 + i), Start: day(1), End: day(5)}); err != nil {
			t.Fatalf("booking %d: %v", i, err)
		}
	}

	avail, err := eng.CheckAvailability(ref, Window{Start: day(2), End: day(3)})
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if avail.Available || avail.Remaining != 0 {
		t.Fatalf("expected full unit (remaining 0), got %+v", avail)
	}

	_, err = eng.CreateReservation(CreateParams{Ref: ref, GuestID: 12, Start: day(2), End: day(4)})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict at capacity, got %v", err)
	}

	// A disjoint window still has both units free.
	avail, err = eng.CheckAvailability(ref, Window{Start: day(10), End: day(12)})
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !avail.Available || avail.Remaining != 2 {
		t.Fatalf("expected 2 remaining on disjoint window, got %+v", avail)
	}
}

func TestUnitStatusShortCircuits(t *testing.T) {
	s, ref := storeWithRoom(3)
	s.rooms[1].Status = "maintenance"
	eng := NewEngine(s, 0)

	avail, err := eng.CheckAvailability(ref, Window{Start: day(1), End: day(2)})
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if avail.Available || avail.Remaining != 0 {
		t.Fatalf("maintenance unit must be unavailable, got %+v", avail)
	}

	_, err = eng.CreateReservation(CreateParams{Ref: ref, GuestID: 7, Start: day(1), End: day(2)})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for maintenance unit, got %v", err)
	}
}

func TestUnknownUnit(t *testing.T) {
	s, _ := storeWithRoom(1)
	eng := NewEngine(s, 0)

	_, err := eng.CheckAvailability(UnitRef{UnitRoom, 99}, Window{Start: day(1), End: day(2)})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err = eng.CreateReservation(CreateParams{Ref: UnitRef{UnitVehicle, 5}, GuestID: 1, Start: day(1), End: day(2)})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on create, got %v", err)
	}
}

func TestInvalidWindow(t *testing.T) {
	s, ref := storeWithRoom(1)
	eng := NewEngine(s, 0)

	_, err := eng.CheckAvailability(ref, Window{Start: day(5), End: day(5)})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow for empty window, got %v", err)
	}
	_, err = eng.CreateReservation(CreateParams{Ref: ref, GuestID: 1, Start: day(5), End: day(3)})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow for reversed window, got %v", err)
	}
}

func TestTransferBufferWindow(t *testing.T) {
	s := newFakeStore()
	s.transfers[3] = &models.TransferVehicle{Title: "Airport Van", City: "Nouakchott", Seats: 6, Status: unitStatusAvailable}
	s.transfers[3].ID = 3
	ref := UnitRef{UnitTransfer, 3}
	eng := NewEngine(s, 3*time.Hour)

	at := func(hour, min int) time.Time {
		return time.Date(2024, 7, 1, hour, min, 0, 0, time.UTC)
	}

	// Existing pickup at 14:00 blocks 11:00-17:00.
	if _, err := eng.CreateReservation(CreateParams{Ref: ref, GuestID: 7, Pickup: at(14, 0)}); err != nil {
		t.Fatalf("seed pickup: %v", err)
	}

	_, err := eng.CreateReservation(CreateParams{Ref: ref, GuestID: 8, Pickup: at(16, 30)})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("16:30 pickup inside buffer should conflict, got %v", err)
	}

	if _, err := eng.CreateReservation(CreateParams{Ref: ref, GuestID: 8, Pickup: at(17, 30)}); err != nil {
		t.Fatalf("17:30 pickup outside buffer: %v", err)
	}

	_, err = eng.CreateReservation(CreateParams{Ref: ref, GuestID: 9})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("missing pickup should be ErrInvalidWindow, got %v", err)
	}
}

func TestTransitionStatusMatrix(t *testing.T) {
	statuses := []string{StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusCancelled}
	allowed := map[string]map[string]bool{
		StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
		StatusConfirmed: {StatusActive: true, StatusCancelled: true},
		StatusActive:    {StatusCompleted: true, StatusCancelled: true},
		StatusCompleted: {},
		StatusCancelled: {},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			t.Run(from+"_to_"+to, func(t *testing.T) {
				s, ref := storeWithRoom(1)
				eng := NewEngine(s, 0)
				res, err := eng.CreateReservation(CreateParams{Ref: ref, GuestID: 7, Start: day(1), End: day(2)})
				if err != nil {
					t.Fatalf("seed: %v", err)
				}
				if err := s.UpdateReservationStatus(res.ID, from); err != nil {
					t.Fatalf("force status: %v", err)
				}

				updated, err := eng.TransitionStatus(res.ID, to)
				if allowed[from][to] {
					if err != nil {
						t.Fatalf("%s -> %s should succeed: %v", from, to, err)
					}
					if updated.Status != to {
						t.Fatalf("status not applied: got %q", updated.Status)
					}
				} else {
					if !errors.Is(err, ErrInvalidTransition) {
						t.Fatalf("%s -> %s should be ErrInvalidTransition, got %v", from, to, err)
					}
				}
			})
		}
	}
}

func TestSearchAvailableUnits(t *testing.T) {
	s, ref := storeWithRoom(1)
	s.rooms[2] = &models.Room{Title: "Budget Single", City: "Nouadhibou", Occupancy: 1, TotalUnits: 1, NightlyPrice: 30, Status: unitStatusAvailable}
	s.rooms[2].ID = 2
	s.rooms[3] = &models.Room{Title: "Retired Suite", City: "Nouakchott", Occupancy: 4, TotalUnits: 1, NightlyPrice: 50, Status: "inactive"}
	s.rooms[3].ID = 3
	eng := NewEngine(s, 0)

	// Book out room 1 for the searched window.
	if _, err := eng.CreateReservation(CreateParams{Ref: ref, GuestID: 7, Start: day(1), End: day(10)}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	window := Window{Start: day(2), End: day(4)}

	units, err := eng.SearchAvailableUnits(SearchFilters{UnitType: UnitRoom}, window)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(units) != 1 || units[0].Ref().ID != 2 {
		t.Fatalf("expected only room 2 available, got %d units", len(units))
	}

	// City filter excludes the one available room before any
	// availability query runs.
	units, err = eng.SearchAvailableUnits(SearchFilters{UnitType: UnitRoom, City: "Nouakchott"}, window)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(units) != 0 {
		t.Fatalf("expected no available rooms in Nouakchott, got %d", len(units))
	}
}

func TestCreateReservationInsertFailure(t *testing.T) {
	s, ref := storeWithRoom(1)
	s.failInsert = errors.New("connection reset")
	eng := NewEngine(s, 0)

	if _, err := eng.CreateReservation(CreateParams{Ref: ref, GuestID: 7, Start: day(1), End: day(2)}); err == nil {
		t.Fatal("expected insert failure to propagate")
	}
	if len(s.reservations) != 0 {
		t.Fatalf("nothing should be recorded on failure, found %d rows", len(s.reservations))
	}
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	s, ref := storeWithRoom(1)
	eng := NewEngine(s, 0)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = eng.CreateReservation(CreateParams{Ref: ref, GuestID: uint(i + 1), Start: day(1), End: day(5)})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrConflict) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("exactly one concurrent booking should win, got %d", succeeded)
	}
}
