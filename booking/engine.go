package booking

import (
	"fmt"
	"time"

	"tripnest-server/models"

	"golang.org/x/exp/slices"
)

// Reservation statuses. Blocking statuses count against capacity;
// cancelled and completed reservations free their window.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// BlockingStatuses are the statuses included in overlap counting.
var BlockingStatuses = []string{StatusPending, StatusConfirmed, StatusActive}

// transitions is the full reservation state machine. Absent keys and
// absent targets are invalid; there are no silent no-op transitions.
var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// Store is the persistence collaborator for the engine. WithUnitLock
// must serialize concurrent callers per unit (the GORM implementation
// takes a row lock on the unit inside a transaction), so the re-check
// inside CreateReservation cannot race with another insert.
type Store interface {
	GetUnit(ref UnitRef) (InventoryUnit, error)
	ListUnits(f SearchFilters) ([]InventoryUnit, error)
	FindBlockingReservations(ref UnitRef) ([]Window, error)
	InsertReservation(r *models.Reservation) error
	GetReservation(id uint) (*models.Reservation, error)
	UpdateReservationStatus(id uint, status string) error
	WithUnitLock(ref UnitRef, fn func(Store) error) error
}

// DefaultTransferBuffer approximates vehicle turnaround and travel time
// around a pickup. Overridable via TRANSFER_BUFFER_HOURS.
const DefaultTransferBuffer = 3 * time.Hour

// pendingTTL is how long a pending reservation holds its window before
// the expiry sweep may cancel it.
const pendingTTL = 24 * time.Hour

// Engine answers availability questions and creates reservations
// without double-booking. It is stateless apart from its store and
// safe for concurrent use.
type Engine struct {
	store          Store
	transferBuffer time.Duration
}

func NewEngine(store Store, transferBuffer time.Duration) *Engine {
	if transferBuffer <= 0 {
		transferBuffer = DefaultTransferBuffer
	}
	return &Engine{store: store, transferBuffer: transferBuffer}
}

// Availability is the answer to "can unit U be booked for window W?".
// Remaining may be negative when capacity was reduced under existing
// bookings; it is reported as computed.
type Availability struct {
	Available bool `json:"available"`
	Remaining int  `json:"remaining"`
}

// TransferWindow expands a pickup instant into the window a transfer
// booking blocks: [pickup-buffer, pickup+buffer].
func (e *Engine) TransferWindow(pickup time.Time) Window {
	return Window{Start: pickup.Add(-e.transferBuffer), End: pickup.Add(e.transferBuffer)}
}

// CheckAvailability loads the unit and counts blocking reservations
// overlapping the window. A unit whose own status is not available
// short-circuits to unavailable.
func (e *Engine) CheckAvailability(ref UnitRef, window Window) (Availability, error) {
	if !window.Start.Before(window.End) {
		return Availability{}, fmt.Errorf("booking: start must be before end: %w", ErrInvalidWindow)
	}
	unit, err := e.store.GetUnit(ref)
	if err != nil {
		return Availability{}, fmt.Errorf("booking: check availability: %w", err)
	}
	return e.checkUnit(e.store, unit, window)
}

func (e *Engine) checkUnit(s Store, unit InventoryUnit, window Window) (Availability, error) {
	if !unit.Bookable() {
		return Availability{Available: false, Remaining: 0}, nil
	}
	existing, err := s.FindBlockingReservations(unit.Ref())
	if err != nil {
		return Availability{}, fmt.Errorf("booking: load reservations: %w", err)
	}
	overlapping := 0
	for _, w := range existing {
		if w.Overlaps(window) {
			overlapping++
		}
	}
	remaining := unit.Capacity() - overlapping
	return Availability{Available: remaining > 0, Remaining: remaining}, nil
}

// CreateParams carries everything needed to create a reservation.
// Pickup is required for transfer units and ignored otherwise; Start
// and End are required for room and vehicle units.
type CreateParams struct {
	Ref        UnitRef
	GuestID    uint
	Start      time.Time
	End        time.Time
	Pickup     time.Time
	NumGuests  int
	TotalPrice float32
	Note       string
}

// CreateReservation re-validates availability at write time and inserts
// the reservation in pending status, all inside the store's per-unit
// critical section. Either the reservation is fully recorded or nothing
// is written.
func (e *Engine) CreateReservation(p CreateParams) (*models.Reservation, error) {
	window, pickup, err := e.resolveWindow(p)
	if err != nil {
		return nil, err
	}

	res := &models.Reservation{
		UnitType:   p.Ref.Type,
		UnitID:     p.Ref.ID,
		GuestID:    p.GuestID,
		StartAt:    window.Start,
		EndAt:      window.End,
		PickupAt:   pickup,
		NumGuests:  p.NumGuests,
		TotalPrice: p.TotalPrice,
		Status:     StatusPending,
		Note:       p.Note,
		ExpiresAt:  time.Now().Add(pendingTTL),
	}

	err = e.store.WithUnitLock(p.Ref, func(tx Store) error {
		unit, err := tx.GetUnit(p.Ref)
		if err != nil {
			return err
		}
		avail, err := e.checkUnit(tx, unit, window)
		if err != nil {
			return err
		}
		if !avail.Available {
			return fmt.Errorf("unit %s/%d unavailable for [%s, %s): %w",
				p.Ref.Type, p.Ref.ID,
				window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339),
				ErrConflict)
		}
		return tx.InsertReservation(res)
	})
	if err != nil {
		return nil, fmt.Errorf("booking: create reservation: %w", err)
	}
	return res, nil
}

func (e *Engine) resolveWindow(p CreateParams) (Window, *time.Time, error) {
	if p.Ref.Type == UnitTransfer {
		if p.Pickup.IsZero() {
			return Window{}, nil, fmt.Errorf("booking: transfer pickup required: %w", ErrInvalidWindow)
		}
		pickup := p.Pickup
		return e.TransferWindow(pickup), &pickup, nil
	}
	if !p.Start.Before(p.End) {
		return Window{}, nil, fmt.Errorf("booking: start must be before end: %w", ErrInvalidWindow)
	}
	return Window{Start: p.Start, End: p.End}, nil, nil
}

// TransitionStatus enforces the reservation state machine. Moving to
// cancelled or completed frees the window automatically because the
// overlap query filters by blocking status.
func (e *Engine) TransitionStatus(id uint, newStatus string) (*models.Reservation, error) {
	res, err := e.store.GetReservation(id)
	if err != nil {
		return nil, fmt.Errorf("booking: transition status: %w", err)
	}
	allowed, ok := transitions[res.Status]
	if !ok || !slices.Contains(allowed, newStatus) {
		return nil, fmt.Errorf("booking: %s -> %s: %w", res.Status, newStatus, ErrInvalidTransition)
	}
	if err := e.store.UpdateReservationStatus(id, newStatus); err != nil {
		return nil, fmt.Errorf("booking: transition status: %w", err)
	}
	res.Status = newStatus
	return res, nil
}

// SearchFilters are the cheap attribute filters applied before the
// per-unit availability check.
type SearchFilters struct {
	UnitType     string  `json:"unitType"`
	City         string  `json:"city"`
	MaxPrice     float32 `json:"maxPrice"`
	MinOccupancy int     `json:"minOccupancy"`
}

// SearchAvailableUnits filters candidates on attributes first, then
// runs the availability check per survivor. The order matters: the
// availability check costs a reservation query per unit, so the cheap
// filters shrink the candidate set before it runs.
func (e *Engine) SearchAvailableUnits(f SearchFilters, window Window) ([]InventoryUnit, error) {
	if !window.Start.Before(window.End) {
		return nil, fmt.Errorf("booking: start must be before end: %w", ErrInvalidWindow)
	}
	candidates, err := e.store.ListUnits(f)
	if err != nil {
		return nil, fmt.Errorf("booking: search units: %w", err)
	}
	available := make([]InventoryUnit, 0, len(candidates))
	for _, unit := range candidates {
		avail, err := e.checkUnit(e.store, unit, window)
		if err != nil {
			return nil, fmt.Errorf("booking: search units: %w", err)
		}
		if avail.Available {
			available = append(available, unit)
		}
	}
	return available, nil
}
