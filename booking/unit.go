package booking

import (
	"time"

	"tripnest-server/models"
)

// Unit types persisted on Reservation.UnitType.
const (
	UnitRoom     = "room"
	UnitVehicle  = "vehicle"
	UnitTransfer = "transfer"
)

// UnitRef identifies one inventory unit across verticals.
type UnitRef struct {
	Type string
	ID   uint
}

// InventoryUnit is the capability every bookable vertical adapts to.
// The engine is written once against this interface; Room, Vehicle and
// TransferVehicle each wrap into it.
type InventoryUnit interface {
	Ref() UnitRef
	Capacity() int
	Bookable() bool
	// Model exposes the underlying vertical record for serialization.
	Model() interface{}
}

// Window is a half-open interval [Start, End). Touching endpoints do
// not overlap: one checkout equal to the next check-in is allowed.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Overlaps(other Window) bool {
	return other.Start.Before(w.End) && other.End.After(w.Start)
}

const unitStatusAvailable = "available"

type roomUnit struct{ m *models.Room }

func (u roomUnit) Ref() UnitRef { return UnitRef{UnitRoom, u.m.ID} }
func (u roomUnit) Capacity() int { return u.m.TotalUnits }
func (u roomUnit) Bookable() bool { return u.m.Status == unitStatusAvailable }
func (u roomUnit) Model() interface{} { return u.m }

type vehicleUnit struct{ m *models.Vehicle }

func (u vehicleUnit) Ref() UnitRef { return UnitRef{UnitVehicle, u.m.ID} }
func (u vehicleUnit) Capacity() int { return u.m.TotalUnits }
func (u vehicleUnit) Bookable() bool { return u.m.Status == unitStatusAvailable }
func (u vehicleUnit) Model() interface{} { return u.m }

type transferUnit struct{ m *models.TransferVehicle }

func (u transferUnit) Ref() UnitRef { return UnitRef{UnitTransfer, u.m.ID} }
func (u transferUnit) Capacity() int { return 1 }
func (u transferUnit) Bookable() bool { return u.m.Status == unitStatusAvailable }
func (u transferUnit) Model() interface{} { return u.m }

// UnitForRoom adapts a Room to the engine's inventory interface.
func UnitForRoom(m *models.Room) InventoryUnit { return roomUnit{m} }

// UnitForVehicle adapts a rental Vehicle.
func UnitForVehicle(m *models.Vehicle) InventoryUnit { return vehicleUnit{m} }

// UnitForTransfer adapts a TransferVehicle. A transfer vehicle is a
// single physical car, so capacity is always 1.
func UnitForTransfer(m *models.TransferVehicle) InventoryUnit { return transferUnit{m} }
