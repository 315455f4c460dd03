package booking

import (
	"errors"
	"fmt"

	"tripnest-server/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Postgres-backed Store. WithUnitLock serializes
// writers per unit with SELECT ... FOR UPDATE on the unit row, which is
// what makes the engine's re-check-then-insert safe under concurrent
// booking attempts across stateless app instances.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetUnit(ref UnitRef) (InventoryUnit, error) {
	switch ref.Type {
	case UnitRoom:
		var m models.Room
		if err := s.db.First(&m, ref.ID).Error; err != nil {
			return nil, unitErr(ref, err)
		}
		return UnitForRoom(&m), nil
	case UnitVehicle:
		var m models.Vehicle
		if err := s.db.First(&m, ref.ID).Error; err != nil {
			return nil, unitErr(ref, err)
		}
		return UnitForVehicle(&m), nil
	case UnitTransfer:
		var m models.TransferVehicle
		if err := s.db.First(&m, ref.ID).Error; err != nil {
			return nil, unitErr(ref, err)
		}
		return UnitForTransfer(&m), nil
	}
	return nil, fmt.Errorf("unknown unit type %q: %w", ref.Type, ErrNotFound)
}

func (s *GormStore) ListUnits(f SearchFilters) ([]InventoryUnit, error) {
	q := s.db.Where("status = ?", unitStatusAvailable)
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}

	var units []InventoryUnit
	switch f.UnitType {
	case UnitRoom:
		if f.MaxPrice > 0 {
			q = q.Where("nightly_price <= ?", f.MaxPrice)
		}
		if f.MinOccupancy > 0 {
			q = q.Where("occupancy >= ?", f.MinOccupancy)
		}
		var rooms []models.Room
		if err := q.Find(&rooms).Error; err != nil {
			return nil, err
		}
		for i := range rooms {
			units = append(units, UnitForRoom(&rooms[i]))
		}
	case UnitVehicle:
		if f.MaxPrice > 0 {
			q = q.Where("daily_price <= ?", f.MaxPrice)
		}
		if f.MinOccupancy > 0 {
			q = q.Where("seats >= ?", f.MinOccupancy)
		}
		var vehicles []models.Vehicle
		if err := q.Find(&vehicles).Error; err != nil {
			return nil, err
		}
		for i := range vehicles {
			units = append(units, UnitForVehicle(&vehicles[i]))
		}
	case UnitTransfer:
		if f.MaxPrice > 0 {
			q = q.Where("pickup_fee <= ?", f.MaxPrice)
		}
		if f.MinOccupancy > 0 {
			q = q.Where("seats >= ?", f.MinOccupancy)
		}
		var tvs []models.TransferVehicle
		if err := q.Find(&tvs).Error; err != nil {
			return nil, err
		}
		for i := range tvs {
			units = append(units, UnitForTransfer(&tvs[i]))
		}
	default:
		return nil, fmt.Errorf("unknown unit type %q: %w", f.UnitType, ErrNotFound)
	}
	return units, nil
}

func (s *GormStore) FindBlockingReservations(ref UnitRef) ([]Window, error) {
	var rows []models.Reservation
	err := s.db.Select("start_at", "end_at").
		Where("unit_type = ? AND unit_id = ? AND status IN ?", ref.Type, ref.ID, BlockingStatuses).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	windows := make([]Window, len(rows))
	for i, r := range rows {
		windows[i] = Window{Start: r.StartAt, End: r.EndAt}
	}
	return windows, nil
}

func (s *GormStore) InsertReservation(r *models.Reservation) error {
	return s.db.Create(r).Error
}

func (s *GormStore) GetReservation(id uint) (*models.Reservation, error) {
	var r models.Reservation
	if err := s.db.First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &r, nil
}

func (s *GormStore) UpdateReservationStatus(id uint, status string) error {
	res := s.db.Model(&models.Reservation{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *GormStore) WithUnitLock(ref UnitRef, fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		locked := tx.Clauses(clause.Locking{Strength: "UPDATE"})
		var err error
		switch ref.Type {
		case UnitRoom:
			err = locked.First(&models.Room{}, ref.ID).Error
		case UnitVehicle:
			err = locked.First(&models.Vehicle{}, ref.ID).Error
		case UnitTransfer:
			err = locked.First(&models.TransferVehicle{}, ref.ID).Error
		default:
			return fmt.Errorf("unknown unit type %q: %w", ref.Type, ErrNotFound)
		}
		if err != nil {
			return unitErr(ref, err)
		}
		return fn(&GormStore{db: tx})
	})
}

func unitErr(ref UnitRef, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("unit %s/%d: %w", ref.Type, ref.ID, ErrNotFound)
	}
	return err
}
