package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/saude-connect/internal/lock"
	"github.com/hackgods/saude-connect/internal/logging"
	"github.com/hackgods/saude-connect/internal/store"
)

const inventoryLockKey = "collection:" + store.CollectionSlotInventory

// DoctorLister is the reference lookup availability depends on. It fails
// with a not-found error for a clinic/specialty pair outside the tree.
type DoctorLister interface {
	ListDoctors(ctx context.Context, clinicID, specialtyID int) ([]string, error)
}

// Inventory manages the admin-configured turn caps.
type Inventory struct {
	entries *store.Collection[SlotInventory]
	doctors DoctorLister
	locker  lock.Locker
	logger  *zap.Logger
	now     func() time.Time
}

func NewInventory(entries *store.Collection[SlotInventory], doctors DoctorLister, locker lock.Locker, logger *zap.Logger) *Inventory {
	if entries == nil || doctors == nil || locker == nil {
		panic("availability: inventory dependencies required")
	}
	return &Inventory{
		entries: entries,
		doctors: doctors,
		locker:  locker,
		logger:  logging.OrNop(logger),
		now:     time.Now,
	}
}

func (inv *Inventory) Create(ctx context.Context, in SlotInventory) (SlotInventory, error) {
	if !in.Turn.IsValid() {
		return SlotInventory{}, ErrInvalidTurn
	}
	if in.Total <= 0 {
		return SlotInventory{}, ErrInvalidTotal
	}
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		return SlotInventory{}, ErrInvalidDate
	}
	if _, err := inv.doctors.ListDoctors(ctx, in.ClinicID, in.SpecialtyID); err != nil {
		return SlotInventory{}, err
	}

	entry := SlotInventory{
		ID:          uuid.New(),
		ClinicID:    in.ClinicID,
		SpecialtyID: in.SpecialtyID,
		Date:        in.Date,
		Turn:        in.Turn,
		Total:       in.Total,
		CreatedAt:   inv.now().UTC(),
	}

	err := inv.locker.WithLock(ctx, inventoryLockKey, func(ctx context.Context) error {
		records, err := inv.entries.LoadForUpdate(ctx)
		if err != nil {
			return err
		}
		for _, e := range records {
			if e.ClinicID == entry.ClinicID && e.SpecialtyID == entry.SpecialtyID && e.Date == entry.Date && e.Turn == entry.Turn {
				return ErrInventoryExists
			}
		}
		return inv.entries.Save(ctx, append(records, entry))
	})
	if err != nil {
		return SlotInventory{}, err
	}

	inv.logger.Info("slot inventory created",
		zap.String("inventory_id", entry.ID.String()),
		zap.Int("clinic_id", entry.ClinicID),
		zap.Int("specialty_id", entry.SpecialtyID),
		zap.String("date", entry.Date),
		zap.String("turn", string(entry.Turn)),
		zap.Int("total", entry.Total),
	)
	return entry, nil
}

func (inv *Inventory) List(ctx context.Context) []SlotInventory {
	return inv.entries.Load(ctx)
}

// ListFor returns the entries of one clinic/specialty pair.
func (inv *Inventory) ListFor(ctx context.Context, clinicID, specialtyID int) []SlotInventory {
	return inv.entries.Filter(ctx, func(e SlotInventory) bool {
		return e.ClinicID == clinicID && e.SpecialtyID == specialtyID
	})
}

func (inv *Inventory) Delete(ctx context.Context, id uuid.UUID) error {
	return inv.locker.WithLock(ctx, inventoryLockKey, func(ctx context.Context) error {
		records, err := inv.entries.LoadForUpdate(ctx)
		if err != nil {
			return err
		}
		for i, e := range records {
			if e.ID == id {
				return inv.entries.Save(ctx, append(records[:i], records[i+1:]...))
			}
		}
		return ErrInventoryNotFound
	})
}
