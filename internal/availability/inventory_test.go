package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/saude-connect/internal/apperr"
	"github.com/hackgods/saude-connect/internal/lock"
	"github.com/hackgods/saude-connect/internal/store"
)

// flakyBackend fails the next failGets reads and then behaves like memory.
type flakyBackend struct {
	*store.MemoryBackend
	failGets int
}

func (f *flakyBackend) Get(ctx context.Context, name string) ([]byte, error) {
	if f.failGets > 0 {
		f.failGets--
		return nil, errors.New("connection reset")
	}
	return f.MemoryBackend.Get(ctx, name)
}

func TestInventoryKeepsEntriesWhenReadFails(t *testing.T) {
	ctx := context.Background()
	backend := &flakyBackend{MemoryBackend: store.NewMemoryBackend()}
	coll := store.NewCollection[SlotInventory](backend, store.CollectionSlotInventory, nil)
	doctors := stubDoctors{{1, 2}: {"Dr. Carlos Oliveira"}}
	inv := NewInventory(coll, doctors, lock.NewLocalLocker(time.Second), nil)

	kept, err := inv.Create(ctx, SlotInventory{ClinicID: 1, SpecialtyID: 2, Date: "2025-06-10", Turn: TurnMorning, Total: 2})
	require.NoError(t, err)

	backend.failGets = 1
	_, err = inv.Create(ctx, SlotInventory{ClinicID: 1, SpecialtyID: 2, Date: "2025-06-11", Turn: TurnMorning, Total: 2})
	assert.ErrorIs(t, err, apperr.ErrStore)

	backend.failGets = 1
	assert.ErrorIs(t, inv.Delete(ctx, uuid.New()), apperr.ErrStore)

	entries := inv.List(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, kept.ID, entries[0].ID)
}

func TestInventoryCreateAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.inventory.Create(ctx, SlotInventory{ClinicID: 1, SpecialtyID: 2, Date: "2025-06-10", Turn: TurnMorning, Total: 4})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	_, err = f.inventory.Create(ctx, SlotInventory{ClinicID: 5, SpecialtyID: 9, Date: "2025-06-10", Turn: TurnMorning, Total: 1})
	require.NoError(t, err)

	assert.Len(t, f.inventory.List(ctx), 2)
	got := f.inventory.ListFor(ctx, 1, 2)
	require.Len(t, got, 1)
	assert.Equal(t, entry.ID, got[0].ID)
}

func TestInventoryCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	valid := SlotInventory{ClinicID: 1, SpecialtyID: 2, Date: "2025-06-10", Turn: TurnMorning, Total: 4}

	_, err := f.inventory.Create(ctx, valid)
	require.NoError(t, err)

	tests := []struct {
		name   string
		modify func(*SlotInventory)
		want   error
	}{
		{"duplicate", func(*SlotInventory) {}, ErrInventoryExists},
		{"zero total", func(e *SlotInventory) { e.Total = 0 }, ErrInvalidTotal},
		{"bad turn", func(e *SlotInventory) { e.Turn = "evening" }, ErrInvalidTurn},
		{"bad date", func(e *SlotInventory) { e.Date = "tomorrow" }, ErrInvalidDate},
		{"unknown pair", func(e *SlotInventory) { e.ClinicID = 77 }, errPairNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.modify(&in)
			_, err := f.inventory.Create(ctx, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Len(t, f.inventory.List(ctx), 1)
}

func TestInventoryDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.inventory.Create(ctx, SlotInventory{ClinicID: 1, SpecialtyID: 2, Date: "2025-06-10", Turn: TurnAfternoon, Total: 4})
	require.NoError(t, err)

	require.NoError(t, f.inventory.Delete(ctx, entry.ID))
	assert.Empty(t, f.inventory.List(ctx))
	assert.ErrorIs(t, f.inventory.Delete(ctx, entry.ID), ErrInventoryNotFound)
}
