package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/saude-connect/internal/apperr"
	"github.com/hackgods/saude-connect/internal/availability"
	"github.com/hackgods/saude-connect/internal/lock"
	"github.com/hackgods/saude-connect/internal/metrics"
	"github.com/hackgods/saude-connect/internal/patient"
	"github.com/hackgods/saude-connect/internal/refdata"
	"github.com/hackgods/saude-connect/internal/store"
)

// Friday 2025-06-06; the first bookable date is Monday 2025-06-09.
var fixedNow = time.Date(2025, time.June, 6, 10, 0, 0, 0, time.UTC)

type harness struct {
	svc   *Service
	repo  *StoreRepository
	users *patient.Service
	calc  *availability.Calculator
}

func newHarness(t *testing.T) harness {
	t.Helper()
	backend := store.NewMemoryBackend()
	locker := lock.NewLocalLocker(time.Second)
	clock := func() time.Time { return fixedNow }

	refs := refdata.NewProvider(store.NewCollection[refdata.City](backend, store.CollectionReference, nil), locker, nil)
	users := patient.NewService(store.NewCollection[patient.User](backend, store.CollectionUsers, nil), locker, nil)
	repo := NewStoreRepository(store.NewCollection[Booking](backend, store.CollectionBookings, nil))
	repo.now = clock
	inv := availability.NewInventory(store.NewCollection[availability.SlotInventory](backend, store.CollectionSlotInventory, nil), refs, locker, nil)
	calc := availability.NewCalculator(refs, Reservations(repo), inv, availability.WithClock(clock))

	svc := NewService(repo, users, refs, calc, locker,
		WithClock(clock),
		WithMetrics(metrics.NewCollector(prometheus.NewRegistry())),
	)
	return harness{svc: svc, repo: repo, users: users, calc: calc}
}

func (h harness) user(t *testing.T, nationalID string) patient.User {
	t.Helper()
	u, _, err := h.users.Authenticate(context.Background(), nationalID, "1990-05-15")
	require.NoError(t, err)
	return u
}

func cardiology(userID uuid.UUID) CreateRequest {
	return CreateRequest{
		UserID:      userID,
		CityID:      1,
		ClinicID:    1,
		SpecialtyID: 2,
		Doctor:      "Dra. Ana Rodrigues",
		Date:        "2025-06-09",
		Time:        "09:00",
		Turn:        availability.TurnMorning,
		Notes:       "first visit",
	}
}

func TestCreateSnapshotsReferenceNames(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.user(t, "11144477735")

	b, err := h.svc.Create(ctx, cardiology(u.ID))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, StatusScheduled, b.Status)
	assert.Equal(t, "São Paulo", b.CityName)
	assert.Equal(t, "UBS Vila Madalena", b.ClinicName)
	assert.Equal(t, "Rua Harmonia, 123 - Vila Madalena", b.ClinicAddress)
	assert.Equal(t, "Cardiologia", b.SpecialtyName)
	assert.Equal(t, "Dra. Ana Rodrigues", b.DoctorName)
	assert.Equal(t, "first visit", b.Notes)
	assert.Equal(t, fixedNow, b.CreatedAt)

	got, err := h.svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestCreatedBookingTakesTheSlot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.user(t, "11144477735")
	bob := h.user(t, "52998224725")

	_, err := h.svc.Create(ctx, cardiology(alice.ID))
	require.NoError(t, err)

	days, err := h.calc.AvailableDates(ctx, availability.Query{ClinicID: 1, SpecialtyID: 2, Doctor: "Dra. Ana Rodrigues"})
	require.NoError(t, err)
	assert.NotContains(t, days[0].Turns.Morning.Times, "09:00")

	_, err = h.svc.Create(ctx, cardiology(bob.ID))
	assert.ErrorIs(t, err, availability.ErrSlotFull)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	// another doctor at the same time is still free
	req := cardiology(bob.ID)
	req.Doctor = "Dr. Carlos Oliveira"
	_, err = h.svc.Create(ctx, req)
	assert.NoError(t, err)
}

func TestCreateRejectsSecondActiveBookingSameDay(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.user(t, "11144477735")

	first, err := h.svc.Create(ctx, cardiology(u.ID))
	require.NoError(t, err)

	req := cardiology(u.ID)
	req.Time = "10:00"
	_, err = h.svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrDuplicateBooking)

	// a different date is fine
	req.Date = "2025-06-10"
	_, err = h.svc.Create(ctx, req)
	require.NoError(t, err)

	// cancelling releases both the slot and the day
	_, err = h.svc.Cancel(ctx, first.ID)
	require.NoError(t, err)
	again, err := h.svc.Create(ctx, cardiology(u.ID))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, again.ID)
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.user(t, "11144477735")

	tests := []struct {
		name   string
		modify func(*CreateRequest)
		want   error
	}{
		{"missing doctor", func(r *CreateRequest) { r.Doctor = "" }, apperr.ErrValidation},
		{"missing user", func(r *CreateRequest) { r.UserID = uuid.Nil }, apperr.ErrValidation},
		{"missing clinic", func(r *CreateRequest) { r.ClinicID = 0 }, apperr.ErrValidation},
		{"bad turn", func(r *CreateRequest) { r.Turn = "evening" }, apperr.ErrValidation},
		{"bad date", func(r *CreateRequest) { r.Date = "09/06/2025" }, apperr.ErrValidation},
		{"unknown user", func(r *CreateRequest) { r.UserID = uuid.New() }, patient.ErrUserNotFound},
		{"doctor elsewhere", func(r *CreateRequest) { r.Doctor = "Dr. João Silva" }, refdata.ErrDoctorNotFound},
		{"clinic in other city", func(r *CreateRequest) { r.CityID = 2 }, refdata.ErrClinicNotFound},
		{"weekend", func(r *CreateRequest) { r.Date = "2025-06-07" }, availability.ErrWeekend},
		{"past", func(r *CreateRequest) { r.Date = "2025-06-02" }, availability.ErrOutsideHorizon},
		{"time outside turn", func(r *CreateRequest) { r.Time = "14:00" }, availability.ErrUnknownTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := cardiology(u.ID)
			tt.modify(&req)
			_, err := h.svc.Create(ctx, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	all, err := h.repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestConcurrentCreatesForOneSlot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ids := []string{"11144477735", "52998224725", "12345678909"}
	users := make([]patient.User, len(ids))
	for i, id := range ids {
		users[i] = h.user(t, id)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for _, u := range users {
		wg.Add(1)
		go func(u patient.User) {
			defer wg.Done()
			_, err := h.svc.Create(ctx, cardiology(u.ID))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, availability.ErrSlotFull)
		}(u)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}

func TestSetStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []Status
		next    Status
		wantErr error
	}{
		{"confirm", nil, StatusConfirmed, nil},
		{"cancel scheduled", nil, StatusCancelled, nil},
		{"complete scheduled", nil, StatusCompleted, ErrInvalidStatusTransition},
		{"complete confirmed", []Status{StatusConfirmed}, StatusCompleted, nil},
		{"cancel confirmed", []Status{StatusConfirmed}, StatusCancelled, nil},
		{"revive cancelled", []Status{StatusCancelled}, StatusScheduled, ErrInvalidStatusTransition},
		{"confirm cancelled", []Status{StatusCancelled}, StatusConfirmed, ErrInvalidStatusTransition},
		{"cancel completed", []Status{StatusConfirmed, StatusCompleted}, StatusCancelled, ErrInvalidStatusTransition},
		{"same status", []Status{StatusConfirmed}, StatusConfirmed, nil},
		{"unknown status", nil, Status("lost"), ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			u := h.user(t, "11144477735")
			b, err := h.svc.Create(ctx, cardiology(u.ID))
			require.NoError(t, err)
			for _, step := range tt.path {
				_, err := h.svc.SetStatus(ctx, b.ID, step)
				require.NoError(t, err)
			}

			got, err := h.svc.SetStatus(ctx, b.ID, tt.next)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.next, got.Status)
		})
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.user(t, "11144477735")
	b, err := h.svc.Create(ctx, cardiology(u.ID))
	require.NoError(t, err)

	first, err := h.svc.Cancel(ctx, b.ID)
	require.NoError(t, err)
	second, err := h.svc.Cancel(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = h.svc.Cancel(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListByUserKeepsCreationOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.user(t, "11144477735")
	bob := h.user(t, "52998224725")

	dates := []string{"2025-06-11", "2025-06-09", "2025-06-10"}
	for _, d := range dates {
		req := cardiology(alice.ID)
		req.Date = d
		_, err := h.svc.Create(ctx, req)
		require.NoError(t, err)
	}
	req := cardiology(bob.ID)
	req.Doctor = "Dr. Carlos Oliveira"
	_, err := h.svc.Create(ctx, req)
	require.NoError(t, err)

	got, err := h.svc.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, d := range dates {
		assert.Equal(t, d, got[i].Date)
	}

	none, err := h.svc.ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListAllEnrichesWithOwner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.user(t, "11144477735")
	bob := h.user(t, "52998224725")

	name, phone := "Alice Souza", "11 98888-7777"
	_, err := h.users.UpdateProfile(ctx, alice.ID, patient.ProfileUpdate{FullName: &name, Phone: &phone})
	require.NoError(t, err)

	_, err = h.svc.Create(ctx, cardiology(alice.ID))
	require.NoError(t, err)
	req := cardiology(bob.ID)
	req.Doctor = "Dr. Carlos Oliveira"
	_, err = h.svc.Create(ctx, req)
	require.NoError(t, err)

	all, err := h.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, alice.ID, all[0].UserID)
	assert.Equal(t, "Alice Souza", all[0].UserName)
	assert.Equal(t, "11 98888-7777", all[0].UserPhone)

	assert.Equal(t, bob.ID, all[1].UserID)
	assert.Equal(t, "Nome não informado", all[1].UserName)
	assert.Equal(t, "52998224725", all[1].UserNationalID)
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.user(t, "11144477735")
	h.user(t, "52998224725")

	b, err := h.svc.Create(ctx, cardiology(u.ID))
	require.NoError(t, err)
	_, err = h.svc.Cancel(ctx, b.ID)
	require.NoError(t, err)
	_, err = h.svc.Create(ctx, cardiology(u.ID))
	require.NoError(t, err)
	require.NoError(t, h.repo.Insert(ctx, Booking{ID: uuid.New(), UserID: u.ID, Date: "2025-06-06", Status: StatusConfirmed}))

	st, err := h.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalBookings)
	assert.Equal(t, 2, st.TotalUsers)
	assert.Equal(t, 1, st.Today)
	assert.Equal(t, map[Status]int{
		StatusScheduled: 1,
		StatusConfirmed: 1,
		StatusCancelled: 1,
		StatusCompleted: 0,
	}, st.ByStatus)
}

func TestCompletePastBookings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.user(t, "11144477735")

	past := Booking{ID: uuid.New(), UserID: u.ID, Date: "2025-06-05", Status: StatusConfirmed}
	pastScheduled := Booking{ID: uuid.New(), UserID: u.ID, Date: "2025-06-04", Status: StatusScheduled}
	today := Booking{ID: uuid.New(), UserID: u.ID, Date: "2025-06-06", Status: StatusConfirmed}
	for _, b := range []Booking{past, pastScheduled, today} {
		require.NoError(t, h.repo.Insert(ctx, b))
	}

	n, err := h.svc.CompletePastBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := h.svc.Get(ctx, past.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	got, err = h.svc.Get(ctx, pastScheduled.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, got.Status)

	got, err = h.svc.Get(ctx, today.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)

	n, err = h.svc.CompletePastBookings(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReservationsSkipCancelled(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.user(t, "11144477735")

	b, err := h.svc.Create(ctx, cardiology(u.ID))
	require.NoError(t, err)

	source := Reservations(h.repo)
	res, err := source.Reservations(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []availability.Reservation{{Date: "2025-06-09", Time: "09:00", Turn: availability.TurnMorning, Doctor: "Dra. Ana Rodrigues"}}, res)

	_, err = h.svc.Cancel(ctx, b.ID)
	require.NoError(t, err)
	res, err = source.Reservations(ctx, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, res)
}
