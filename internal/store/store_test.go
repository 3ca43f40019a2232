package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/saude-connect/internal/apperr"
)

type widget struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type failingBackend struct {
	getErr error
	putErr error
}

func (f failingBackend) Get(context.Context, string) ([]byte, error) { return nil, f.getErr }
func (f failingBackend) Put(context.Context, string, []byte) error  { return f.putErr }
func (f failingBackend) Ping(context.Context) error                 { return nil }
func (f failingBackend) Name() string                               { return "failing" }

func TestLoadMissingCollectionIsEmpty(t *testing.T) {
	coll := NewCollection[widget](NewMemoryBackend(), "widgets", nil)

	records := coll.Load(context.Background())
	require.NotNil(t, records)
	assert.Empty(t, records)
}

func TestLoadCorruptCollectionIsEmpty(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Put(ctx, "widgets", []byte("{not json")))

	coll := NewCollection[widget](backend, "widgets", nil)
	assert.Empty(t, coll.Load(ctx))
}

func TestLoadBackendFailureIsEmpty(t *testing.T) {
	coll := NewCollection[widget](failingBackend{getErr: errors.New("disk gone")}, "widgets", nil)
	assert.Empty(t, coll.Load(context.Background()))
}

func TestSaveFailureIsStoreError(t *testing.T) {
	coll := NewCollection[widget](failingBackend{putErr: errors.New("read only")}, "widgets", nil)

	err := coll.Save(context.Background(), []widget{{ID: 1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrStore))
}

func TestSaveOverwritesAndPreservesOrder(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection[widget](NewMemoryBackend(), "widgets", nil)

	require.NoError(t, coll.Save(ctx, []widget{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}))
	require.NoError(t, coll.Save(ctx, []widget{{ID: 3, Name: "c"}, {ID: 1, Name: "a"}}))

	assert.Equal(t, []widget{{ID: 3, Name: "c"}, {ID: 1, Name: "a"}}, coll.Load(ctx))
}

func TestFindFilterAppendUpdate(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection[widget](NewMemoryBackend(), "widgets", nil)

	require.NoError(t, coll.Append(ctx, widget{ID: 1, Name: "a"}))
	require.NoError(t, coll.Append(ctx, widget{ID: 2, Name: "b"}))
	require.NoError(t, coll.Append(ctx, widget{ID: 3, Name: "b"}))

	w, ok := coll.Find(ctx, func(w widget) bool { return w.ID == 2 })
	require.True(t, ok)
	assert.Equal(t, "b", w.Name)

	_, ok = coll.Find(ctx, func(w widget) bool { return w.ID == 9 })
	assert.False(t, ok)

	assert.Len(t, coll.Filter(ctx, func(w widget) bool { return w.Name == "b" }), 2)
	assert.Empty(t, coll.Filter(ctx, func(w widget) bool { return w.Name == "z" }))

	updated, err := coll.Update(ctx, func(w widget) bool { return w.ID == 3 }, func(w *widget) error {
		w.Name = "c"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "c", updated.Name)
	assert.Equal(t, []widget{{1, "a"}, {2, "b"}, {3, "c"}}, coll.Load(ctx))
}

func TestUpdateMissingRecord(t *testing.T) {
	coll := NewCollection[widget](NewMemoryBackend(), "widgets", nil)

	_, err := coll.Update(context.Background(), func(widget) bool { return true }, func(*widget) error { return nil })
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateMutateErrorDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	coll := NewCollection[widget](NewMemoryBackend(), "widgets", nil)
	require.NoError(t, coll.Save(ctx, []widget{{ID: 1, Name: "a"}}))

	boom := errors.New("rejected")
	_, err := coll.Update(ctx, func(w widget) bool { return w.ID == 1 }, func(w *widget) error {
		w.Name = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []widget{{ID: 1, Name: "a"}}, coll.Load(ctx))
}

// flakyBackend fails the next failGets reads and then behaves like memory.
type flakyBackend struct {
	*MemoryBackend
	failGets int
}

func (f *flakyBackend) Get(ctx context.Context, name string) ([]byte, error) {
	if f.failGets > 0 {
		f.failGets--
		return nil, errors.New("connection reset")
	}
	return f.MemoryBackend.Get(ctx, name)
}

func TestLoadForUpdate(t *testing.T) {
	ctx := context.Background()
	backend := &flakyBackend{MemoryBackend: NewMemoryBackend()}
	coll := NewCollection[widget](backend, "widgets", nil)

	records, err := coll.LoadForUpdate(ctx)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	require.NoError(t, coll.Save(ctx, []widget{{ID: 1, Name: "a"}}))
	backend.failGets = 1
	_, err = coll.LoadForUpdate(ctx)
	assert.ErrorIs(t, err, apperr.ErrStore)

	require.NoError(t, backend.Put(ctx, "widgets", []byte("{not json")))
	_, err = coll.LoadForUpdate(ctx)
	assert.ErrorIs(t, err, apperr.ErrStore)
}

func TestWritesKeepRecordsWhenReadFails(t *testing.T) {
	ctx := context.Background()
	backend := &flakyBackend{MemoryBackend: NewMemoryBackend()}
	coll := NewCollection[widget](backend, "widgets", nil)
	require.NoError(t, coll.Save(ctx, []widget{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}))

	backend.failGets = 1
	err := coll.Append(ctx, widget{ID: 3, Name: "c"})
	assert.ErrorIs(t, err, apperr.ErrStore)

	backend.failGets = 1
	_, err = coll.Update(ctx, func(w widget) bool { return w.ID == 1 }, func(w *widget) error {
		w.Name = "changed"
		return nil
	})
	assert.ErrorIs(t, err, apperr.ErrStore)

	assert.Equal(t, []widget{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}, coll.Load(ctx))
}

func TestMemoryBackendCopiesBuffers(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	buf := []byte(`[]`)
	require.NoError(t, backend.Put(ctx, "x", buf))
	buf[0] = '{'

	got, err := backend.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}
