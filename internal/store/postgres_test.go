package store

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgBackendLoadsCollection(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT records::text FROM record_collections").
		WithArgs("widgets").
		WillReturnRows(pgxmock.NewRows([]string{"records"}).AddRow(`[{"id":1,"name":"a"}]`))

	coll := NewCollection[widget](NewPgBackend(mock), "widgets", nil)
	assert.Equal(t, []widget{{ID: 1, Name: "a"}}, coll.Load(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgBackendMissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT records::text FROM record_collections").
		WithArgs("widgets").
		WillReturnRows(pgxmock.NewRows([]string{"records"}))

	_, err = NewPgBackend(mock).Get(context.Background(), "widgets")
	assert.ErrorIs(t, err, ErrCollectionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgBackendQueryFailureLoadsEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT records::text FROM record_collections").
		WithArgs("widgets").
		WillReturnError(errors.New("connection reset"))

	coll := NewCollection[widget](NewPgBackend(mock), "widgets", nil)
	assert.Empty(t, coll.Load(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgBackendSaveUpserts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO record_collections").
		WithArgs("widgets", `[{"id":2,"name":"b"}]`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	coll := NewCollection[widget](NewPgBackend(mock), "widgets", nil)
	require.NoError(t, coll.Save(context.Background(), []widget{{ID: 2, Name: "b"}}))
	require.NoError(t, mock.ExpectationsWereMet())
}
