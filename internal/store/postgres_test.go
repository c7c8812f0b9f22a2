package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourts/casesearch/internal/normalize"
	"github.com/opencourts/casesearch/internal/store"
)

func newMockStore(t *testing.T) (*store.Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return store.New(mock), mock
}

func TestStore_Has(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("116090007").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := s.Has(context.Background(), "116090007")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_HasRetriesOnce(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("116090007").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("116090007").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := s.Has(context.Background(), "116090007")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Put(t *testing.T) {
	s, mock := newMockStore(t)

	fetched := time.Date(2010, time.January, 5, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO rawcases").
		WithArgs("116090007", []byte("<html></html>"), fetched).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.Put(context.Background(), store.RawDocument{
		CaseID:    "116090007",
		Content:   []byte("<html></html>"),
		FetchedAt: fetched,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Delete(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM rawcases").
		WithArgs("116090007").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, s.Delete(context.Background(), "116090007"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SelectUnparsed(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("LEFT OUTER JOIN cases").
		WithArgs(100, 200).
		WillReturnRows(pgxmock.NewRows([]string{"case_id", "html"}).
			AddRow("A1", []byte("<html>a</html>")).
			AddRow("B2", []byte("<html>b</html>")))

	docs, err := s.SelectUnparsed(context.Background(), 100, 200)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "A1", docs[0].CaseID)
	assert.Equal(t, []byte("<html>b</html>"), docs[1].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func parsedCase() *normalize.ParsedCase {
	return &normalize.ParsedCase{
		Order: []string{"cases", "parties"},
		Tables: map[string][]normalize.Record{
			"cases": {
				{"case_id": "116090007", "title": "State vs Doe", "status": ""},
			},
			"parties": {
				{"name": "DOE, JOHN", "type": "Defendant"},
				{"name": "STATE OF MARYLAND", "type": "Plaintiff"},
			},
		},
	}
}

func TestStore_InsertCase(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO cases").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO parties").
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	require.NoError(t, s.InsertCase(context.Background(), parsedCase()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InsertCaseDuplicateRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO cases").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := s.InsertCase(context.Background(), parsedCase())
	require.ErrorIs(t, err, store.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InsertCaseRequiresCaseID(t *testing.T) {
	s, _ := newMockStore(t)

	err := s.InsertCase(context.Background(), &normalize.ParsedCase{
		Tables: map[string][]normalize.Record{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no case identifier")
}
