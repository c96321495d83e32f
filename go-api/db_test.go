package main

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSQLStore(t *testing.T) (*sqlStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS forum_documents").
		WillReturnResult(sqlmock.NewResult(0, 0))
	s, err := newSQLStore(db)
	require.NoError(t, err)
	return s, mock
}

func TestSQLStoreLoadWithoutRowIsEmptyDocument(t *testing.T) {
	s, mock := newMockSQLStore(t)

	mock.ExpectQuery("SELECT data FROM forum_documents").
		WithArgs(documentRowID).
		WillReturnError(sql.ErrNoRows)

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Users)
	assert.Empty(t, doc.Comments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreLoadExistingRow(t *testing.T) {
	s, mock := newMockSQLStore(t)

	raw := `{"users":[{"username":"ana","pass":"h"}],"comments":[{"id":"c_1","user":"ana","text":"hola","date":"2026-01-02T03:04:05Z"}]}`
	mock.ExpectQuery("SELECT data FROM forum_documents").
		WithArgs(documentRowID).
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(raw)))

	doc, err := s.Load()
	require.NoError(t, err)
	require.Len(t, doc.Users, 1)
	assert.Equal(t, "ana", doc.Users[0].Username)
	require.Len(t, doc.Comments, 1)
	assert.Equal(t, "c_1", doc.Comments[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreLoadCorruptRow(t *testing.T) {
	s, mock := newMockSQLStore(t)

	mock.ExpectQuery("SELECT data FROM forum_documents").
		WithArgs(documentRowID).
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte("{boom")))

	_, err := s.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptStore)
}

func TestSQLStoreSaveUpsertsWholeDocument(t *testing.T) {
	s, mock := newMockSQLStore(t)

	doc := emptyDocument()
	doc.Comments = append(doc.Comments, Comment{ID: "c_1", User: "ana", Text: "hola", Date: "2026-01-02T03:04:05Z"})
	b, err := json.Marshal(doc)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO forum_documents").
		WithArgs(documentRowID, b).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Save(doc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreSaveFailurePropagates(t *testing.T) {
	s, mock := newMockSQLStore(t)

	mock.ExpectExec("INSERT INTO forum_documents").
		WithArgs(documentRowID, sqlmock.AnyArg()).
		WillReturnError(sql.ErrConnDone)

	err := s.Save(emptyDocument())
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}
