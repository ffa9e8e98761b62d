package section

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/sitedesk/internal/activity"
	"github.com/yanizio/sitedesk/internal/apperr"
	"github.com/yanizio/sitedesk/internal/identity"
)

var (
	websiteCols = []string{
		"id", "owner_id", "name", "domain", "status", "description", "is_active",
		"created_at", "updated_at",
	}
	sectionCols = []string{"id", "website_id", "name", "key", "content", "sort_order"}

	ownerA = &identity.Identity{ID: 1, Username: "a", IsClient: true, IsActive: true}
	adminB = &identity.Identity{ID: 2, Username: "b", IsAgencyAdmin: true, IsActive: true}
	otherC = &identity.Identity{ID: 3, Username: "c", IsClient: true, IsActive: true}
)

const (
	selectWebsite = "FROM website WHERE id = ?"
	insertSection = "INSERT INTO website_section"
	insertLog     = "INSERT INTO activity_log"
)

func newService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	db := sqlx.NewDb(raw, "mysql")
	return NewService(db, activity.NewLog(db)), mock
}

// W1 is owned by identity A.
func expectW1(mock sqlmock.Sqlmock) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(selectWebsite)).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(websiteCols).
			AddRow(1, ownerA.ID, "W1", "a.example.com", "live", nil, true, now, now))
}

func expectSection(mock sqlmock.Sqlmock, id uint64, name, key, content string) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM website_section WHERE id = ? AND website_id = ?")).
		WithArgs(id, uint64(1)).
		WillReturnRows(sqlmock.NewRows(sectionCols).AddRow(id, 1, name, key, []byte(content), 0))
}

// A creates "hero" on W1: one update entry.  A second "hero" fails with a
// conflict and writes no entry.
func TestCreateHeroThenDuplicate(t *testing.T) {
	svc, mock := newService(t)
	ctx := context.Background()
	in := CreateInput{
		Name:    "Hero",
		Key:     "hero",
		Content: json.RawMessage(`{"title":"Welcome"}`),
		Order:   0,
	}

	mock.ExpectBegin()
	expectW1(mock)
	mock.ExpectExec(regexp.QuoteMeta(insertSection)).
		WithArgs(uint64(1), "Hero", "hero", types.JSONText(`{"title":"Welcome"}`), 0).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertLog)).
		WithArgs(uint64(1), "Section 'Hero' created", "update", ownerA.ID).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	expectW1(mock)
	mock.ExpectExec(regexp.QuoteMeta(insertSection)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-hero'"})
	mock.ExpectRollback()

	sec, err := svc.Create(ctx, ownerA, 1, in)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), sec.ID)

	_, err = svc.Create(ctx, ownerA, 1, in)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDerivesKeyAndDefaultsContent(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectBegin()
	expectW1(mock)
	mock.ExpectExec(regexp.QuoteMeta(insertSection)).
		WithArgs(uint64(1), "About Us", "about-us", types.JSONText(`{}`), 3).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertLog)).
		WithArgs(uint64(1), "Section 'About Us' created", "update", adminB.ID).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	sec, err := svc.Create(context.Background(), adminB, 1, CreateInput{Name: "About Us", Order: 3})
	require.NoError(t, err)
	assert.Equal(t, "about-us", sec.Key)
	assert.JSONEq(t, `{}`, string(sec.Content))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateForbiddenForStranger(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectBegin()
	expectW1(mock)
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), otherC, 1, CreateInput{Name: "Hero"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMissingParent(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectWebsite)).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(websiteCols))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), ownerA, 1, CreateInput{Name: "Hero"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsNonObjectContent(t *testing.T) {
	svc, mock := newService(t)

	for _, raw := range []string{`[1,2]`, `"text"`, `{"broken":`} {
		_, err := svc.Create(context.Background(), ownerA, 1, CreateInput{
			Name: "Hero", Content: json.RawMessage(raw),
		})
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve, raw)
		assert.Contains(t, ve.Fields, "content")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLogsAfterWrite(t *testing.T) {
	svc, mock := newService(t)
	title := json.RawMessage(`{"title":"Hello"}`)

	mock.ExpectBegin()
	expectW1(mock)
	expectSection(mock, 10, "Hero", "hero", `{"title":"Welcome"}`)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE website_section")).
		WithArgs("Hero", "hero", types.JSONText(title), 0, uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertLog)).
		WithArgs(uint64(1), "Section 'Hero' updated", "update", ownerA.ID).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	sec, err := svc.Update(context.Background(), ownerA, 1, 10, UpdateInput{Content: &title})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Hello"}`, string(sec.Content))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A non-owner, non-admin update is forbidden and touches nothing.
func TestUpdateForbiddenLeavesSection(t *testing.T) {
	svc, mock := newService(t)
	name := "Defaced"

	mock.ExpectBegin()
	expectW1(mock)
	mock.ExpectRollback()

	_, err := svc.Update(context.Background(), otherC, 1, 10, UpdateInput{Name: &name})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFailedWriteNoEntry(t *testing.T) {
	svc, mock := newService(t)
	key := "footer"

	mock.ExpectBegin()
	expectW1(mock)
	expectSection(mock, 10, "Hero", "hero", `{}`)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE website_section")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-footer'"})
	mock.ExpectRollback()

	_, err := svc.Update(context.Background(), ownerA, 1, 10, UpdateInput{Key: &key})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteLogsEntry(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectBegin()
	expectW1(mock)
	expectSection(mock, 10, "Hero", "hero", `{}`)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM website_section WHERE id = ?")).
		WithArgs(uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertLog)).
		WithArgs(uint64(1), "Section 'Hero' deleted", "update", ownerA.ID).
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Delete(context.Background(), ownerA, 1, 10))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListHiddenIsNotFound(t *testing.T) {
	svc, mock := newService(t)
	expectW1(mock)

	_, err := svc.List(context.Background(), otherC, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrdered(t *testing.T) {
	svc, mock := newService(t)
	expectW1(mock)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE website_id = ? ORDER BY sort_order, id")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(sectionCols).
			AddRow(10, 1, "Hero", "hero", []byte(`{}`), 0).
			AddRow(12, 1, "Footer", "footer", []byte(`{}`), 5))

	got, err := svc.List(context.Background(), adminB, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "hero", got[0].Key)
	assert.Equal(t, 5, got[1].Order)
	assert.NoError(t, mock.ExpectationsWereMet())
}
