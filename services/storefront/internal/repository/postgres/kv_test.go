package postgres

import (
	"context"
	"errors"
	"io/fs"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestKVStore_Get(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM storefront_kv")).
		WithArgs("visitor:abc:token").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte("jwt")))

	got, err := NewKVStore(mock).Get(context.Background(), "visitor:abc:token")
	require.NoError(t, err)
	assert.Equal(t, "jwt", string(got))
}

func TestKVStore_GetMissing(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM storefront_kv")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewKVStore(mock).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestKVStore_GetFailure(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM storefront_kv")).
		WithArgs("k").
		WillReturnError(errors.New("conn reset"))

	_, err := NewKVStore(mock).Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "conn reset")
}

func TestKVStore_Set(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO storefront_kv")).
		WithArgs("god-statues-cart", []byte(`[]`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, NewKVStore(mock).Set(context.Background(), "god-statues-cart", []byte(`[]`)))
}

func TestKVStore_Delete(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM storefront_kv")).
		WithArgs("user").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, NewKVStore(mock).Delete(context.Background(), "user"))
}

func TestKVStore_Ping(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectPing().WillReturnError(errors.New("down"))
	assert.Error(t, NewKVStore(mock).Ping(context.Background()))
}

func TestMigrations_Embedded(t *testing.T) {
	data, err := fs.ReadFile(Migrations(), "001_storefront_kv.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS storefront_kv")
}

func TestMigrate(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM schema_migrations")).
		WithArgs("001_storefront_kv.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	assert.NoError(t, Migrate(context.Background(), mock, logger.Discard()))
}
