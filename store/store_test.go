package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/store"
)

func newPostgres(t *testing.T) (*store.Postgres, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return store.NewPostgres(sqlx.NewDb(mockDB, "postgres")), mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func newsItem(i int) *models.DraftRecord {
	rec := models.NewNews(models.Berlin, fmt.Sprintf("https://www.berlin.de/polizei/pressemitteilung.%d.php", i))
	rec.News.Title = fmt.Sprintf("Meldung %d", i)
	rec.News.Date = time.Date(2024, time.June, 14, 9, 45, 0, 0, time.UTC)
	return rec
}

func TestPostgres_KnownIdentifiers(t *testing.T) {
	pg, mock := newPostgres(t)

	mock.ExpectQuery("SELECT crawled_url FROM missing_persons WHERE crawled_from").
		WithArgs("Hessen").
		WillReturnRows(sqlmock.NewRows([]string{"crawled_url"}).
			AddRow("https://www.polizei.hessen.de/a").
			AddRow("https://www.polizei.hessen.de/b"))

	ids, err := pg.KnownIdentifiers(context.Background(), models.Hessen, models.ContentMissing)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.polizei.hessen.de/a", "https://www.polizei.hessen.de/b"}, ids)

	expectationsMet(t, mock)
}

func TestPostgres_KnownIdentifiersNewsUsesLink(t *testing.T) {
	pg, mock := newPostgres(t)

	mock.ExpectQuery("SELECT link FROM news_posts").
		WithArgs("Bayern").
		WillReturnRows(sqlmock.NewRows([]string{"link"}))

	ids, err := pg.KnownIdentifiers(context.Background(), models.Bayern, models.ContentNews)
	require.NoError(t, err)
	assert.Empty(t, ids)

	expectationsMet(t, mock)
}

func TestPostgres_InsertOne(t *testing.T) {
	pg, mock := newPostgres(t)

	rec := models.NewWanted(models.Berlin, "https://www.berlin.de/fahndung/1")
	rec.Wanted.Description = "Beschreibung"

	mock.ExpectExec("INSERT INTO wanted_persons").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, pg.InsertOne(context.Background(), rec))
	expectationsMet(t, mock)
}

func TestPostgres_InsertOneConflict(t *testing.T) {
	pg, mock := newPostgres(t)

	rec := models.NewMissing(models.Bremen, "https://www.polizei.bremen.de/vermisst/1")
	rec.Missing.Description = "Beschreibung"

	mock.ExpectExec("INSERT INTO missing_persons").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := pg.InsertOne(context.Background(), rec)
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.Equal(t, models.ErrCodePersistenceConflict, models.CodeOf(err))

	expectationsMet(t, mock)
}

func TestPostgres_InsertOneFailure(t *testing.T) {
	pg, mock := newPostgres(t)

	rec := models.NewWanted(models.Berlin, "https://www.berlin.de/fahndung/2")
	mock.ExpectExec("INSERT INTO wanted_persons").
		WillReturnError(errors.New("connection refused"))

	err := pg.InsertOne(context.Background(), rec)
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrConflict)
	assert.Equal(t, models.ErrCodePersistenceFailure, models.CodeOf(err))

	expectationsMet(t, mock)
}

func TestPostgres_InsertManyWithConflicts(t *testing.T) {
	pg, mock := newPostgres(t)

	recs := make([]*models.DraftRecord, 10)
	mock.ExpectBegin()
	for i := range recs {
		recs[i] = newsItem(i)
		affected := int64(1)
		if i == 3 || i == 7 {
			affected = 0
		}
		mock.ExpectExec("INSERT INTO news_posts .+ ON CONFLICT DO NOTHING").
			WillReturnResult(sqlmock.NewResult(0, affected))
	}
	mock.ExpectCommit()

	res, err := pg.InsertMany(context.Background(), recs)
	require.NoError(t, err)
	assert.Equal(t, store.BatchResult{Inserted: 8, Conflicts: 2}, res)

	expectationsMet(t, mock)
}

func TestPostgres_InsertManyRollsBackOnError(t *testing.T) {
	pg, mock := newPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO news_posts").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO news_posts").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := pg.InsertMany(context.Background(), []*models.DraftRecord{newsItem(1), newsItem(2)})
	require.Error(t, err)

	expectationsMet(t, mock)
}

func TestPostgres_DeleteCreatedBefore(t *testing.T) {
	pg, mock := newPostgres(t)
	cutoff := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("DELETE FROM news_posts WHERE created_at").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 42))

	n, err := pg.DeleteCreatedBefore(context.Background(), models.ContentNews, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	expectationsMet(t, mock)
}

func TestPostgres_Migrate(t *testing.T) {
	pg, mock := newPostgres(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS wanted_persons").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, pg.Migrate(context.Background()))
	expectationsMet(t, mock)
}

func TestMemory_InsertAndConflict(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	rec := models.NewWanted(models.Berlin, "https://www.berlin.de/fahndung/1")
	require.NoError(t, m.InsertOne(ctx, rec))
	assert.ErrorIs(t, m.InsertOne(ctx, rec), store.ErrConflict)

	// The same URL under another jurisdiction is a different record.
	other := models.NewWanted(models.Bremen, rec.CrawledURL)
	require.NoError(t, m.InsertOne(ctx, other))

	ids, err := m.KnownIdentifiers(ctx, models.Berlin, models.ContentWanted)
	require.NoError(t, err)
	assert.Equal(t, []string{rec.CrawledURL}, ids)
}

func TestMemory_InsertManyWithConflicts(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	var batch []*models.DraftRecord
	for i := 0; i < 10; i++ {
		batch = append(batch, newsItem(i))
	}
	require.NoError(t, m.InsertOne(ctx, batch[2]))
	require.NoError(t, m.InsertOne(ctx, batch[5]))

	res, err := m.InsertMany(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, store.BatchResult{Inserted: 8, Conflicts: 2}, res)
	assert.Len(t, m.Records(models.ContentNews), 10)
}

func TestMemory_DeleteCreatedBefore(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	m.Now = func() time.Time { return now.AddDate(0, -7, 0) }
	require.NoError(t, m.InsertOne(ctx, newsItem(1)))
	m.Now = func() time.Time { return now }
	require.NoError(t, m.InsertOne(ctx, newsItem(2)))

	n, err := m.DeleteCreatedBefore(ctx, models.ContentNews, now.AddDate(0, -6, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Len(t, m.Records(models.ContentNews), 1)
}
