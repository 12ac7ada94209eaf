package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cast-press/models"
	"cast-press/services"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Article{}, &models.Podcast{}))
	return db
}

func newTestPublisher(db *gorm.DB) *services.Publisher {
	return services.NewPublisher(db, "@every 1m", zap.NewNop())
}

func TestPublisher_RunOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("promotes due drafts and stamps publish date", func(t *testing.T) {
		db := setupTestDB(t)
		yesterday := time.Now().UTC().Add(-24 * time.Hour)
		article := models.Article{
			Title:         "Scheduled piece",
			Status:        models.StatusDraft,
			Date:          yesterday,
			ScheduledDate: yesterday,
		}
		require.NoError(t, db.Create(&article).Error)

		before := time.Now().UTC()
		count, err := newTestPublisher(db).RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		var got models.Article
		require.NoError(t, db.First(&got, article.ID).Error)
		assert.Equal(t, models.StatusPublished, got.Status)
		require.NotNil(t, got.PublishDate)
		assert.WithinDuration(t, before, *got.PublishDate, 5*time.Second)
	})

	t.Run("leaves future drafts untouched", func(t *testing.T) {
		db := setupTestDB(t)
		tomorrow := time.Now().UTC().Add(24 * time.Hour)
		article := models.Article{
			Title:         "Not yet",
			Status:        models.StatusDraft,
			Date:          tomorrow,
			ScheduledDate: tomorrow,
		}
		require.NoError(t, db.Create(&article).Error)

		count, err := newTestPublisher(db).RunOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		var got models.Article
		require.NoError(t, db.First(&got, article.ID).Error)
		assert.Equal(t, models.StatusDraft, got.Status)
		assert.Nil(t, got.PublishDate)
	})

	t.Run("never touches archived or already-published items", func(t *testing.T) {
		db := setupTestDB(t)
		past := time.Now().UTC().Add(-time.Hour)
		published := past.Add(-time.Hour)
		items := []models.Article{
			{Title: "Archived", Status: models.StatusArchived, Date: past, ScheduledDate: past},
			{Title: "Published", Status: models.StatusPublished, Date: past, ScheduledDate: past, PublishDate: &published},
		}
		require.NoError(t, db.Create(&items).Error)

		count, err := newTestPublisher(db).RunOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		var got models.Article
		require.NoError(t, db.First(&got, items[1].ID).Error)
		require.NotNil(t, got.PublishDate)
		assert.WithinDuration(t, published, *got.PublishDate, time.Second)
	})

	t.Run("covers podcasts too", func(t *testing.T) {
		db := setupTestDB(t)
		past := time.Now().UTC().Add(-time.Minute)
		podcast := models.Podcast{
			Title:         "Episode 1",
			Status:        models.StatusDraft,
			ScheduledDate: past,
		}
		article := models.Article{
			Title:         "Companion article",
			Status:        models.StatusDraft,
			Date:          past,
			ScheduledDate: past,
		}
		require.NoError(t, db.Create(&podcast).Error)
		require.NoError(t, db.Create(&article).Error)

		count, err := newTestPublisher(db).RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		var gotPodcast models.Podcast
		require.NoError(t, db.First(&gotPodcast, podcast.ID).Error)
		assert.Equal(t, models.StatusPublished, gotPodcast.Status)
	})

	t.Run("idempotent across immediate re-runs", func(t *testing.T) {
		db := setupTestDB(t)
		past := time.Now().UTC().Add(-time.Minute)
		require.NoError(t, db.Create(&models.Article{
			Title: "Once", Status: models.StatusDraft, Date: past, ScheduledDate: past,
		}).Error)

		pub := newTestPublisher(db)
		first, err := pub.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), first)

		second, err := pub.RunOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, second, "re-running a tick must transition nothing new")
	})

	t.Run("empty tick is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		count, err := newTestPublisher(db).RunOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
