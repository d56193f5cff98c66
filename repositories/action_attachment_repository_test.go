package repositories

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"sms-backend/database"
	"sms-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter int64

// setupTestDB initializes an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:repositories_testdb_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db), "Failed to migrate test database")
	return db
}

func seedLink(t *testing.T, db *gorm.DB, isPublic, isInternal bool) *models.GenericConfigurationActionAttachment {
	t.Helper()
	configuration := models.Configuration{Label: "configuration", IsPublic: isPublic, IsInternal: isInternal}
	require.NoError(t, db.Create(&configuration).Error)
	action := models.GenericConfigurationAction{ConfigurationID: configuration.ID, ActionTypeName: "Maintenance"}
	require.NoError(t, db.Create(&action).Error)
	attachment := models.ConfigurationAttachment{Label: "file", URL: "https://example.com/f", ConfigurationID: configuration.ID}
	require.NoError(t, db.Create(&attachment).Error)
	aa := models.GenericConfigurationActionAttachment{ActionID: action.ID, AttachmentID: attachment.ID}
	require.NoError(t, db.Create(&aa).Error)
	return &aa
}

func TestFindAllVisible(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActionAttachmentRepository(db)

	publicLink := seedLink(t, db, true, false)
	internalLink := seedLink(t, db, false, true)
	seedLink(t, db, false, false) // private, visible to nobody in this service

	t.Run("Anonymous sees only public", func(t *testing.T) {
		items, total, err := repo.FindAllVisible(false)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, publicLink.ID, items[0].ID)
	})

	t.Run("Authenticated sees public and internal", func(t *testing.T) {
		items, total, err := repo.FindAllVisible(true)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		ids := []uint{items[0].ID, items[1].ID}
		assert.Contains(t, ids, publicLink.ID)
		assert.Contains(t, ids, internalLink.ID)
	})

	t.Run("Relations are preloaded", func(t *testing.T) {
		items, _, err := repo.FindAllVisible(false)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.NotZero(t, items[0].Action.ID)
		assert.NotZero(t, items[0].Attachment.ID)
	})
}

func TestFindVisibleByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActionAttachmentRepository(db)

	internalLink := seedLink(t, db, false, true)

	t.Run("Hidden from anonymous", func(t *testing.T) {
		_, err := repo.FindVisibleByID(internalLink.ID, false)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})

	t.Run("Visible to authenticated", func(t *testing.T) {
		got, err := repo.FindVisibleByID(internalLink.ID, true)
		require.NoError(t, err)
		assert.Equal(t, internalLink.ID, got.ID)
	})

	t.Run("Missing id", func(t *testing.T) {
		_, err := repo.FindVisibleByID(99999, true)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})
}

func TestTransactionRollback(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActionAttachmentRepository(db)
	link := seedLink(t, db, true, false)

	err := repo.Transaction(func(tx ActionAttachmentRepository) error {
		aa := models.GenericConfigurationActionAttachment{ActionID: link.ActionID, AttachmentID: link.AttachmentID}
		if err := tx.Create(&aa); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.GenericConfigurationActionAttachment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "rolled back row must not persist")
}
