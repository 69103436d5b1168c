package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petmemorial/internal/testutil"
)

func TestSchemaGuard_CreatesTablesOnce(t *testing.T) {
	db := testutil.OpenDB(t)
	guard := NewSchemaGuard(db)
	ctx := context.Background()

	require.NoError(t, guard.EnsureNotificationsTable(ctx))
	assert.True(t, db.Migrator().HasTable("notifications"))
	assert.True(t, db.Migrator().HasIndex("notifications", "idx_notifications_user_id"))

	// Cached: dropping the table is not noticed until Reset.
	require.NoError(t, db.Exec("DROP TABLE notifications").Error)
	require.NoError(t, guard.EnsureNotificationsTable(ctx))
	assert.False(t, db.Migrator().HasTable("notifications"))

	guard.Reset()
	require.NoError(t, guard.EnsureNotificationsTable(ctx))
	assert.True(t, db.Migrator().HasTable("notifications"))
}

func TestSchemaGuard_AdminTableCheckedEveryCall(t *testing.T) {
	db := testutil.OpenDB(t)
	guard := NewSchemaGuard(db)
	ctx := context.Background()

	require.NoError(t, guard.EnsureAdminNotificationsTable(ctx))
	require.NoError(t, db.Exec("DROP TABLE admin_notifications").Error)
	require.NoError(t, guard.EnsureAdminNotificationsTable(ctx))
	assert.True(t, db.Migrator().HasTable("admin_notifications"))
}

func TestSchemaGuard_RemindersUniqueIndex(t *testing.T) {
	db := testutil.OpenDB(t)
	guard := NewSchemaGuard(db)
	require.NoError(t, guard.EnsureRemindersTable(context.Background()))

	insert := `INSERT INTO booking_reminders (booking_id, reminder_type, scheduled_time) VALUES (1, '24h', '2026-03-02 10:00:00')`
	require.NoError(t, db.Exec(insert).Error)
	assert.Error(t, db.Exec(insert).Error)
}

func TestSchemaGuard_KeyColumn(t *testing.T) {
	ctx := context.Background()

	t.Run("current schema", func(t *testing.T) {
		db := testutil.OpenDB(t)
		guard := NewSchemaGuard(db)
		require.NoError(t, guard.EnsureNotificationsTable(ctx))

		key, err := guard.KeyColumn(ctx)
		require.NoError(t, err)
		assert.Equal(t, "id", key)
	})

	t.Run("legacy schema", func(t *testing.T) {
		db := testutil.OpenDB(t)
		createLegacyNotifications(t, db)
		guard := NewSchemaGuard(db)

		key, err := guard.KeyColumn(ctx)
		require.NoError(t, err)
		assert.Equal(t, "notification_id", key)
	})

	t.Run("missing table", func(t *testing.T) {
		guard := NewSchemaGuard(testutil.OpenDB(t))
		_, err := guard.KeyColumn(ctx)
		assert.Error(t, err)
	})
}

func TestSchemaGuard_Prepare(t *testing.T) {
	db := testutil.OpenDB(t)
	require.NoError(t, NewSchemaGuard(db).Prepare(context.Background()))

	for _, table := range []string{"notifications", "admin_notifications", "booking_reminders"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
