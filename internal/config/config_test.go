package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WHATSAPP_TOKEN", "token")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "123")
	t.Setenv("META_VERIFY_TOKEN", "verify")
	t.Setenv("STOCK_BOARD_ID", "board")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "stockkeeper", cfg.MongoDB.DBName)
	assert.Equal(t, "0 21 * * *", cfg.Snapshot.CronSchedule)
	assert.Equal(t, "Asia/Tokyo", cfg.Snapshot.Timezone)
	// Without an explicit operator the board chat receives the summaries.
	assert.Equal(t, "board", cfg.WhatsApp.OperatorID)
	assert.False(t, cfg.SheetsEnabled())
}

func TestLoadMissingMongoURI(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MONGODB_URI", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGODB_URI")
}

func TestLoadMissingWhatsAppToken(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WHATSAPP_TOKEN", "")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadSheetsHalfConfigured(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "sheet-id")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_SHEETS_CREDENTIALS_PATH")
}

func TestLoadSheetsFullyConfigured(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "sheet-id")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/tmp/creds.json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.SheetsEnabled())
}
