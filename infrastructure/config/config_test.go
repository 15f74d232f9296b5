package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "ap-southeast-1", cfg.AWSRegion)
	assert.Equal(t, "gsi1", cfg.GSI1IndexName)
	assert.False(t, cfg.MigrationFailFast)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfigLocalStack(t *testing.T) {
	t.Setenv("USE_LOCALSTACK", "true")
	t.Setenv("DB_TABLE_NAME", "radiojournal-local")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.LocalStack)
	assert.Equal(t, "http://localhost:4566", cfg.LocalStackEndpoint)
	assert.Equal(t, "local", cfg.LocalAccessKeyID)
	assert.Equal(t, "radiojournal-local", cfg.DynamoDBTable)
}

func TestLoadConfigFailFast(t *testing.T) {
	t.Setenv("MIGRATION_FAIL_FAST", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.MigrationFailFast)
}

func TestGetEnvBoolGarbage(t *testing.T) {
	t.Setenv("MIGRATION_FAIL_FAST", "definitely")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.MigrationFailFast)
}
