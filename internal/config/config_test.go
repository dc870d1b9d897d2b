package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: debug
storage:
  type: minio
jwt:
  secret: short
  expire_hours: 2
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, "biology", cfg.Review.UnknownSubjectPolicy)
	assert.Equal(t, 30*time.Second, cfg.Review.LockTTL())
	assert.Equal(t, 10*time.Minute, cfg.Review.ProgressTTL())
	assert.False(t, cfg.Review.ArchiveEnabled)
}

func TestLoadConfigReviewSection(t *testing.T) {
	dir := writeConfig(t, `
storage:
  type: minio
review:
  unknown_subject_policy: discard
  lock_ttl_seconds: 5
  progress_ttl_seconds: 60
  archive_enabled: true
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "discard", cfg.Review.UnknownSubjectPolicy)
	assert.Equal(t, 5*time.Second, cfg.Review.LockTTL())
	assert.Equal(t, time.Minute, cfg.Review.ProgressTTL())
	assert.True(t, cfg.Review.ArchiveEnabled)
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"short secret in release", "server:\n  mode: release\njwt:\n  secret: abc\nstorage:\n  type: minio\n"},
		{"unknown policy", "storage:\n  type: minio\nreview:\n  unknown_subject_policy: physics\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}
