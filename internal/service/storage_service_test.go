package service

import (
	"context"
	"exam_prep_backend/internal/config"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorageService(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		want    interface{}
		wantErr bool
	}{
		{"local", config.StorageConfig{Type: "local", LocalPath: t.TempDir()}, &LocalStorageProvider{}, false},
		{"default local", config.StorageConfig{LocalPath: t.TempDir()}, &LocalStorageProvider{}, false},
		{"minio", config.StorageConfig{Type: "minio", MinioEndpoint: "127.0.0.1:9000", MinioBucket: "exam"}, &MinioStorageProvider{}, false},
		{"unknown", config.StorageConfig{Type: "ftp"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			svc, err := NewStorageService(&cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, svc.Provider)
		})
	}
}

func TestLocalStorageUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewStorageService(&config.StorageConfig{Type: "local", LocalPath: dir})
	require.NoError(t, err)

	ctx := context.Background()
	body := `{"sessionId":"abc"}`
	url, err := svc.Upload(ctx, "review-archives/7/cycle-1/abc.json", strings.NewReader(body), int64(len(body)), "application/json")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/review-archives/7/cycle-1/abc.json", url)

	path := filepath.Join(dir, "review-archives", "7", "cycle-1", "abc.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	// 覆盖写入
	_, err = svc.Upload(ctx, "review-archives/7/cycle-1/abc.json", strings.NewReader("{}"), 2, "application/json")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	require.NoError(t, svc.Delete(ctx, "review-archives/7/cycle-1/abc.json"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
