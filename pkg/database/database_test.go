package database

import (
	"exam_prep_backend/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:      "db",
		Port:      3306,
		User:      "exam",
		Password:  "secret",
		DBName:    "exam_prep",
		Charset:   "utf8mb4",
		ParseTime: true,
	}
	assert.Equal(t, "exam:secret@tcp(db:3306)/exam_prep?charset=utf8mb4&parseTime=true&loc=Local", DSN(cfg))
}
