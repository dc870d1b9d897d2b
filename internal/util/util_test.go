package util

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "a@b.c", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
}

func TestParseJWTRejects(t *testing.T) {
	expired, err := GenerateJWT(42, "", testSecret, -time.Minute)
	require.NoError(t, err)
	anonymous, err := GenerateJWT(0, "", testSecret, time.Hour)
	require.NoError(t, err)
	valid, err := GenerateJWT(42, "", testSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"expired", expired, testSecret},
		{"no user", anonymous, testSecret},
		{"wrong secret", valid, "another-secret"},
		{"garbage", "not.a.token", testSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJWT(tt.token, tt.secret)
			assert.Error(t, err)
		})
	}
}

func TestParsePositiveInt(t *testing.T) {
	n, err := ParsePositiveInt("3")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, s := range []string{"0", "-1", "x", ""} {
		_, err := ParsePositiveInt(s)
		assert.Error(t, err, s)
	}
}

func TestErrorWithData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorWithData(c, http.StatusConflict, "not eligible", gin.H{"redirect": "exams"})

	var body struct {
		Code    int               `json:"code"`
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusConflict, body.Code)
	assert.Equal(t, "exams", body.Data["redirect"])
}
