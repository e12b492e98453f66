package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_LevelAndFormat(t *testing.T) {
	require.NoError(t, Init("debug", "json"))
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	require.NoError(t, Init("nonsense", "text"))
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestGinLogger_WritesFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, Init("info", "json"))

	var buf bytes.Buffer
	SetOutput(&buf)

	router := gin.New()
	router.Use(GinLogger())
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/boom", entry["path"])
	assert.Equal(t, float64(http.StatusBadGateway), entry["status"])
	assert.Equal(t, "warning", entry["level"])
}
