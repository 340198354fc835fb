package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/pkg/logger"
)

func TestComponent_AgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(logger.Config{Env: "production", Level: "info"}, &buf)

	log.Component("inventory").Info().Str("code", "A1").Msg("salida registrada")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "inventory", entry["component"])
	assert.Equal(t, "A1", entry["code"])
	assert.Equal(t, "salida registrada", entry["message"])
}

func TestNew_NivelFiltraDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(logger.Config{Env: "production", Level: "warn"}, &buf)

	log.Info().Msg("no debe salir")
	assert.Empty(t, buf.String())

	log.Warn().Msg("sí debe salir")
	assert.Contains(t, buf.String(), "sí debe salir")
}
