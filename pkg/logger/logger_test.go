package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-stock/pkg/logger"
)

func TestNewWithWriter_Nivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "warn")
	log.Info().Msg("no sale")
	assert.Zero(t, buf.Len())

	log.Warn().Str("order_id", "o-1").Msg("sale")
	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "o-1", line["order_id"])
}

func TestNewWithWriter_NivelDesconocidoEsInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "verbose")
	log.Debug().Msg("no sale")
	log.Info().Msg("sale")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestWithTenant(t *testing.T) {
	var buf bytes.Buffer
	logger.NewWithWriter(&buf, "info").WithTenant("salon").Info().Msg("x")
	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "salon", line["tenant_id"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { logger.Nop().Error().Msg("descartado") })
}
