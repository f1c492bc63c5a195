package ingest

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func zapNop() *zap.Logger { return zap.NewNop() }

func TestWriteSSE(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteSSE(rec, ProgressEvent{Type: KindProgress, Current: 1, Total: 3, Info: "Extracción: 1/3"}))
	require.NoError(t, WriteSSE(rec, ErrorEvent{Type: KindError, Message: "No hay remates"}))

	assert.Equal(t,
		"data: {\"type\":\"progress\",\"current\":1,\"total\":3,\"info\":\"Extracción: 1/3\"}\n\n"+
			"data: {\"type\":\"error\",\"message\":\"No hay remates\"}\n\n",
		rec.Body.String())
	assert.True(t, rec.Flushed)
}

func TestWriteSSE_RecordErrorCarriesItsKind(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteSSE(rec, RecordErrorEvent{Type: KindErrorCritico, Record: 2, Error: "boom", ErrorKind: "auth", Diagnostic: "check key"}))
	assert.Contains(t, rec.Body.String(), `"type":"error_critico"`)
	assert.Contains(t, rec.Body.String(), `"diagnostic":"check key"`)
}
