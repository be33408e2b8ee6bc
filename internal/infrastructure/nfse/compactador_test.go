package nfse_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infranfse "github.com/notafacil/emissor-nfse/internal/infrastructure/nfse"
)

func TestCompactarXMLGZipB64_Roundtrip(t *testing.T) {
	original := []byte(`<?xml version="1.0" encoding="UTF-8"?><DPS versao="1.00"><infDPS Id="x"/></DPS>`)

	compactado, err := infranfse.CompactarXMLGZipB64(original)
	require.NoError(t, err)
	_, err = base64.StdEncoding.DecodeString(compactado)
	require.NoError(t, err, "saída tem de ser Base64 válido")

	recuperado, err := infranfse.DescompactarXMLGZipB64(compactado)
	require.NoError(t, err)
	assert.Equal(t, original, recuperado)
}

func TestDescompactarXMLGZipB64_PayloadInvalido(t *testing.T) {
	_, err := infranfse.DescompactarXMLGZipB64("não é base64!!")
	require.Error(t, err)

	// Base64 válido mas não é um stream gzip.
	_, err = infranfse.DescompactarXMLGZipB64(base64.StdEncoding.EncodeToString([]byte("texto plano")))
	require.Error(t, err)
}
