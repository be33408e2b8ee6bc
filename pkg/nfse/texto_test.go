package nfse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notafacil/emissor-nfse/pkg/nfse"
)

func TestSomenteDigitos(t *testing.T) {
	assert.Equal(t, "05065736000161", nfse.SomenteDigitos("05.065.736/0001-61"))
	assert.Equal(t, "30140071", nfse.SomenteDigitos("30140-071"))
	assert.Equal(t, "", nfse.SomenteDigitos("abc"))
	assert.Equal(t, "", nfse.SomenteDigitos(""))
}

func TestDigitosFixos_CompletaComZeros(t *testing.T) {
	got, err := nfse.DigitosFixos("123", 7, "cMun")
	require.NoError(t, err)
	assert.Equal(t, "0000123", got)
}

func TestDigitosFixos_ExtraiDigitosDePontuacao(t *testing.T) {
	got, err := nfse.DigitosFixos("05.065.736/0001-61", 14, "CNPJ")
	require.NoError(t, err)
	assert.Equal(t, "05065736000161", got)
}

func TestDigitosFixos_FalhaSemDigitos(t *testing.T) {
	_, err := nfse.DigitosFixos("abc", 7, "cMun")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cMun")
}

func TestDigitosFixos_FalhaExcedeLargura(t *testing.T) {
	_, err := nfse.DigitosFixos("12345678", 7, "cMun")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "7")
}

func TestSanitizarTextoXML_RemoveAcentos(t *testing.T) {
	assert.Equal(t, "Servico de consultoria tecnica",
		nfse.SanitizarTextoXML("Serviço de consultoria técnica"))
	assert.Equal(t, "Joao alugou um caminhao",
		nfse.SanitizarTextoXML("João alugou um caminhão"))
}

func TestSanitizarTextoXML_ColapsaEspacos(t *testing.T) {
	assert.Equal(t, "um dois tres", nfse.SanitizarTextoXML("  um \t dois\n\ntres  "))
	// NBSP também conta como espaço em branco
	assert.Equal(t, "a b", nfse.SanitizarTextoXML("a b"))
}

func TestSanitizarTextoXML_DescartaControle(t *testing.T) {
	assert.Equal(t, "ab", nfse.SanitizarTextoXML("a\x00\x08b"))
}

func TestSanitizarTextoXML_EscapaMetacaracteres(t *testing.T) {
	assert.Equal(t, "a &amp; b", nfse.SanitizarTextoXML("a & b"))
	assert.Equal(t, "&lt;tag&gt;", nfse.SanitizarTextoXML("<tag>"))
	assert.Equal(t, "&quot;x&quot;", nfse.SanitizarTextoXML(`"x"`))
}

// Sanitizar duas vezes tem de produzir o mesmo resultado: entidades já
// escapadas não podem ser reescapadas.
func TestSanitizarTextoXML_Idempotente(t *testing.T) {
	casos := []string{
		"a & b",
		"a &amp; b",
		"&lt;ja escapado&gt;",
		"ref &#231; numerica",
		"fim solto &",
	}
	for _, c := range casos {
		uma := nfse.SanitizarTextoXML(c)
		duas := nfse.SanitizarTextoXML(uma)
		assert.Equal(t, uma, duas, "entrada: %q", c)
	}
}
