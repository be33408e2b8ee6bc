package nfse_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notafacil/emissor-nfse/pkg/nfse"
)

func paramsIDValidos() *nfse.ParametrosIDDPS {
	return &nfse.ParametrosIDDPS{
		CodigoMunicipio: "3106200", // Belo Horizonte
		CNPJEmitente:    "05065736000161",
		Serie:           "1",
		Numero:          "12",
		Agora:           time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	}
}

func TestGerarIDDPS_ComposicaoExata(t *testing.T) {
	g := nfse.NewGeradorIDDPS()
	id, err := g.Gerar(paramsIDValidos())
	require.NoError(t, err)

	// "DPS" + cMun(7) + tpInsc(1) + CNPJ(14) + série(5) + ano(4) + número(11)
	assert.Equal(t, "DPS"+"3106200"+"2"+"05065736000161"+"00001"+"2026"+"00000000012", id.Valor)
	assert.Len(t, id.Valor, 45)
	// A série volta sem padding para o corpo do documento.
	assert.Equal(t, "1", id.Serie)
	assert.Equal(t, "12", id.Numero)
}

func TestGerarIDDPS_NormalizaPontuacao(t *testing.T) {
	g := nfse.NewGeradorIDDPS()
	p := paramsIDValidos()
	p.CNPJEmitente = "05.065.736/0001-61"
	id, err := g.Gerar(p)
	require.NoError(t, err)
	assert.Contains(t, id.Valor, "05065736000161")
	assert.Len(t, id.Valor, 45)
}

func TestGerarIDDPS_TruncaNumeroLongo(t *testing.T) {
	g := nfse.NewGeradorIDDPS()
	p := paramsIDValidos()
	p.Numero = "123456789012345" // 15 dígitos: só os 11 menos significativos entram
	id, err := g.Gerar(p)
	require.NoError(t, err)
	assert.Equal(t, "56789012345", id.Valor[34:], "componente de número")
	assert.Len(t, id.Valor, 45)
}

func TestGerarIDDPS_FalhaCamposSemDigitos(t *testing.T) {
	g := nfse.NewGeradorIDDPS()

	p := paramsIDValidos()
	p.Serie = "x"
	_, err := g.Gerar(p)
	require.Error(t, err)

	p = paramsIDValidos()
	p.Numero = ""
	_, err = g.Gerar(p)
	require.Error(t, err)

	p = paramsIDValidos()
	p.CodigoMunicipio = ""
	_, err = g.Gerar(p)
	require.Error(t, err)
}

func TestGerarIDDPS_FalhaMunicipioExcedente(t *testing.T) {
	g := nfse.NewGeradorIDDPS()
	p := paramsIDValidos()
	p.CodigoMunicipio = "31062001" // 8 dígitos
	_, err := g.Gerar(p)
	require.Error(t, err)
}

func TestGerarIDDPS_ParametrosNulos(t *testing.T) {
	g := nfse.NewGeradorIDDPS()
	_, err := g.Gerar(nil)
	require.Error(t, err)
}
