package nfse_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notafacil/emissor-nfse/internal/domain"
	infranfse "github.com/notafacil/emissor-nfse/internal/infrastructure/nfse"
)

func chaveValida() string {
	// 50 dígitos exatos
	return strings.Repeat("12345", 10)
}

func dadosCancelamentoValidos() *infranfse.DadosCancelamento {
	return &infranfse.DadosCancelamento{
		ChaveAcesso:    chaveValida(),
		Ambiente:       "2",
		VersaoAplic:    "emissor-nfse/1.0",
		DocumentoAutor: "05065736000161",
		Justificativa:  "Nota emitida com valor incorreto",
		DataEvento:     time.Date(2026, 3, 16, 9, 0, 0, 0, fusoBrasilia),
	}
}

func TestBuildEvento_DocumentoCompleto(t *testing.T) {
	svc := infranfse.NewEventoBuilderService()
	xml, err := svc.Build(dadosCancelamentoValidos())
	require.NoError(t, err)

	doc := parseXML(t, xml)
	raiz := doc.Root()
	require.Equal(t, "pedRegEvento", raiz.Tag)
	assert.Equal(t, "http://www.sped.fazenda.gov.br/nfse", raiz.SelectAttrValue("xmlns", ""))

	inf := doc.FindElement("//infPedReg")
	require.NotNil(t, inf)
	// "PRE" + chave(50) + tpEvento(6) + pedido(3)
	assert.Equal(t, "PRE"+chaveValida()+"101101"+"001", inf.SelectAttrValue("Id", ""))

	assert.Equal(t, "2", textoDe(t, doc, "//infPedReg/tpAmb"))
	assert.Equal(t, "2026-03-16T09:00:00-03:00", textoDe(t, doc, "//infPedReg/dhEvento"))
	assert.Equal(t, "05065736000161", textoDe(t, doc, "//infPedReg/CNPJAutor"))
	assert.Equal(t, chaveValida(), textoDe(t, doc, "//infPedReg/chNFSe"))
	assert.Equal(t, "01", textoDe(t, doc, "//infPedReg/nSeqEvento"), "sequência default do evento")
	assert.Equal(t, "Cancelamento de NFS-e homologada", textoDe(t, doc, "//e101101/xDesc"))
	assert.Equal(t, "1", textoDe(t, doc, "//e101101/cMotivo"), "motivo default: erro na emissão")
	assert.Equal(t, "Nota emitida com valor incorreto", textoDe(t, doc, "//e101101/xMotivo"))
	assert.Equal(t, "1", textoDe(t, doc, "//infPedReg/nPedRegEvento"))
}

func TestBuildEvento_AutorPessoaFisica(t *testing.T) {
	svc := infranfse.NewEventoBuilderService()
	d := dadosCancelamentoValidos()
	d.DocumentoAutor = "123.456.789-09"
	xml, err := svc.Build(d)
	require.NoError(t, err)
	doc := parseXML(t, xml)
	assert.Equal(t, "12345678909", textoDe(t, doc, "//infPedReg/CPFAutor"))
	assert.Nil(t, doc.FindElement("//infPedReg/CNPJAutor"))
}

func TestBuildEvento_IDExternoPrevalece(t *testing.T) {
	svc := infranfse.NewEventoBuilderService()
	d := dadosCancelamentoValidos()
	d.IDExterno = "EVT-ATRIBUIDO-PELA-RECEPCAO"
	xml, err := svc.Build(d)
	require.NoError(t, err)
	doc := parseXML(t, xml)
	assert.Equal(t, "EVT-ATRIBUIDO-PELA-RECEPCAO", doc.FindElement("//infPedReg").SelectAttrValue("Id", ""))
}

func TestBuildEvento_JustificativaTruncadaEm255(t *testing.T) {
	svc := infranfse.NewEventoBuilderService()
	d := dadosCancelamentoValidos()
	d.Justificativa = strings.Repeat("a", 300)
	xml, err := svc.Build(d)
	require.NoError(t, err)
	doc := parseXML(t, xml)
	assert.Equal(t, strings.Repeat("a", 255), textoDe(t, doc, "//e101101/xMotivo"))
}

func TestBuildEvento_TruncamentoAposEscape(t *testing.T) {
	svc := infranfse.NewEventoBuilderService()
	d := dadosCancelamentoValidos()
	// 150 runas de entrada que escapam para 450: o limite vale para o texto
	// emitido, não para o de entrada.
	d.Justificativa = strings.Repeat("x&y", 50)
	xml, err := svc.Build(d)
	require.NoError(t, err)

	raw := string(xml)
	ini := strings.Index(raw, "<xMotivo>")
	fim := strings.Index(raw, "</xMotivo>")
	require.True(t, ini >= 0 && fim > ini)
	emitido := raw[ini+len("<xMotivo>") : fim]

	assert.LessOrEqual(t, len([]rune(emitido)), 255,
		"texto emitido não pode exceder 255 mesmo após expansão de entidades")
	assert.False(t, strings.HasSuffix(emitido, "&"), "corte não pode partir uma entidade")
	assert.False(t, strings.HasSuffix(emitido, "&am"), "corte não pode partir uma entidade")
	parseXML(t, xml)
}

func TestBuildEvento_TruncamentoNaoParteRunes(t *testing.T) {
	svc := infranfse.NewEventoBuilderService()
	d := dadosCancelamentoValidos()
	d.Justificativa = strings.Repeat("€x", 130) // 260 runes, multibyte
	xml, err := svc.Build(d)
	require.NoError(t, err)
	doc := parseXML(t, xml)
	assert.Len(t, []rune(textoDe(t, doc, "//e101101/xMotivo")), 255)
}

func TestBuildEvento_MotivoEsequenciaExplicitos(t *testing.T) {
	svc := infranfse.NewEventoBuilderService()
	d := dadosCancelamentoValidos()
	d.Motivo = "2"
	d.SequenciaEvento = "7"
	d.NumeroPedido = "7"
	xml, err := svc.Build(d)
	require.NoError(t, err)
	doc := parseXML(t, xml)
	assert.Equal(t, "2", textoDe(t, doc, "//e101101/cMotivo"))
	assert.Equal(t, "07", textoDe(t, doc, "//infPedReg/nSeqEvento"), "sequência completada com zero à esquerda")
	assert.Equal(t, "7", textoDe(t, doc, "//infPedReg/nPedRegEvento"))
	assert.Equal(t, "PRE"+chaveValida()+"101101"+"007",
		doc.FindElement("//infPedReg").SelectAttrValue("Id", ""))
}

func TestBuildEvento_Rejeicoes(t *testing.T) {
	casos := []struct {
		nome    string
		mutacao func(*infranfse.DadosCancelamento)
	}{
		{"chave curta", func(d *infranfse.DadosCancelamento) { d.ChaveAcesso = "123" }},
		{"chave com 51 dígitos", func(d *infranfse.DadosCancelamento) { d.ChaveAcesso = chaveValida() + "1" }},
		{"justificativa vazia", func(d *infranfse.DadosCancelamento) { d.Justificativa = "" }},
		{"ambiente inválido", func(d *infranfse.DadosCancelamento) { d.Ambiente = "0" }},
		{"documento do autor inválido", func(d *infranfse.DadosCancelamento) { d.DocumentoAutor = "12345" }},
		{"motivo fora da faixa", func(d *infranfse.DadosCancelamento) { d.Motivo = "5" }},
		{"sequência com mais de 2 dígitos", func(d *infranfse.DadosCancelamento) { d.SequenciaEvento = "123" }},
	}
	for _, c := range casos {
		t.Run(c.nome, func(t *testing.T) {
			d := dadosCancelamentoValidos()
			c.mutacao(d)
			_, err := infranfse.NewEventoBuilderService().Build(d)
			require.ErrorIs(t, err, domain.ErrEventoInvalido)
		})
	}
}
