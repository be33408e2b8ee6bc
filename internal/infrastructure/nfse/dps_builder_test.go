package nfse_test

import (
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notafacil/emissor-nfse/internal/domain"
	infranfse "github.com/notafacil/emissor-nfse/internal/infrastructure/nfse"
)

var fusoBrasilia = time.FixedZone("-03:00", -3*60*60)

func dadosDPSValidos() *infranfse.DadosDPS {
	aliq := decimal.NewFromFloat(5)
	return &infranfse.DadosDPS{
		Ambiente:    "2",
		VersaoAplic: "emissor-nfse/1.0",
		Serie:       "1",
		Numero:      "12",
		Competencia: time.Date(2026, 3, 15, 0, 0, 0, 0, fusoBrasilia),
		DataEmissao: time.Date(2026, 3, 15, 14, 30, 45, 0, fusoBrasilia),
		Prestador: &infranfse.DadosPrestador{
			CNPJ:            "05.065.736/0001-61",
			RazaoSocial:     "Prestadora Exemplo LTDA",
			CodigoMunicipio: "3106200",
			UF:              "MG",
			CEP:             "30140-071",
			Logradouro:      "Rua dos Aimorés",
			Numero:          "981",
			Bairro:          "Funcionários",
			OpSimpNac:       1,
			RegEspTrib:      0,
		},
		Tomador: &infranfse.DadosTomador{
			Documento:       "17.585.568/0001-14",
			RazaoSocial:     "Tomadora de Serviços S.A.",
			CodigoMunicipio: "3550308",
			CEP:             "01310-100",
			Logradouro:      "Avenida Paulista",
			Numero:          "1000",
			Bairro:          "Bela Vista",
		},
		Servico: &infranfse.DadosServico{
			CodigoTribNacional: "1030",
			Descricao:          "Serviço de consultoria técnica",
			Valor:              decimal.NewFromFloat(260.00),
			Aliquota:           &aliq,
		},
		Tributacao: &infranfse.DadosTributacao{
			TribISSQN:  "1",
			TpRetISSQN: "1",
		},
	}
}

func parseXML(t *testing.T, xml []byte) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(xml))
	return doc
}

func textoDe(t *testing.T, doc *etree.Document, caminho string) string {
	t.Helper()
	el := doc.FindElement(caminho)
	require.NotNil(t, el, "elemento %s ausente", caminho)
	return el.Text()
}

func TestBuildDPS_DocumentoCompleto(t *testing.T) {
	svc := infranfse.NewDPSBuilderService()
	res, err := svc.Build(dadosDPSValidos())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(res.XML), `<?xml version="1.0" encoding="UTF-8"?>`))

	doc := parseXML(t, res.XML)
	raiz := doc.Root()
	require.Equal(t, "DPS", raiz.Tag)
	assert.Equal(t, "http://www.sped.fazenda.gov.br/nfse", raiz.SelectAttrValue("xmlns", ""))
	assert.Equal(t, "1.00", raiz.SelectAttrValue("versao", ""))

	inf := doc.FindElement("//infDPS")
	require.NotNil(t, inf)
	assert.Equal(t, "DPS"+"3106200"+"2"+"05065736000161"+"00001"+"2026"+"00000000012",
		inf.SelectAttrValue("Id", ""))
	assert.Equal(t, res.ID.Valor, inf.SelectAttrValue("Id", ""))

	// Cabeçalho
	assert.Equal(t, "2", textoDe(t, doc, "//infDPS/tpAmb"))
	assert.Equal(t, "2026-03-15T14:30:45-03:00", textoDe(t, doc, "//infDPS/dhEmi"))
	assert.Equal(t, "1", textoDe(t, doc, "//infDPS/serie"), "série vai sem padding no corpo")
	assert.Equal(t, "12", textoDe(t, doc, "//infDPS/nDPS"))
	assert.Equal(t, "2026-03-15", textoDe(t, doc, "//infDPS/dCompet"))
	assert.Equal(t, "1", textoDe(t, doc, "//infDPS/tpEmit"))
	assert.Equal(t, "3106200", textoDe(t, doc, "//infDPS/cLocEmi"))

	// Prestador e tomador
	assert.Equal(t, "05065736000161", textoDe(t, doc, "//prest/CNPJ"))
	assert.Equal(t, "17585568000114", textoDe(t, doc, "//toma/CNPJ"))
	assert.Nil(t, doc.FindElement("//toma/CPF"))
	assert.Equal(t, "Tomadora de Servicos S.A.", textoDe(t, doc, "//toma/xNome"))
	assert.Equal(t, "3550308", textoDe(t, doc, "//endNac/cMun"))
	assert.Equal(t, "01310100", textoDe(t, doc, "//endNac/CEP"))
	assert.Equal(t, "1000", textoDe(t, doc, "//end/nro"))

	// Serviço e valores
	assert.Equal(t, "3106200", textoDe(t, doc, "//locPrest/cLocPrestacao"), "default: município do emitente")
	assert.Equal(t, "103000", textoDe(t, doc, "//cServ/cTribNac"), "código de 4 dígitos expandido com 00")
	assert.Equal(t, "Servico de consultoria tecnica", textoDe(t, doc, "//cServ/xDescServ"))
	assert.Equal(t, "260.00", textoDe(t, doc, "//vServPrest/vServ"))

	// Tributação
	assert.Equal(t, "1", textoDe(t, doc, "//tribMun/tribISSQN"))
	assert.Equal(t, "1", textoDe(t, doc, "//tribMun/tpRetISSQN"))
	assert.Nil(t, doc.FindElement("//tribMun/pAliq"), "pAliq não é emitido nesta revisão do leiaute")
	assert.Nil(t, doc.FindElement("//totTrib"), "sem percentuais não há totTrib")
}

func TestBuildDPS_OrdemDosElementos(t *testing.T) {
	svc := infranfse.NewDPSBuilderService()
	res, err := svc.Build(dadosDPSValidos())
	require.NoError(t, err)

	xml := string(res.XML)
	ordem := []string{"<tpAmb>", "<dhEmi>", "<verAplic>", "<serie>", "<nDPS>", "<dCompet>",
		"<tpEmit>", "<cLocEmi>", "<prest>", "<toma>", "<serv>", "<valores>", "<trib>"}
	pos := -1
	for _, tag := range ordem {
		i := strings.Index(xml, tag)
		require.GreaterOrEqual(t, i, 0, "tag %s ausente", tag)
		require.Greater(t, i, pos, "tag %s fora de ordem", tag)
		pos = i
	}
}

func TestBuildDPS_LocalDePrestacaoSobreposto(t *testing.T) {
	svc := infranfse.NewDPSBuilderService()
	d := dadosDPSValidos()
	d.CodigoMunicipioPrestacao = "3304557" // Rio de Janeiro
	res, err := svc.Build(d)
	require.NoError(t, err)
	doc := parseXML(t, res.XML)
	assert.Equal(t, "3304557", textoDe(t, doc, "//locPrest/cLocPrestacao"))
}

func TestBuildDPS_TomadorCPF(t *testing.T) {
	svc := infranfse.NewDPSBuilderService()
	d := dadosDPSValidos()
	d.Tomador.Documento = "123.456.789-09"
	res, err := svc.Build(d)
	require.NoError(t, err)
	doc := parseXML(t, res.XML)
	assert.Equal(t, "12345678909", textoDe(t, doc, "//toma/CPF"))
	assert.Nil(t, doc.FindElement("//toma/CNPJ"))
}

func TestBuildDPS_TelefoneSoComTamanhoValido(t *testing.T) {
	svc := infranfse.NewDPSBuilderService()

	d := dadosDPSValidos()
	d.Tomador.Telefone = "(31) 3222-1100"
	res, err := svc.Build(d)
	require.NoError(t, err)
	doc := parseXML(t, res.XML)
	assert.Equal(t, "3132221100", textoDe(t, doc, "//toma/fone"))

	d = dadosDPSValidos()
	d.Tomador.Telefone = "12345" // menos de 6 dígitos: omitido, não é erro
	res, err = svc.Build(d)
	require.NoError(t, err)
	assert.Nil(t, parseXML(t, res.XML).FindElement("//toma/fone"))
}

func TestBuildDPS_InfoComplementarComToken(t *testing.T) {
	svc := infranfse.NewDPSBuilderService()
	d := dadosDPSValidos()
	d.InfoComplementar = "Pedido {ref} aprovado"
	d.NumeroReferencia = "PED-2026-001"
	res, err := svc.Build(d)
	require.NoError(t, err)
	doc := parseXML(t, res.XML)
	assert.Equal(t, "Pedido PED-2026-001 aprovado", textoDe(t, doc, "//serv/infoCompl"))
}

func TestBuildDPS_ImunidadeEmitidaSoQuandoAplicavel(t *testing.T) {
	svc := infranfse.NewDPSBuilderService()
	imunidade := "1"

	// tribISSQN = imunidade + tipo presente -> emitido
	d := dadosDPSValidos()
	d.Tributacao.TribISSQN = "4"
	d.Tributacao.TpImunidade = &imunidade
	res, err := svc.Build(d)
	require.NoError(t, err)
	doc := parseXML(t, res.XML)
	assert.Equal(t, "1", textoDe(t, doc, "//tribMun/tpImunidade"))

	// tribISSQN comum: tipo presente é ignorado
	d = dadosDPSValidos()
	d.Tributacao.TribISSQN = "1"
	d.Tributacao.TpImunidade = &imunidade
	res, err = svc.Build(d)
	require.NoError(t, err)
	assert.Nil(t, parseXML(t, res.XML).FindElement("//tribMun/tpImunidade"))

	// tribISSQN = imunidade sem tipo: elemento omitido
	d = dadosDPSValidos()
	d.Tributacao.TribISSQN = "4"
	d.Tributacao.TpImunidade = nil
	res, err = svc.Build(d)
	require.NoError(t, err)
	assert.Nil(t, parseXML(t, res.XML).FindElement("//tribMun/tpImunidade"))
}

func TestBuildDPS_TotTribSoComPercentuais(t *testing.T) {
	svc := infranfse.NewDPSBuilderService()
	fed := decimal.NewFromFloat(13.45)
	mun := decimal.NewFromFloat(5)

	d := dadosDPSValidos()
	d.Tributacao.PTotTribFed = &fed
	d.Tributacao.PTotTribMun = &mun
	res, err := svc.Build(d)
	require.NoError(t, err)
	doc := parseXML(t, res.XML)
	assert.Equal(t, "13.45", textoDe(t, doc, "//totTrib/pTotTribFed"))
	assert.Equal(t, "5.00", textoDe(t, doc, "//totTrib/pTotTribMun"))
	assert.Nil(t, doc.FindElement("//totTrib/pTotTribEst"), "percentual ausente não vira elemento")
}

func TestBuildDPS_CodigoTribMunicipal(t *testing.T) {
	svc := infranfse.NewDPSBuilderService()

	d := dadosDPSValidos()
	d.Servico.CodigoTribMunicipal = "123"
	res, err := svc.Build(d)
	require.NoError(t, err)
	assert.Equal(t, "123", textoDe(t, parseXML(t, res.XML), "//cServ/cTribMun"))

	d = dadosDPSValidos()
	d.Servico.CodigoTribMunicipal = "12"
	_, err = svc.Build(d)
	require.ErrorIs(t, err, domain.ErrDPSInvalida)
}

func TestBuildDPS_Rejeicoes(t *testing.T) {
	casos := []struct {
		nome    string
		mutacao func(*infranfse.DadosDPS)
	}{
		{"ambiente inválido", func(d *infranfse.DadosDPS) { d.Ambiente = "3" }},
		{"verAplic vazio", func(d *infranfse.DadosDPS) { d.VersaoAplic = "  " }},
		{"CNPJ do prestador com 15 dígitos", func(d *infranfse.DadosDPS) { d.Prestador.CNPJ = "123456789012345" }},
		{"CEP do prestador todo zero", func(d *infranfse.DadosDPS) { d.Prestador.CEP = "00000000" }},
		{"CEP do tomador curto", func(d *infranfse.DadosDPS) { d.Tomador.CEP = "0131010" }},
		{"documento do tomador inválido", func(d *infranfse.DadosDPS) { d.Tomador.Documento = "123456" }},
		{"número do endereço vazio", func(d *infranfse.DadosDPS) { d.Tomador.Numero = " " }},
		{"cTribNac com 5 dígitos", func(d *infranfse.DadosDPS) { d.Servico.CodigoTribNacional = "10300" }},
		{"tribISSQN fora da faixa", func(d *infranfse.DadosDPS) { d.Tributacao.TribISSQN = "7" }},
		{"tpRetISSQN fora da faixa", func(d *infranfse.DadosDPS) { d.Tributacao.TpRetISSQN = "0" }},
		{"sem bloco de tributação", func(d *infranfse.DadosDPS) { d.Tributacao = nil }},
	}
	for _, c := range casos {
		t.Run(c.nome, func(t *testing.T) {
			d := dadosDPSValidos()
			c.mutacao(d)
			_, err := infranfse.NewDPSBuilderService().Build(d)
			require.ErrorIs(t, err, domain.ErrDPSInvalida)
		})
	}
}

func TestBuildDPS_CNPJPrestadorCurtoEhCompletado(t *testing.T) {
	d := dadosDPSValidos()
	d.Prestador.CNPJ = "123"
	res, err := infranfse.NewDPSBuilderService().Build(d)
	require.NoError(t, err)
	assert.Equal(t, "00000000000123", textoDe(t, parseXML(t, res.XML), "//prest/CNPJ"),
		"CNPJ curto é completado com zeros à esquerda, não rejeitado")
}

func TestNormalizarCodigoTribNacional(t *testing.T) {
	got, err := infranfse.NormalizarCodigoTribNacional("1030")
	require.NoError(t, err)
	assert.Equal(t, "103000", got)

	got, err = infranfse.NormalizarCodigoTribNacional("01.07.01")
	require.NoError(t, err)
	assert.Equal(t, "010701", got)

	_, err = infranfse.NormalizarCodigoTribNacional("10300")
	require.Error(t, err)
	_, err = infranfse.NormalizarCodigoTribNacional("")
	require.Error(t, err)
}
