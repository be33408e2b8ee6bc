package nfse

import (
	"fmt"
	"strings"

	"github.com/notafacil/emissor-nfse/internal/domain"
	"github.com/notafacil/emissor-nfse/pkg/nfse"
)

// Namespace do leiaute da NFS-e Nacional e versão do schema.
const (
	NsNFSe        = "http://www.sped.fazenda.gov.br/nfse"
	VersaoLeiaute = "1.00"
)

// DPSBuilderService monta o XML da DPS (sem assinatura). Transformação pura:
// toda a rede fica no orquestrador.
type DPSBuilderService struct {
	gerador *nfse.GeradorIDDPS
}

// NewDPSBuilderService cria o serviço.
func NewDPSBuilderService() *DPSBuilderService {
	return &DPSBuilderService{gerador: nfse.NewGeradorIDDPS()}
}

// ResultadoDPS produto da montagem: bytes do documento e o identificador derivado.
type ResultadoDPS struct {
	XML []byte
	ID  *nfse.IDDPS
}

// Build valida a entrada e monta o documento completo na ordem exigida pelo
// schema. Cada campo obrigatório ausente ou malformado produz um erro nomeado
// distinto, antes de qualquer montagem.
func (s *DPSBuilderService) Build(d *DadosDPS) (*ResultadoDPS, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: dados da DPS ausentes", domain.ErrDPSInvalida)
	}
	if d.Prestador == nil {
		return nil, fmt.Errorf("%w: bloco do prestador ausente", domain.ErrDPSInvalida)
	}
	if d.Tomador == nil {
		return nil, fmt.Errorf("%w: bloco do tomador ausente", domain.ErrDPSInvalida)
	}
	if d.Servico == nil {
		return nil, fmt.Errorf("%w: bloco do serviço ausente", domain.ErrDPSInvalida)
	}

	if !nfse.AmbientesValidos[d.Ambiente] {
		return nil, fmt.Errorf("%w: tpAmb deve ser 1 (produção) ou 2 (homologação), recebido %q", domain.ErrDPSInvalida, d.Ambiente)
	}
	if strings.TrimSpace(d.VersaoAplic) == "" {
		return nil, fmt.Errorf("%w: verAplic (versão do aplicativo emissor) vazio", domain.ErrDPSInvalida)
	}

	cnpjPrest, err := nfse.DigitosFixos(d.Prestador.CNPJ, 14, "CNPJ do prestador")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDPSInvalida, err)
	}
	cMunEmi, err := nfse.DigitosFixos(d.Prestador.CodigoMunicipio, 7, "cMun do prestador")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDPSInvalida, err)
	}
	cepPrest, err := validarCEP(d.Prestador.CEP, "CEP do prestador")
	if err != nil {
		return nil, err
	}
	_ = cepPrest // o CEP do prestador valida o cadastro; o leiaute só carrega o endereço do tomador

	docTomador := nfse.SomenteDigitos(d.Tomador.Documento)
	if len(docTomador) != 11 && len(docTomador) != 14 {
		return nil, fmt.Errorf("%w: documento do tomador deve ter 11 (CPF) ou 14 (CNPJ) dígitos, recebido %d", domain.ErrDPSInvalida, len(docTomador))
	}
	if strings.TrimSpace(d.Tomador.Numero) == "" {
		return nil, fmt.Errorf("%w: número do endereço do tomador vazio", domain.ErrDPSInvalida)
	}
	cepTomador, err := validarCEP(d.Tomador.CEP, "CEP do tomador")
	if err != nil {
		return nil, err
	}
	cMunTomador, err := nfse.DigitosFixos(d.Tomador.CodigoMunicipio, 7, "cMun do tomador")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDPSInvalida, err)
	}

	cTribNac, err := NormalizarCodigoTribNacional(d.Servico.CodigoTribNacional)
	if err != nil {
		return nil, err
	}
	cTribMun := nfse.SomenteDigitos(d.Servico.CodigoTribMunicipal)
	if d.Servico.CodigoTribMunicipal != "" && len(cTribMun) != 3 {
		return nil, fmt.Errorf("%w: cTribMun deve ter exatamente 3 dígitos, recebido %q", domain.ErrDPSInvalida, d.Servico.CodigoTribMunicipal)
	}

	if d.Tributacao == nil {
		return nil, fmt.Errorf("%w: bloco de tributação ausente", domain.ErrDPSInvalida)
	}
	if !nfse.TribISSQNValidos[d.Tributacao.TribISSQN] {
		return nil, fmt.Errorf("%w: tribISSQN deve estar entre 1 e 6, recebido %q", domain.ErrDPSInvalida, d.Tributacao.TribISSQN)
	}
	if !nfse.RetISSQNValidos[d.Tributacao.TpRetISSQN] {
		return nil, fmt.Errorf("%w: tpRetISSQN deve estar entre 1 e 3, recebido %q", domain.ErrDPSInvalida, d.Tributacao.TpRetISSQN)
	}

	id, err := s.gerador.Gerar(&nfse.ParametrosIDDPS{
		CodigoMunicipio: cMunEmi,
		CNPJEmitente:    cnpjPrest,
		Serie:           d.Serie,
		Numero:          d.Numero,
		Agora:           d.DataEmissao,
	})
	if err != nil {
		return nil, err
	}

	// ── Montagem (ordem fixa do schema) ──────────────────────────────────────

	infDPS := novoElemento("infDPS").comAtributo("Id", id.Valor)

	// Cabeçalho
	infDPS.
		filhoTexto("tpAmb", d.Ambiente).
		filhoTexto("dhEmi", nfse.FormatarDataHoraLocal(d.DataEmissao)).
		filhoTexto("verAplic", nfse.SanitizarTextoXML(d.VersaoAplic)).
		filhoTexto("serie", id.Serie).
		filhoTexto("nDPS", id.Numero).
		filhoTexto("dCompet", nfse.FormatarData(d.Competencia)).
		filhoTexto("tpEmit", nfse.EmitentePrestador).
		filhoTexto("cLocEmi", cMunEmi)

	// Prestador
	prest := novoElemento("prest").
		filhoTexto("CNPJ", cnpjPrest).
		filhoTextoSe(d.Prestador.InscricaoMunicipal != "", "IM", nfse.SomenteDigitos(d.Prestador.InscricaoMunicipal))
	prest.filho(novoElemento("regTrib").
		filhoTexto("opSimpNac", fmt.Sprintf("%d", d.Prestador.OpSimpNac)).
		filhoTexto("regEspTrib", fmt.Sprintf("%d", d.Prestador.RegEspTrib)))
	infDPS.filho(prest)

	// Tomador
	toma := novoElemento("toma")
	if len(docTomador) == 14 {
		toma.filhoTexto("CNPJ", docTomador)
	} else {
		toma.filhoTexto("CPF", docTomador)
	}
	toma.filhoTexto("xNome", nfse.SanitizarTextoXML(d.Tomador.RazaoSocial))

	end := novoElemento("end")
	end.filho(novoElemento("endNac").
		filhoTexto("cMun", cMunTomador).
		filhoTexto("CEP", cepTomador))
	end.
		filhoTexto("xLgr", nfse.SanitizarTextoXML(d.Tomador.Logradouro)).
		filhoTexto("nro", nfse.SanitizarTextoXML(d.Tomador.Numero)).
		filhoTextoSe(d.Tomador.Complemento != "", "xCpl", nfse.SanitizarTextoXML(d.Tomador.Complemento)).
		filhoTexto("xBairro", nfse.SanitizarTextoXML(d.Tomador.Bairro))
	toma.filho(end)

	fone := nfse.SomenteDigitos(d.Tomador.Telefone)
	toma.filhoTextoSe(len(fone) >= 6 && len(fone) <= 20, "fone", fone)
	toma.filhoTextoSe(strings.TrimSpace(d.Tomador.Email) != "", "email", nfse.SanitizarTextoXML(d.Tomador.Email))
	infDPS.filho(toma)

	// Serviço
	cLocPrestacao := cMunEmi
	if d.CodigoMunicipioPrestacao != "" {
		cLocPrestacao, err = nfse.DigitosFixos(d.CodigoMunicipioPrestacao, 7, "cLocPrestacao")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDPSInvalida, err)
		}
	}
	serv := novoElemento("serv")
	serv.filho(novoElemento("locPrest").filhoTexto("cLocPrestacao", cLocPrestacao))
	cServ := novoElemento("cServ").
		filhoTexto("cTribNac", cTribNac).
		filhoTextoSe(cTribMun != "", "cTribMun", cTribMun).
		filhoTexto("xDescServ", nfse.SanitizarTextoXML(d.Servico.Descricao))
	serv.filho(cServ)
	if d.InfoComplementar != "" {
		info := strings.ReplaceAll(d.InfoComplementar, TokenNumeroReferencia, d.NumeroReferencia)
		serv.filhoTexto("infoCompl", nfse.SanitizarTextoXML(info))
	}
	infDPS.filho(serv)

	// Valores
	valores := novoElemento("valores")
	valores.filho(novoElemento("vServPrest").filhoTexto("vServ", d.Servico.Valor.Round(2).StringFixed(2)))
	infDPS.filho(valores)

	// Tributação
	trib := novoElemento("trib")
	tribMun := novoElemento("tribMun").filhoTexto("tribISSQN", d.Tributacao.TribISSQN)
	if d.Tributacao.TribISSQN == nfse.TribISSQNImunidade && d.Tributacao.TpImunidade != nil {
		tribMun.filhoTexto("tpImunidade", *d.Tributacao.TpImunidade)
	}
	tribMun.filhoTexto("tpRetISSQN", d.Tributacao.TpRetISSQN)
	// pAliq (que fechava tribMun em revisões anteriores do leiaute) não é
	// emitido nesta revisão do schema.
	trib.filho(tribMun)

	if d.Tributacao.PTotTribFed != nil || d.Tributacao.PTotTribEst != nil || d.Tributacao.PTotTribMun != nil {
		tot := novoElemento("totTrib")
		if p := d.Tributacao.PTotTribFed; p != nil {
			tot.filhoTexto("pTotTribFed", p.Round(2).StringFixed(2))
		}
		if p := d.Tributacao.PTotTribEst; p != nil {
			tot.filhoTexto("pTotTribEst", p.Round(2).StringFixed(2))
		}
		if p := d.Tributacao.PTotTribMun; p != nil {
			tot.filhoTexto("pTotTribMun", p.Round(2).StringFixed(2))
		}
		trib.filho(tot)
	}
	infDPS.filho(trib)

	raiz := novoElemento("DPS").
		comAtributo("xmlns", NsNFSe).
		comAtributo("versao", VersaoLeiaute).
		filho(infDPS)

	return &ResultadoDPS{XML: renderDocumento(raiz), ID: id}, nil
}

// NormalizarCodigoTribNacional aceita códigos de tributação nacional com 4
// dígitos (expandidos com "00") ou 6 dígitos; qualquer outra contagem falha.
func NormalizarCodigoTribNacional(codigo string) (string, error) {
	d := nfse.SomenteDigitos(codigo)
	switch len(d) {
	case 6:
		return d, nil
	case 4:
		return d + "00", nil
	default:
		return "", fmt.Errorf("%w: cTribNac deve ter 4 ou 6 dígitos, recebido %q", domain.ErrDPSInvalida, codigo)
	}
}

// validarCEP exige exatamente 8 dígitos e rejeita CEP todo zero.
func validarCEP(cep, campo string) (string, error) {
	d := nfse.SomenteDigitos(cep)
	if len(d) != 8 {
		return "", fmt.Errorf("%w: %s deve ter exatamente 8 dígitos, recebido %q", domain.ErrDPSInvalida, campo, cep)
	}
	if d == "00000000" {
		return "", fmt.Errorf("%w: %s não pode ser todo zero", domain.ErrDPSInvalida, campo)
	}
	return d, nil
}
