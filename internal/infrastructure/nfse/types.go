// Package nfse implementa a montagem dos documentos XML da NFS-e Nacional
// (DPS e pedido de registro de evento) e os clientes dos colaboradores
// externos de assinatura, validação de schema e envio ao ambiente nacional.
package nfse

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenNumeroReferencia é o token de substituição aceito no template de
// informações complementares; é trocado pelo número de referência externo.
const TokenNumeroReferencia = "{ref}"

// DadosPrestador bloco do emitente da DPS.
type DadosPrestador struct {
	CNPJ               string // normalizado para 14 dígitos
	InscricaoMunicipal string // opcional
	RazaoSocial        string
	CodigoMunicipio    string // código IBGE (7 dígitos)
	UF                 string
	CEP                string // 8 dígitos, não todo zero
	Logradouro         string
	Numero             string
	Bairro             string
	OpSimpNac          int // 1..3
	RegEspTrib         int // 0/1
}

// DadosTomador bloco do cliente. Documento: 11 dígitos = CPF, 14 = CNPJ.
type DadosTomador struct {
	Documento       string
	RazaoSocial     string
	Telefone        string // opcional; emitido só com 6 a 20 dígitos
	Email           string // opcional
	CodigoMunicipio string
	CEP             string
	Logradouro      string
	Numero          string // obrigatório
	Complemento     string // opcional
	Bairro          string
}

// DadosServico bloco do serviço prestado.
type DadosServico struct {
	CodigoTribNacional  string // 4 dígitos (expandido com "00") ou 6 dígitos
	CodigoTribMunicipal string // opcional; exatamente 3 dígitos quando presente
	Descricao           string
	Valor               decimal.Decimal  // formatado com 2 casas na saída
	Aliquota            *decimal.Decimal // opcional; caminho de emissão desativado
}

// DadosTributacao bloco de tributação da DPS.
type DadosTributacao struct {
	TribISSQN   string           // 1..6
	TpImunidade *string          // só emitido quando TribISSQN sinaliza imunidade
	TpRetISSQN  string           // 1..3
	PTotTribFed *decimal.Decimal // percentuais de carga tributária total, opcionais
	PTotTribEst *decimal.Decimal
	PTotTribMun *decimal.Decimal
}

// DadosDPS agrega tudo que a montagem da DPS precisa. Construído a cada
// operação a partir do snapshot de negócio; nunca compartilhado entre
// transmissões concorrentes.
type DadosDPS struct {
	Ambiente    string // tpAmb: 1=produção, 2=homologação
	VersaoAplic string // verAplic do emissor
	Serie       string // numérica
	Numero      string // sequencial
	Competencia time.Time
	DataEmissao time.Time // entra em dhEmi via FormatarDataHoraLocal

	Prestador  *DadosPrestador
	Tomador    *DadosTomador
	Servico    *DadosServico
	Tributacao *DadosTributacao

	// CodigoMunicipioPrestacao sobrepõe o local de prestação; vazio = cLocEmi.
	CodigoMunicipioPrestacao string
	// InfoComplementar é o template opcional com o token {ref}.
	InfoComplementar string
	// NumeroReferencia substitui o token {ref} no template.
	NumeroReferencia string
}

// DadosCancelamento agrega a entrada do pedido de registro do evento de
// cancelamento.
type DadosCancelamento struct {
	ChaveAcesso     string // 50 dígitos da NFS-e a cancelar
	Ambiente        string
	VersaoAplic     string
	DocumentoAutor  string // CPF/CNPJ do solicitante
	Motivo          string // cMotivo 1..4; default "1"
	Justificativa   string // obrigatória; truncada em 255 na saída
	SequenciaEvento string // nSeqEvento; default "01"
	NumeroPedido    string // nPedRegEvento; default "1"
	DataEvento      time.Time
	// IDExterno, quando presente, substitui o identificador derivado (caso a
	// recepção do ambiente nacional já tenha atribuído um).
	IDExterno string
}
