package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Situações de transmissão da nota junto ao ambiente nacional.
const (
	NotaStatusPendente     = "PENDENTE"     // Criada, aguardando transmissão
	NotaStatusTransmitindo = "TRANSMITINDO" // Pipeline em andamento
	NotaStatusAutorizada   = "AUTORIZADA"   // NFS-e gerada pelo ambiente nacional
	NotaStatusRejeitada    = "REJEITADA"    // Rejeitada pelo ambiente nacional
	NotaStatusCancelada    = "CANCELADA"    // Evento de cancelamento homologado
	NotaStatusErroGeracao  = "ERRO_GERACAO" // Falha na montagem, assinatura ou validação
)

// NotaServico é o registro de negócio que origina a DPS.
type NotaServico struct {
	ID          string
	PrestadorID string
	TomadorID   string

	Serie       string    // série usada na emissão (default: SerieDPS do prestador)
	Numero      int64     // número sequencial da DPS
	DataEmissao time.Time // origem da competência (campos de calendário locais)

	// Overrides opcionais da montagem.
	CodigoMunicipioPrestacao string // local de prestação; vazio = município do emitente
	InfoComplementar         string // template com o token {ref}
	NumeroReferencia         string // substituído no token {ref}

	// Resultado da transmissão.
	Status        string
	ChaveAcesso   string // 50 dígitos, atribuída pelo ambiente nacional
	Protocolo     string // número de protocolo/guia devolvido pelo gateway
	XMLAssinado   string
	MensagensErro string // mensagens de rejeição (texto plano, separadas por "; ")
	NumeroNFSe    string // número da NFS-e gerada

	// Cancelamento.
	SequenciaEvento  string // nSeqEvento já atribuído pela recepção, se houver
	IDEventoRecepcao string // identificador devolvido pela recepção do evento

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemServico é a linha de serviço da nota.
type ItemServico struct {
	ID                  string
	NotaID              string
	CodigoTribNacional  string // classificação nacional (4 ou 6 dígitos na entrada)
	CodigoTribMunicipal string // classificação municipal (3 dígitos), opcional
	Descricao           string
	Valor               decimal.Decimal  // valor do serviço
	Aliquota            *decimal.Decimal // alíquota do ISSQN, opcional
}
