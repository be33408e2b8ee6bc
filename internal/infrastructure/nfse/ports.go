package nfse

import "context"

// Portos de saída para os colaboradores externos do ciclo de transmissão.
// As implementações concretas usam HTTP; para testes injeta-se um mock.

// RequisicaoAssinatura pedido ao serviço externo de assinatura digital.
type RequisicaoAssinatura struct {
	XML           []byte // documento sem assinatura
	ElementoRaiz  string // elemento âncora da assinatura (infDPS / infPedReg)
	RefCredencial string // referência da credencial no serviço (nunca a chave)
}

// Assinador é o porto de saída para o serviço externo de assinatura.
// A ausência de RefCredencial é pré-condição do chamador, não uma chamada.
type Assinador interface {
	Assinar(ctx context.Context, req *RequisicaoAssinatura) ([]byte, error)
}

// ResultadoValidacao resposta do validador de schema.
type ResultadoValidacao struct {
	OK     bool
	Erros  []string
	Avisos []string
}

// ValidadorSchema é o porto de saída para o serviço externo de validação XSD.
// Implementações devem devolver domain.ErrValidadorIndisponivel (via
// errors.Is) quando o serviço estiver inacessível, para que o orquestrador
// aplique a política de falha branda.
type ValidadorSchema interface {
	Validar(ctx context.Context, xmlAssinado []byte, versaoSchema string) (*ResultadoValidacao, error)
}

// RespostaGateway resposta estruturada do ambiente nacional.
type RespostaGateway struct {
	Aceita       bool
	Situacao     string // código de situação devolvido
	Protocolo    string // número de protocolo/guia
	ChaveAcesso  string // chave de acesso da NFS-e gerada (50 dígitos)
	NumeroNFSe   string
	Erros        []string
	PayloadBruto []byte // documento/payload resultante, repassado ao confirmador
}

// GatewaySefin é o porto de saída para o ambiente nacional (Sefin).
type GatewaySefin interface {
	// EnviarDPS transmite a DPS assinada (gzip+b64 interno à implementação).
	EnviarDPS(ctx context.Context, xmlAssinado []byte, refCredencial, ambiente, cnpjEmitente string) (*RespostaGateway, error)
	// EnviarEvento transmite o pedido de registro de evento (cancelamento).
	EnviarEvento(ctx context.Context, xmlAssinado []byte, refCredencial, ambiente, cnpjEmitente string) (*RespostaGateway, error)
}
