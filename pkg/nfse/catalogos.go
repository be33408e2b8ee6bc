// Catálogos do leiaute da NFS-e Nacional (DPS e eventos), conforme o
// Manual de Integração do Sistema Nacional NFS-e.
package nfse

// =============================================================================
// Tipo de ambiente (tpAmb)
// =============================================================================

const (
	AmbienteProducao    = "1" // Produção
	AmbienteHomologacao = "2" // Homologação (testes)
)

// AmbientesValidos contém os valores aceitos para tpAmb.
var AmbientesValidos = map[string]bool{
	AmbienteProducao:    true,
	AmbienteHomologacao: true,
}

// =============================================================================
// Tipo de emitente (tpEmit) — neste perfil a DPS é sempre emitida pelo prestador.
// =============================================================================

const (
	EmitentePrestador = "1" // Prestador
)

// =============================================================================
// Tributação do ISSQN (tribISSQN) — 1..6
// =============================================================================

const (
	TribISSQNTributavel       = "1" // Operação tributável
	TribISSQNExportacao       = "2" // Exportação de serviço
	TribISSQNNaoIncidencia    = "3" // Não incidência
	TribISSQNImunidade        = "4" // Imunidade
	TribISSQNSuspensaJudicial = "5" // Exigibilidade suspensa por decisão judicial
	TribISSQNSuspensaADM      = "6" // Exigibilidade suspensa por processo administrativo
)

// TribISSQNValidos contém os códigos válidos de tributação do ISSQN.
var TribISSQNValidos = map[string]bool{
	TribISSQNTributavel: true, TribISSQNExportacao: true, TribISSQNNaoIncidencia: true,
	TribISSQNImunidade: true, TribISSQNSuspensaJudicial: true, TribISSQNSuspensaADM: true,
}

// =============================================================================
// Retenção do ISSQN (tpRetISSQN) — 1..3
// =============================================================================

const (
	RetISSQNNaoRetido           = "1" // Não retido
	RetISSQNRetidoTomador       = "2" // Retido pelo tomador
	RetISSQNRetidoIntermediario = "3" // Retido pelo intermediário
)

// RetISSQNValidos contém os códigos válidos de retenção do ISSQN.
var RetISSQNValidos = map[string]bool{
	RetISSQNNaoRetido: true, RetISSQNRetidoTomador: true, RetISSQNRetidoIntermediario: true,
}

// =============================================================================
// Opção pelo Simples Nacional (opSimpNac) — 1..3
// =============================================================================

const (
	SimpNacNaoOptante = 1 // Não optante
	SimpNacMEI        = 2 // Optante MEI
	SimpNacMEEPP      = 3 // Optante ME/EPP
)

// =============================================================================
// Evento de cancelamento
// =============================================================================

const (
	// CodigoEventoCancelamento é o tpEvento do pedido de cancelamento.
	CodigoEventoCancelamento = "101101"
	// DescricaoEventoCancelamento é o xDesc fixo do evento.
	DescricaoEventoCancelamento = "Cancelamento de NFS-e homologada"
)

// Motivos de cancelamento (cMotivo) — 1..4.
const (
	MotivoErroEmissao        = "1" // Erro na emissão
	MotivoServicoNaoPrestado = "2" // Serviço não prestado
	MotivoErroAssinatura     = "3" // Erro de assinatura
	MotivoDuplicidade        = "4" // Duplicidade da nota
)

// MotivosCancelamentoValidos contém os códigos de motivo aceitos.
var MotivosCancelamentoValidos = map[string]bool{
	MotivoErroEmissao: true, MotivoServicoNaoPrestado: true,
	MotivoErroAssinatura: true, MotivoDuplicidade: true,
}

// =============================================================================
// Prefixos de identificador
// =============================================================================

const (
	// PrefixoIDDPS abre o identificador de 45 caracteres da DPS.
	PrefixoIDDPS = "DPS"
	// PrefixoIDEvento abre o identificador do pedido de registro de evento.
	PrefixoIDEvento = "PRE"
	// TamanhoChaveAcesso é o tamanho da chave de acesso da NFS-e emitida.
	TamanhoChaveAcesso = 50
)
