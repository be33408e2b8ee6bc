package domain

import "errors"

// Erros de domínio (sem dependências externas).
var (
	ErrNaoEncontrado   = errors.New("recurso não encontrado")
	ErrEntradaInvalida = errors.New("entrada inválida")
	ErrConflito        = errors.New("conflito com o estado atual")
	ErrDPSInvalida     = errors.New("DPS inválida")
	ErrEventoInvalido  = errors.New("evento de cancelamento inválido")
	ErrSemCredencial   = errors.New("nenhuma referência de credencial de assinatura disponível")
	ErrEmTransmissao   = errors.New("já existe transmissão em andamento para esta nota")
	// ErrValidadorIndisponivel sinaliza indisponibilidade do validador de
	// schema (rede), distinta de uma validação que retornou erros.
	ErrValidadorIndisponivel = errors.New("validador de schema indisponível")
)
