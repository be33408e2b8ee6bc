// Package fiscal orquestra o ciclo de transmissão da NFS-e Nacional:
//
//	Carga → Mapeamento → Montagem DPS → Assinatura → Validação de schema →
//	Envio ao ambiente nacional → Confirmação (persistência + avanço de numeração)
package fiscal

import (
	"context"

	"github.com/notafacil/emissor-nfse/internal/domain/repository"
	infranfse "github.com/notafacil/emissor-nfse/internal/infrastructure/nfse"
)

// TxRunner executa um callback com repositórios atados à mesma transação.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		notaRepo repository.NotaRepository,
		prestadorRepo repository.PrestadorRepository,
		tomadorRepo repository.TomadorRepository,
	) error) error
}

// Confirmador é o porto do backend que persiste o desfecho e avança a
// numeração da DPS do prestador. Falha aqui é reportada como falha de
// transmissão ainda que o gateway já tenha aceitado o documento.
type Confirmador interface {
	// Confirmar persiste o desfecho da emissão da DPS, junto com o XML
	// assinado que foi efetivamente enviado.
	Confirmar(ctx context.Context, notaID string, assinado []byte, resposta *infranfse.RespostaGateway) error
	// ConfirmarCancelamento persiste o desfecho do evento de cancelamento.
	ConfirmarCancelamento(ctx context.Context, notaID string, resposta *infranfse.RespostaGateway) error
}

// ResultadoTransmissao desfecho de uma tentativa de transmissão. Criado a cada
// tentativa; nunca mutado após o retorno.
type ResultadoTransmissao struct {
	Sucesso  bool
	Mensagem string
	Erros    []string
	Payload  []byte
}

func falha(mensagem string, erros ...string) *ResultadoTransmissao {
	if len(erros) == 0 {
		erros = []string{mensagem}
	}
	return &ResultadoTransmissao{Sucesso: false, Mensagem: mensagem, Erros: erros}
}
