package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/notafacil/emissor-nfse/internal/application/fiscal"
	"github.com/notafacil/emissor-nfse/internal/domain"
	"github.com/notafacil/emissor-nfse/internal/domain/entity"
	infranfse "github.com/notafacil/emissor-nfse/internal/infrastructure/nfse"
)

var _ fiscal.Confirmador = (*Confirmador)(nil)

// Confirmador persiste o desfecho da transmissão em transação: atualização da
// nota e, quando a DPS é aceita, avanço da numeração do prestador no mesmo
// commit. É o único ponto do pipeline que escreve no banco.
type Confirmador struct {
	pool *pgxpool.Pool
}

// NewConfirmador constrói o confirmador sobre o pool.
func NewConfirmador(pool *pgxpool.Pool) *Confirmador {
	return &Confirmador{pool: pool}
}

// Confirmar grava o desfecho da emissão. Aceita -> AUTORIZADA com chave,
// protocolo e número da NFS-e; rejeitada -> REJEITADA com as mensagens do
// ambiente nacional.
func (c *Confirmador) Confirmar(ctx context.Context, notaID string, assinado []byte, resposta *infranfse.RespostaGateway) error {
	return c.emTransacao(ctx, func(notaRepo *NotaRepo, prestadorRepo *PrestadorRepo) error {
		nota, err := notaRepo.GetByID(ctx, notaID)
		if err != nil {
			return err
		}
		if nota == nil {
			return domain.ErrNaoEncontrado
		}

		nota.XMLAssinado = string(assinado)
		nota.UpdatedAt = time.Now()
		if resposta.Aceita {
			nota.Status = entity.NotaStatusAutorizada
			nota.ChaveAcesso = resposta.ChaveAcesso
			nota.Protocolo = resposta.Protocolo
			nota.NumeroNFSe = resposta.NumeroNFSe
			nota.MensagensErro = ""
		} else {
			nota.Status = entity.NotaStatusRejeitada
			nota.MensagensErro = strings.Join(resposta.Erros, "; ")
		}

		if err := notaRepo.AtualizarResultado(ctx, nota); err != nil {
			return err
		}
		if resposta.Aceita {
			// Número consumido: a numeração só avança quando o ambiente
			// nacional aceita a DPS.
			if _, err := prestadorRepo.AvancarNumeroDPS(ctx, nota.PrestadorID); err != nil {
				return err
			}
		}
		return nil
	})
}

// ConfirmarCancelamento grava o desfecho do evento de cancelamento.
func (c *Confirmador) ConfirmarCancelamento(ctx context.Context, notaID string, resposta *infranfse.RespostaGateway) error {
	return c.emTransacao(ctx, func(notaRepo *NotaRepo, _ *PrestadorRepo) error {
		nota, err := notaRepo.GetByID(ctx, notaID)
		if err != nil {
			return err
		}
		if nota == nil {
			return domain.ErrNaoEncontrado
		}

		nota.UpdatedAt = time.Now()
		if resposta.Aceita {
			nota.Status = entity.NotaStatusCancelada
			nota.Protocolo = resposta.Protocolo
			nota.MensagensErro = ""
		} else {
			// Nota permanece autorizada; só registramos a recusa do evento.
			nota.MensagensErro = strings.Join(resposta.Erros, "; ")
		}
		return notaRepo.AtualizarResultado(ctx, nota)
	})
}

// emTransacao executa fn com repositórios atados à mesma tx e faz Commit ou
// Rollback.
func (c *Confirmador) emTransacao(ctx context.Context, fn func(*NotaRepo, *PrestadorRepo) error) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewNotaRepository(tx), NewPrestadorRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
