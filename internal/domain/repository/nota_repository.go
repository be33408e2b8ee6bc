package repository

import (
	"context"

	"github.com/notafacil/emissor-nfse/internal/domain/entity"
)

// NotaRepository define o porto de persistência para a nota de serviço e seus itens.
type NotaRepository interface {
	Create(ctx context.Context, nota *entity.NotaServico) error
	CreateItem(ctx context.Context, item *entity.ItemServico) error
	GetByID(ctx context.Context, id string) (*entity.NotaServico, error)
	GetItensByNotaID(ctx context.Context, notaID string) ([]*entity.ItemServico, error)
	// AtualizarResultado persiste os campos de resultado da transmissão:
	// status, chave_acesso, protocolo, xml_assinado, mensagens_erro, numero_nfse.
	AtualizarResultado(ctx context.Context, nota *entity.NotaServico) error
	// GetSituacao devolve só os campos de situação (consulta leve para polling).
	GetSituacao(ctx context.Context, id string) (*entity.NotaServico, error)
}
