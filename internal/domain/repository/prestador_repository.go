package repository

import (
	"context"

	"github.com/notafacil/emissor-nfse/internal/domain/entity"
)

// PrestadorRepository define o porto de persistência para o prestador emitente.
type PrestadorRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Prestador, error)
	// AvancarNumeroDPS incrementa o contador de numeração do prestador e
	// devolve o valor reservado. Usado pelo confirmador após aceitação.
	AvancarNumeroDPS(ctx context.Context, prestadorID string) (int64, error)
}
