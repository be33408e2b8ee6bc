package repository

import (
	"context"

	"github.com/notafacil/emissor-nfse/internal/domain/entity"
)

// TomadorRepository define o porto de persistência para o tomador.
type TomadorRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Tomador, error)
}
