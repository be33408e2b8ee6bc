package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/notafacil/emissor-nfse/internal/domain/entity"
	"github.com/notafacil/emissor-nfse/internal/domain/repository"
)

var _ repository.TomadorRepository = (*TomadorRepo)(nil)

// TomadorRepo implementação de TomadorRepository (usável com pool ou tx).
type TomadorRepo struct {
	q Querier
}

// NewTomadorRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewTomadorRepository(q Querier) *TomadorRepo {
	return &TomadorRepo{q: q}
}

// GetByID obtém o tomador por ID.
func (r *TomadorRepo) GetByID(ctx context.Context, id string) (*entity.Tomador, error) {
	query := `
		SELECT id, prestador_id, documento, razao_social, email, telefone,
		       cod_municipio, uf, cep, logradouro, numero, complemento, bairro,
		       created_at, updated_at
		FROM tomadores WHERE id = $1`
	var t entity.Tomador
	var email, telefone, complemento *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.PrestadorID, &t.Documento, &t.RazaoSocial, &email, &telefone,
		&t.CodigoMunicipio, &t.UF, &t.CEP, &t.Logradouro, &t.Numero, &complemento, &t.Bairro,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tomador: %w", err)
	}
	t.Email = derefStr(email)
	t.Telefone = derefStr(telefone)
	t.Complemento = derefStr(complemento)
	return &t, nil
}
