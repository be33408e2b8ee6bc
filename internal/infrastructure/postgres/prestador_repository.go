package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/notafacil/emissor-nfse/internal/domain/entity"
	"github.com/notafacil/emissor-nfse/internal/domain/repository"
)

var _ repository.PrestadorRepository = (*PrestadorRepo)(nil)

// PrestadorRepo implementação de PrestadorRepository (usável com pool ou tx).
type PrestadorRepo struct {
	q Querier
}

// NewPrestadorRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewPrestadorRepository(q Querier) *PrestadorRepo {
	return &PrestadorRepo{q: q}
}

// GetByID obtém o cadastro fiscal completo do prestador.
func (r *PrestadorRepo) GetByID(ctx context.Context, id string) (*entity.Prestador, error) {
	query := `
		SELECT id, cnpj, inscricao_municipal, razao_social, cod_municipio, uf, cep,
		       logradouro, numero, complemento, bairro,
		       op_simp_nac, reg_esp_trib,
		       cod_trib_nacional, cod_servico_padrao, trib_issqn_padrao, tp_imunidade,
		       tp_ret_issqn_padrao, p_tot_trib_fed, p_tot_trib_est, p_tot_trib_mun,
		       serie_dps, proximo_numero_dps, ref_credencial,
		       created_at, updated_at
		FROM prestadores WHERE id = $1`
	var p entity.Prestador
	var im, complemento, codTribNac, codServ, tribISSQN, tpRet, refCred *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CNPJ, &im, &p.RazaoSocial, &p.CodigoMunicipio, &p.UF, &p.CEP,
		&p.Logradouro, &p.Numero, &complemento, &p.Bairro,
		&p.OpSimpNac, &p.RegEspTrib,
		&codTribNac, &codServ, &tribISSQN, &p.TpImunidade,
		&tpRet, &p.PTotTribFed, &p.PTotTribEst, &p.PTotTribMun,
		&p.SerieDPS, &p.ProximoNumeroDPS, &refCred,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get prestador: %w", err)
	}
	p.InscricaoMunicipal = derefStr(im)
	p.Complemento = derefStr(complemento)
	p.CodigoTribNacional = derefStr(codTribNac)
	p.CodigoServicoPadrao = derefStr(codServ)
	p.TribISSQNPadrao = derefStr(tribISSQN)
	p.TpRetISSQNPadrao = derefStr(tpRet)
	p.RefCredencial = derefStr(refCred)
	return &p, nil
}

// AvancarNumeroDPS incrementa o contador de numeração e devolve o valor
// reservado. O UPDATE ... RETURNING garante atomicidade entre emissores
// concorrentes do mesmo prestador.
func (r *PrestadorRepo) AvancarNumeroDPS(ctx context.Context, prestadorID string) (int64, error) {
	const query = `
		UPDATE prestadores
		SET proximo_numero_dps = proximo_numero_dps + 1,
		    updated_at         = NOW()
		WHERE id = $1
		RETURNING proximo_numero_dps`
	var numero int64
	if err := r.q.QueryRow(ctx, query, prestadorID).Scan(&numero); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("avançar numeração: prestador %s não encontrado", prestadorID)
		}
		return 0, fmt.Errorf("avançar numeração do prestador: %w", err)
	}
	return numero, nil
}
