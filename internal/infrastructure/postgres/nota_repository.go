package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/notafacil/emissor-nfse/internal/domain"
	"github.com/notafacil/emissor-nfse/internal/domain/entity"
	"github.com/notafacil/emissor-nfse/internal/domain/repository"
)

var _ repository.NotaRepository = (*NotaRepo)(nil)

// NotaRepo implementação de NotaRepository (usável com pool ou tx).
type NotaRepo struct {
	q Querier
}

// NewNotaRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewNotaRepository(q Querier) *NotaRepo {
	return &NotaRepo{q: q}
}

// Create persiste o cabeçalho da nota.
func (r *NotaRepo) Create(ctx context.Context, nota *entity.NotaServico) error {
	if nota.ID == "" {
		nota.ID = uuid.New().String()
	}
	query := `
		INSERT INTO notas (id, prestador_id, tomador_id, serie, numero, data_emissao,
		                   cod_municipio_prestacao, info_complementar, numero_referencia,
		                   status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		nota.ID, nota.PrestadorID, nota.TomadorID, nota.Serie, nota.Numero, nota.DataEmissao,
		nullIfEmpty(nota.CodigoMunicipioPrestacao), nullIfEmpty(nota.InfoComplementar),
		nullIfEmpty(nota.NumeroReferencia), nota.Status,
		nota.CreatedAt, nota.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("número da nota já emitido na série: %w", domain.ErrConflito)
		}
		return fmt.Errorf("insert nota: %w", err)
	}
	return nil
}

// CreateItem persiste uma linha de serviço.
func (r *NotaRepo) CreateItem(ctx context.Context, item *entity.ItemServico) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO nota_itens (id, nota_id, cod_trib_nacional, cod_trib_municipal, descricao, valor, aliquota)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.NotaID, item.CodigoTribNacional, nullIfEmpty(item.CodigoTribMunicipal),
		item.Descricao, item.Valor, item.Aliquota,
	)
	if err != nil {
		return fmt.Errorf("insert item da nota: %w", err)
	}
	return nil
}

// GetByID obtém a nota completa por ID.
func (r *NotaRepo) GetByID(ctx context.Context, id string) (*entity.NotaServico, error) {
	query := `
		SELECT id, prestador_id, tomador_id, serie, numero, data_emissao,
		       cod_municipio_prestacao, info_complementar, numero_referencia,
		       status, chave_acesso, protocolo, xml_assinado, mensagens_erro,
		       numero_nfse, sequencia_evento, id_evento_recepcao,
		       created_at, updated_at
		FROM notas WHERE id = $1`
	var n entity.NotaServico
	var codMun, infoCompl, numRef, chave, protocolo, xmlAssinado, msgsErro, numNFSe, seqEvento, idEvento *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.PrestadorID, &n.TomadorID, &n.Serie, &n.Numero, &n.DataEmissao,
		&codMun, &infoCompl, &numRef,
		&n.Status, &chave, &protocolo, &xmlAssinado, &msgsErro,
		&numNFSe, &seqEvento, &idEvento,
		&n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get nota: %w", err)
	}
	n.CodigoMunicipioPrestacao = derefStr(codMun)
	n.InfoComplementar = derefStr(infoCompl)
	n.NumeroReferencia = derefStr(numRef)
	n.ChaveAcesso = derefStr(chave)
	n.Protocolo = derefStr(protocolo)
	n.XMLAssinado = derefStr(xmlAssinado)
	n.MensagensErro = derefStr(msgsErro)
	n.NumeroNFSe = derefStr(numNFSe)
	n.SequenciaEvento = derefStr(seqEvento)
	n.IDEventoRecepcao = derefStr(idEvento)
	return &n, nil
}

// GetItensByNotaID obtém todas as linhas de serviço da nota.
func (r *NotaRepo) GetItensByNotaID(ctx context.Context, notaID string) ([]*entity.ItemServico, error) {
	query := `
		SELECT id, nota_id, cod_trib_nacional, cod_trib_municipal, descricao, valor, aliquota
		FROM nota_itens WHERE nota_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, notaID)
	if err != nil {
		return nil, fmt.Errorf("list itens da nota: %w", err)
	}
	defer rows.Close()
	var list []*entity.ItemServico
	for rows.Next() {
		var it entity.ItemServico
		var codMun *string
		if err := rows.Scan(&it.ID, &it.NotaID, &it.CodigoTribNacional, &codMun, &it.Descricao, &it.Valor, &it.Aliquota); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.CodigoTribMunicipal = derefStr(codMun)
		list = append(list, &it)
	}
	return list, rows.Err()
}

// AtualizarResultado persiste o desfecho da transmissão ou do cancelamento.
func (r *NotaRepo) AtualizarResultado(ctx context.Context, nota *entity.NotaServico) error {
	query := `
		UPDATE notas
		SET status             = $2,
		    chave_acesso       = COALESCE($3, chave_acesso),
		    protocolo          = COALESCE($4, protocolo),
		    xml_assinado       = COALESCE($5, xml_assinado),
		    mensagens_erro     = $6,
		    numero_nfse        = COALESCE($7, numero_nfse),
		    sequencia_evento   = COALESCE($8, sequencia_evento),
		    id_evento_recepcao = COALESCE($9, id_evento_recepcao),
		    updated_at         = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		nota.ID,
		nota.Status,
		nullIfEmpty(nota.ChaveAcesso),
		nullIfEmpty(nota.Protocolo),
		nullIfEmpty(nota.XMLAssinado),
		nullIfEmpty(nota.MensagensErro),
		nullIfEmpty(nota.NumeroNFSe),
		nullIfEmpty(nota.SequenciaEvento),
		nullIfEmpty(nota.IDEventoRecepcao),
		nota.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update resultado da nota: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNaoEncontrado
	}
	return nil
}

// GetSituacao devolve só os campos de situação (consulta leve para polling).
func (r *NotaRepo) GetSituacao(ctx context.Context, id string) (*entity.NotaServico, error) {
	const query = `
		SELECT id, prestador_id, status,
		       COALESCE(chave_acesso, ''), COALESCE(protocolo, ''),
		       COALESCE(numero_nfse, ''), COALESCE(mensagens_erro, '')
		FROM notas WHERE id = $1`
	var n entity.NotaServico
	err := r.q.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.PrestadorID, &n.Status,
		&n.ChaveAcesso, &n.Protocolo, &n.NumeroNFSe, &n.MensagensErro,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get situação da nota: %w", err)
	}
	return &n, nil
}
