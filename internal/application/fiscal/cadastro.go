package fiscal

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/notafacil/emissor-nfse/internal/application/dto"
	"github.com/notafacil/emissor-nfse/internal/domain"
	"github.com/notafacil/emissor-nfse/internal/domain/entity"
	"github.com/notafacil/emissor-nfse/internal/domain/repository"
	"github.com/notafacil/emissor-nfse/pkg/nfse"
)

// CadastroUseCase cria a nota de serviço e seus itens em transação. A nota
// nasce PENDENTE; o número vem do contador do prestador, que só avança na
// confirmação de uma transmissão aceita.
type CadastroUseCase struct {
	tx      TxRunner
	relogio nfse.Relogio
}

// NewCadastroUseCase constrói o caso de uso.
func NewCadastroUseCase(tx TxRunner, relogio nfse.Relogio) *CadastroUseCase {
	if relogio == nil {
		relogio = nfse.RelogioSistema
	}
	return &CadastroUseCase{tx: tx, relogio: relogio}
}

// CriarNota valida a entrada e persiste nota e itens atomicamente.
func (uc *CadastroUseCase) CriarNota(ctx context.Context, in *dto.CriarNotaRequest) (*entity.NotaServico, error) {
	if in.PrestadorID == "" || in.TomadorID == "" {
		return nil, fmt.Errorf("%w: prestadorId e tomadorId são obrigatórios", domain.ErrEntradaInvalida)
	}
	if len(in.Itens) == 0 {
		return nil, fmt.Errorf("%w: nota precisa de ao menos um item de serviço", domain.ErrEntradaInvalida)
	}

	itens := make([]*entity.ItemServico, 0, len(in.Itens))
	for i, it := range in.Itens {
		valor, err := decimal.NewFromString(it.Valor)
		if err != nil || valor.Sign() <= 0 {
			return nil, fmt.Errorf("%w: valor do item %d inválido (%q)", domain.ErrEntradaInvalida, i+1, it.Valor)
		}
		item := &entity.ItemServico{
			CodigoTribNacional:  it.CodigoTribNacional,
			CodigoTribMunicipal: it.CodigoTribMunicipal,
			Descricao:           it.Descricao,
			Valor:               valor,
		}
		if it.Aliquota != "" {
			aliq, err := decimal.NewFromString(it.Aliquota)
			if err != nil {
				return nil, fmt.Errorf("%w: alíquota do item %d inválida (%q)", domain.ErrEntradaInvalida, i+1, it.Aliquota)
			}
			item.Aliquota = &aliq
		}
		itens = append(itens, item)
	}

	dataEmissao := uc.relogio()
	if in.DataEmissao != "" {
		d, err := time.ParseInLocation("2006-01-02", in.DataEmissao, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: dataEmissao deve ser AAAA-MM-DD (%q)", domain.ErrEntradaInvalida, in.DataEmissao)
		}
		dataEmissao = d
	}

	var nota *entity.NotaServico
	err := uc.tx.Run(ctx, func(notaRepo repository.NotaRepository, prestadorRepo repository.PrestadorRepository, tomadorRepo repository.TomadorRepository) error {
		prestador, err := prestadorRepo.GetByID(ctx, in.PrestadorID)
		if err != nil {
			return err
		}
		if prestador == nil {
			return fmt.Errorf("prestador: %w", domain.ErrNaoEncontrado)
		}
		tomador, err := tomadorRepo.GetByID(ctx, in.TomadorID)
		if err != nil {
			return err
		}
		if tomador == nil || tomador.PrestadorID != prestador.ID {
			return fmt.Errorf("tomador: %w", domain.ErrNaoEncontrado)
		}

		serie := in.Serie
		if serie == "" {
			serie = prestador.SerieDPS
		}

		agora := uc.relogio()
		nota = &entity.NotaServico{
			PrestadorID:              prestador.ID,
			TomadorID:                tomador.ID,
			Serie:                    serie,
			Numero:                   prestador.ProximoNumeroDPS,
			DataEmissao:              dataEmissao,
			CodigoMunicipioPrestacao: in.CodigoMunicipioPrestacao,
			InfoComplementar:         in.InfoComplementar,
			NumeroReferencia:         in.NumeroReferencia,
			Status:                   entity.NotaStatusPendente,
			CreatedAt:                agora,
			UpdatedAt:                agora,
		}
		if err := notaRepo.Create(ctx, nota); err != nil {
			return err
		}
		for _, item := range itens {
			item.NotaID = nota.ID
			if err := notaRepo.CreateItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nota, nil
}
