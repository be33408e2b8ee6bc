package fiscal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	infranfse "github.com/notafacil/emissor-nfse/internal/infrastructure/nfse"

	"github.com/notafacil/emissor-nfse/internal/domain"
	"github.com/notafacil/emissor-nfse/internal/domain/entity"
	"github.com/notafacil/emissor-nfse/internal/domain/repository"
	"github.com/notafacil/emissor-nfse/pkg/logger"
	"github.com/notafacil/emissor-nfse/pkg/nfse"
)

// Config parametriza a transmissão ao ambiente nacional.
type Config struct {
	Ambiente     string // tpAmb: 1=produção, 2=homologação
	VersaoAplic  string // verAplic carimbado nos documentos
	VersaoSchema string // versão do XSD enviada ao validador
	// ValidadorObrigatorio endurece a política: indisponibilidade do
	// validador deixa de ser falha branda e bloqueia a transmissão.
	ValidadorObrigatorio bool
}

// elementos âncora da assinatura em cada documento.
const (
	elementoRaizDPS    = "infDPS"
	elementoRaizEvento = "infPedReg"
)

// TransmissorUseCase dirige o ciclo completo de transmissão:
//
//	Carga → Mapeamento → Montagem → Assinatura → Validação de schema →
//	Envio → Confirmação
//
// Os passos executam estritamente em ordem; nenhuma persistência parcial
// acontece fora da confirmação. Transmissões de notas diferentes podem correr
// em paralelo; por nota, um guarda em memória impede envio duplicado
// concorrente.
type TransmissorUseCase struct {
	notaRepo      repository.NotaRepository
	prestadorRepo repository.PrestadorRepository
	tomadorRepo   repository.TomadorRepository
	dpsBuilder    *infranfse.DPSBuilderService
	eventoBuilder *infranfse.EventoBuilderService
	assinador     infranfse.Assinador
	validador     infranfse.ValidadorSchema
	gateway       infranfse.GatewaySefin
	confirmador   Confirmador
	cfg           Config
	log           *logger.Logger
	relogio       nfse.Relogio

	emVoo sync.Map // nota em transmissão (id -> struct{})
}

// NewTransmissorUseCase constrói o orquestrador com todas as dependências.
func NewTransmissorUseCase(
	notaRepo repository.NotaRepository,
	prestadorRepo repository.PrestadorRepository,
	tomadorRepo repository.TomadorRepository,
	dpsBuilder *infranfse.DPSBuilderService,
	eventoBuilder *infranfse.EventoBuilderService,
	assinador infranfse.Assinador,
	validador infranfse.ValidadorSchema,
	gateway infranfse.GatewaySefin,
	confirmador Confirmador,
	cfg Config,
	log *logger.Logger,
	relogio nfse.Relogio,
) *TransmissorUseCase {
	if relogio == nil {
		relogio = nfse.RelogioSistema
	}
	return &TransmissorUseCase{
		notaRepo:      notaRepo,
		prestadorRepo: prestadorRepo,
		tomadorRepo:   tomadorRepo,
		dpsBuilder:    dpsBuilder,
		eventoBuilder: eventoBuilder,
		assinador:     assinador,
		validador:     validador,
		gateway:       gateway,
		confirmador:   confirmador,
		cfg:           cfg,
		log:           log,
		relogio:       relogio,
	}
}

// Transmitir executa o pipeline de emissão para a nota. refCredencial pode vir
// do chamador; vazio usa a credencial cadastrada no prestador. O resultado é
// criado por tentativa e nunca mutado após o retorno.
func (uc *TransmissorUseCase) Transmitir(ctx context.Context, notaID, refCredencial string) *ResultadoTransmissao {
	if _, carregada := uc.emVoo.LoadOrStore(notaID, struct{}{}); carregada {
		return falha(domain.ErrEmTransmissao.Error())
	}
	defer uc.emVoo.Delete(notaID)

	log := uc.log.With().Str("nota_id", notaID).Logger()

	// ── Carga ────────────────────────────────────────────────────────────────
	nota, prestador, tomador, itens, res := uc.carregar(ctx, notaID)
	if res != nil {
		return res
	}

	// ── Mapeamento ───────────────────────────────────────────────────────────
	agora := uc.relogio().Add(-nfse.DesvioRelogioEmissao)
	dados, err := montarDadosDPS(nota, prestador, tomador, itens, uc.cfg.Ambiente, uc.cfg.VersaoAplic, agora)
	if err != nil {
		return falha("falha no mapeamento da nota", err.Error())
	}

	// ── Montagem ─────────────────────────────────────────────────────────────
	montada, err := uc.dpsBuilder.Build(dados)
	if err != nil {
		log.Warn().Err(err).Msg("montagem da DPS rejeitada")
		return falha("falha na montagem da DPS", err.Error())
	}
	log.Debug().Str("id_dps", montada.ID.Valor).Msg("DPS montada")

	// ── Assinatura ───────────────────────────────────────────────────────────
	assinado, res := uc.assinar(ctx, montada.XML, elementoRaizDPS, refCredencial, prestador)
	if res != nil {
		return res
	}

	// ── Validação de schema ──────────────────────────────────────────────────
	if res := uc.validarSchema(ctx, assinado, log); res != nil {
		return res
	}

	// ── Envio ────────────────────────────────────────────────────────────────
	resposta, err := uc.gateway.EnviarDPS(ctx, assinado, credencial(refCredencial, prestador), uc.cfg.Ambiente, prestador.CNPJ)
	if err != nil {
		log.Error().Err(err).Msg("envio ao ambiente nacional falhou")
		return falha("falha no envio ao ambiente nacional", err.Error())
	}

	// ── Confirmação ──────────────────────────────────────────────────────────
	// O desfecho (aceito ou rejeitado) é sempre reportado ao backend; falha na
	// confirmação é a classe mais grave — o ambiente nacional pode já ter
	// aceitado o documento sem registro local.
	if err := uc.confirmador.Confirmar(ctx, notaID, assinado, resposta); err != nil {
		log.Error().Err(err).Msg("confirmação do desfecho falhou; documento pode ter sido aceito sem registro")
		return falha("falha na confirmação do desfecho da transmissão", err.Error())
	}

	if !resposta.Aceita {
		log.Warn().Strs("erros", resposta.Erros).Msg("DPS rejeitada pelo ambiente nacional")
		return &ResultadoTransmissao{
			Sucesso:  false,
			Mensagem: "DPS rejeitada pelo ambiente nacional",
			Erros:    resposta.Erros,
			Payload:  resposta.PayloadBruto,
		}
	}

	log.Info().
		Str("chave_acesso", resposta.ChaveAcesso).
		Str("protocolo", resposta.Protocolo).
		Msg("NFS-e autorizada")
	return &ResultadoTransmissao{
		Sucesso:  true,
		Mensagem: fmt.Sprintf("NFS-e autorizada (protocolo %s)", resposta.Protocolo),
		Payload:  resposta.PayloadBruto,
	}
}

// Cancelar executa o pipeline do evento de cancelamento para uma nota já
// autorizada: montagem do pedido → assinatura → validação → envio →
// confirmação.
func (uc *TransmissorUseCase) Cancelar(ctx context.Context, notaID, motivo, justificativa, refCredencial string) *ResultadoTransmissao {
	if _, carregada := uc.emVoo.LoadOrStore(notaID, struct{}{}); carregada {
		return falha(domain.ErrEmTransmissao.Error())
	}
	defer uc.emVoo.Delete(notaID)

	log := uc.log.With().Str("nota_id", notaID).Logger()

	nota, err := uc.notaRepo.GetByID(ctx, notaID)
	if err != nil || nota == nil {
		return falha("nota não encontrada", mensagemErro(err))
	}
	if nota.Status != entity.NotaStatusAutorizada {
		return falha(fmt.Sprintf("nota em situação %q não pode ser cancelada", nota.Status))
	}
	prestador, err := uc.prestadorRepo.GetByID(ctx, nota.PrestadorID)
	if err != nil || prestador == nil {
		return falha("prestador da nota não encontrado", mensagemErro(err))
	}

	xmlEvento, err := uc.eventoBuilder.Build(&infranfse.DadosCancelamento{
		ChaveAcesso:     nota.ChaveAcesso,
		Ambiente:        uc.cfg.Ambiente,
		VersaoAplic:     uc.cfg.VersaoAplic,
		DocumentoAutor:  prestador.CNPJ,
		Motivo:          motivo,
		Justificativa:   justificativa,
		SequenciaEvento: nota.SequenciaEvento,
		DataEvento:      uc.relogio().Add(-nfse.DesvioRelogioEmissao),
		IDExterno:       nota.IDEventoRecepcao,
	})
	if err != nil {
		log.Warn().Err(err).Msg("montagem do evento de cancelamento rejeitada")
		return falha("falha na montagem do evento de cancelamento", err.Error())
	}

	assinado, res := uc.assinar(ctx, xmlEvento, elementoRaizEvento, refCredencial, prestador)
	if res != nil {
		return res
	}
	if res := uc.validarSchema(ctx, assinado, log); res != nil {
		return res
	}

	resposta, err := uc.gateway.EnviarEvento(ctx, assinado, credencial(refCredencial, prestador), uc.cfg.Ambiente, prestador.CNPJ)
	if err != nil {
		log.Error().Err(err).Msg("envio do evento ao ambiente nacional falhou")
		return falha("falha no envio do evento ao ambiente nacional", err.Error())
	}

	if err := uc.confirmador.ConfirmarCancelamento(ctx, notaID, resposta); err != nil {
		log.Error().Err(err).Msg("confirmação do cancelamento falhou")
		return falha("falha na confirmação do cancelamento", err.Error())
	}

	if !resposta.Aceita {
		return &ResultadoTransmissao{
			Sucesso:  false,
			Mensagem: "evento de cancelamento rejeitado pelo ambiente nacional",
			Erros:    resposta.Erros,
		}
	}
	log.Info().Str("protocolo", resposta.Protocolo).Msg("cancelamento homologado")
	return &ResultadoTransmissao{Sucesso: true, Mensagem: "cancelamento homologado"}
}

// ── passos compartilhados ─────────────────────────────────────────────────────

func (uc *TransmissorUseCase) carregar(ctx context.Context, notaID string) (*entity.NotaServico, *entity.Prestador, *entity.Tomador, []*entity.ItemServico, *ResultadoTransmissao) {
	nota, err := uc.notaRepo.GetByID(ctx, notaID)
	if err != nil || nota == nil {
		return nil, nil, nil, nil, falha("nota não encontrada", mensagemErro(err))
	}
	prestador, err := uc.prestadorRepo.GetByID(ctx, nota.PrestadorID)
	if err != nil || prestador == nil {
		return nil, nil, nil, nil, falha("prestador da nota não encontrado", mensagemErro(err))
	}
	tomador, err := uc.tomadorRepo.GetByID(ctx, nota.TomadorID)
	if err != nil || tomador == nil {
		return nil, nil, nil, nil, falha("tomador da nota não encontrado", mensagemErro(err))
	}
	itens, err := uc.notaRepo.GetItensByNotaID(ctx, notaID)
	if err != nil {
		return nil, nil, nil, nil, falha("falha ao carregar itens da nota", err.Error())
	}
	if len(itens) == 0 {
		return nil, nil, nil, nil, falha("nota sem itens de serviço")
	}
	return nota, prestador, tomador, itens, nil
}

func (uc *TransmissorUseCase) assinar(ctx context.Context, xml []byte, elementoRaiz, refCredencial string, prestador *entity.Prestador) ([]byte, *ResultadoTransmissao) {
	cred := credencial(refCredencial, prestador)
	if cred == "" {
		// Pré-condição do chamador: sem credencial não há chamada de rede.
		return nil, falha(domain.ErrSemCredencial.Error())
	}
	assinado, err := uc.assinador.Assinar(ctx, &infranfse.RequisicaoAssinatura{
		XML:           xml,
		ElementoRaiz:  elementoRaiz,
		RefCredencial: cred,
	})
	if err != nil {
		return nil, falha("falha na assinatura do documento", err.Error())
	}
	return assinado, nil
}

func (uc *TransmissorUseCase) validarSchema(ctx context.Context, assinado []byte, log zerolog.Logger) *ResultadoTransmissao {
	res, err := uc.validador.Validar(ctx, assinado, uc.cfg.VersaoSchema)
	if err != nil {
		if errors.Is(err, domain.ErrValidadorIndisponivel) && !uc.cfg.ValidadorObrigatorio {
			// Falha branda: disponibilidade acima de rigidez; segue para o envio.
			log.Warn().Err(err).Msg("validador de schema indisponível; prosseguindo sem validação")
			return nil
		}
		return falha("falha na validação de schema", err.Error())
	}
	if !res.OK {
		return falha("documento reprovado na validação de schema", res.Erros...)
	}
	return nil
}

func credencial(refCredencial string, prestador *entity.Prestador) string {
	if strings.TrimSpace(refCredencial) != "" {
		return refCredencial
	}
	return prestador.RefCredencial
}

func mensagemErro(err error) string {
	if err == nil {
		return domain.ErrNaoEncontrado.Error()
	}
	return err.Error()
}
