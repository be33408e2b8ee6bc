package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/notafacil/emissor-nfse/internal/application/dto"
	"github.com/notafacil/emissor-nfse/internal/application/fiscal"
	"github.com/notafacil/emissor-nfse/internal/domain"
	"github.com/notafacil/emissor-nfse/internal/domain/repository"
)

// NotaHandler trata as requisições HTTP de emissão da NFS-e.
type NotaHandler struct {
	cadastro    *fiscal.CadastroUseCase
	transmissor *fiscal.TransmissorUseCase
	notaRepo    repository.NotaRepository
}

// NewNotaHandler constrói o handler.
func NewNotaHandler(cadastro *fiscal.CadastroUseCase, transmissor *fiscal.TransmissorUseCase, notaRepo repository.NotaRepository) *NotaHandler {
	return &NotaHandler{cadastro: cadastro, transmissor: transmissor, notaRepo: notaRepo}
}

// Criar cadastra uma nota de serviço (ainda não transmitida).
// POST /api/notas
func (h *NotaHandler) Criar(c *fiber.Ctx) error {
	var in dto.CriarNotaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	nota, err := h.cadastro.CriarNota(c.Context(), &in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEntradaInvalida):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		case errors.Is(err, domain.ErrNaoEncontrado):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
		case errors.Is(err, domain.ErrConflito):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NotaCriadaResponse{
		ID:     nota.ID,
		Serie:  nota.Serie,
		Numero: nota.Numero,
		Status: nota.Status,
	})
}

// Transmitir dispara o pipeline de emissão da DPS para a nota.
// POST /api/notas/:id/transmitir
func (h *NotaHandler) Transmitir(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	var in dto.TransmitirRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}

	res := h.transmissor.Transmitir(c.Context(), id, in.RefCredencial)
	status := fiber.StatusOK
	if !res.Sucesso {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(dto.TransmissaoResponse{
		Sucesso:  res.Sucesso,
		Mensagem: res.Mensagem,
		Erros:    res.Erros,
	})
}

// Cancelar dispara o pipeline do evento de cancelamento para a nota.
// POST /api/notas/:id/cancelar
func (h *NotaHandler) Cancelar(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	var in dto.CancelarRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.Justificativa == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "justificativa requerida"})
	}

	res := h.transmissor.Cancelar(c.Context(), id, in.Motivo, in.Justificativa, in.RefCredencial)
	status := fiber.StatusOK
	if !res.Sucesso {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(dto.TransmissaoResponse{
		Sucesso:  res.Sucesso,
		Mensagem: res.Mensagem,
		Erros:    res.Erros,
	})
}

// Situacao devolve a situação corrente da nota (para polling pelo cliente).
// GET /api/notas/:id/situacao
func (h *NotaHandler) Situacao(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	nota, err := h.notaRepo.GetSituacao(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if nota == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "nota não encontrada"})
	}
	return c.JSON(dto.SituacaoResponse{
		ID:            nota.ID,
		Status:        nota.Status,
		ChaveAcesso:   nota.ChaveAcesso,
		Protocolo:     nota.Protocolo,
		NumeroNFSe:    nota.NumeroNFSe,
		MensagensErro: nota.MensagensErro,
	})
}
