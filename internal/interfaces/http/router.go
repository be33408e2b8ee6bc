package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/notafacil/emissor-nfse/internal/application/fiscal"
	"github.com/notafacil/emissor-nfse/internal/domain/repository"
)

// RouterDeps dependências do router.
type RouterDeps struct {
	Cadastro    *fiscal.CadastroUseCase
	Transmissor *fiscal.TransmissorUseCase
	NotaRepo    repository.NotaRepository
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	notas := api.Group("/notas")
	notaHandler := NewNotaHandler(deps.Cadastro, deps.Transmissor, deps.NotaRepo)
	notas.Post("/", notaHandler.Criar)
	notas.Post("/:id/transmitir", notaHandler.Transmitir)
	notas.Post("/:id/cancelar", notaHandler.Cancelar)
	notas.Get("/:id/situacao", notaHandler.Situacao)
}
