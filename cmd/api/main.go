package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/notafacil/emissor-nfse/internal/application/fiscal"
	infranfse "github.com/notafacil/emissor-nfse/internal/infrastructure/nfse"
	"github.com/notafacil/emissor-nfse/internal/infrastructure/postgres"
	httpRouter "github.com/notafacil/emissor-nfse/internal/interfaces/http"
	"github.com/notafacil/emissor-nfse/pkg/config"
	"github.com/notafacil/emissor-nfse/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("ambiente_nfse", cfg.NFSe.Ambiente).
		Msg("iniciando aplicação")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	notaRepo := postgres.NewNotaRepository(pool)
	prestadorRepo := postgres.NewPrestadorRepository(pool)
	tomadorRepo := postgres.NewTomadorRepository(pool)
	confirmador := postgres.NewConfirmador(pool)
	txRunner := postgres.NewTxRunner(pool)

	dpsBuilder := infranfse.NewDPSBuilderService()
	eventoBuilder := infranfse.NewEventoBuilderService()
	assinador := infranfse.NewAssinadorHTTP(cfg.NFSe.AssinadorURL)
	// Sem URL de validador a chamada falha como indisponibilidade; com
	// ValidadorObrigatorio desligado isso vira falha branda e a transmissão segue.
	validador := infranfse.NewValidadorSchemaHTTP(cfg.NFSe.ValidadorURL)
	gateway := infranfse.NewGatewaySefinHTTP(cfg.NFSe.GatewayURL)

	// Transmissor: Carga → Mapeamento → Montagem → Assinatura → Validação →
	// Envio → Confirmação
	transmissor := fiscal.NewTransmissorUseCase(
		notaRepo, prestadorRepo, tomadorRepo,
		dpsBuilder, eventoBuilder,
		assinador, validador, gateway, confirmador,
		fiscal.Config{
			Ambiente:             cfg.NFSe.Ambiente,
			VersaoAplic:          cfg.NFSe.VersaoAplic,
			VersaoSchema:         cfg.NFSe.VersaoSchema,
			ValidadorObrigatorio: cfg.NFSe.ValidadorObrigatorio,
		},
		log,
		nil, // relógio do sistema
	)
	cadastro := fiscal.NewCadastroUseCase(txRunner, nil)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Cadastro:    cadastro,
		Transmissor: transmissor,
		NotaRepo:    notaRepo,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	log.Info().Msg("aplicação encerrada")
}
