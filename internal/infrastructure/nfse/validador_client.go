package nfse

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/notafacil/emissor-nfse/internal/domain"
)

// ValidadorSchemaHTTP implementa ValidadorSchema contra o serviço
// externo de validação XSD. Indisponibilidade de rede vira
// domain.ErrValidadorIndisponivel, para a política de falha branda do
// orquestrador; validação que retornou erros estruturais é resposta normal.
type ValidadorSchemaHTTP struct {
	baseURL    string
	httpClient *http.Client
}

// NewValidadorSchemaHTTP constrói o cliente.
func NewValidadorSchemaHTTP(baseURL string) *ValidadorSchemaHTTP {
	return &ValidadorSchemaHTTP{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

var _ ValidadorSchema = (*ValidadorSchemaHTTP)(nil)

type validarRequest struct {
	XMLBase64    string `json:"xmlBase64"`
	VersaoSchema string `json:"versaoSchema"`
}

type validarResponse struct {
	OK     bool     `json:"ok"`
	Erros  []string `json:"erros"`
	Avisos []string `json:"avisos"`
}

// Validar submete o XML assinado ao validador.
func (c *ValidadorSchemaHTTP) Validar(ctx context.Context, xmlAssinado []byte, versaoSchema string) (*ResultadoValidacao, error) {
	payload, err := json.Marshal(validarRequest{
		XMLBase64:    base64.StdEncoding.EncodeToString(xmlAssinado),
		VersaoSchema: versaoSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("validador: serializar requisição: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/validacoes", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("validador: criar request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Qualquer falha de transporte conta como indisponibilidade.
		return nil, fmt.Errorf("%w: %v", domain.ErrValidadorIndisponivel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrValidadorIndisponivel, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("validador: ler resposta: %w", err)
	}
	var out validarResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("validador: resposta inesperada: %s", string(raw))
	}

	return &ResultadoValidacao{OK: out.OK, Erros: out.Erros, Avisos: out.Avisos}, nil
}
