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
)

// AssinadorHTTP implementa Assinador contra o serviço externo de
// assinatura digital. O serviço guarda as credenciais; daqui só sai a
// referência.
type AssinadorHTTP struct {
	baseURL    string
	httpClient *http.Client
}

// NewAssinadorHTTP constrói o cliente. O serviço de assinatura costuma
// responder rápido; timeout curto.
func NewAssinadorHTTP(baseURL string) *AssinadorHTTP {
	return &AssinadorHTTP{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

var _ Assinador = (*AssinadorHTTP)(nil)

type assinarRequest struct {
	XMLBase64     string `json:"xmlBase64"`
	ElementoRaiz  string `json:"elementoRaiz"`
	RefCredencial string `json:"refCredencial"`
}

type assinarResponse struct {
	XMLAssinadoBase64 string `json:"xmlAssinadoBase64"`
	Erro              string `json:"erro,omitempty"`
}

// Assinar envia o documento e devolve os bytes assinados.
func (c *AssinadorHTTP) Assinar(ctx context.Context, req *RequisicaoAssinatura) ([]byte, error) {
	payload, err := json.Marshal(assinarRequest{
		XMLBase64:     base64.StdEncoding.EncodeToString(req.XML),
		ElementoRaiz:  req.ElementoRaiz,
		RefCredencial: req.RefCredencial,
	})
	if err != nil {
		return nil, fmt.Errorf("assinador: serializar requisição: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/assinaturas", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("assinador: criar request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("assinador: chamada HTTP falhou: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("assinador: ler resposta: %w", err)
	}

	var out assinarResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("assinador: resposta inesperada (HTTP %d): %s", resp.StatusCode, string(raw))
	}
	if resp.StatusCode != http.StatusOK || out.Erro != "" {
		return nil, fmt.Errorf("assinador: HTTP %d: %s", resp.StatusCode, out.Erro)
	}

	assinado, err := base64.StdEncoding.DecodeString(out.XMLAssinadoBase64)
	if err != nil {
		return nil, fmt.Errorf("assinador: decodificar XML assinado: %w", err)
	}
	if len(assinado) == 0 {
		return nil, fmt.Errorf("assinador: resposta sem XML assinado")
	}
	return assinado, nil
}
