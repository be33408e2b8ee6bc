package nfse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"

	"github.com/notafacil/emissor-nfse/pkg/nfse"
)

// GatewaySefinHTTP implementa GatewaySefin contra a API do ambiente
// nacional (Sefin). O ambiente nacional pode demorar alguns segundos; timeout
// generoso.
type GatewaySefinHTTP struct {
	baseURL    string
	httpClient *http.Client
}

// NewGatewaySefinHTTP constrói o cliente.
func NewGatewaySefinHTTP(baseURL string) *GatewaySefinHTTP {
	return &GatewaySefinHTTP{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

var _ GatewaySefin = (*GatewaySefinHTTP)(nil)

type enviarDPSRequest struct {
	DpsXMLGZipB64 string `json:"dpsXmlGZipB64"`
}

type enviarEventoRequest struct {
	PedidoXMLGZipB64 string `json:"pedidoXmlGZipB64"`
}

type respostaSefin struct {
	CodigoSituacao string `json:"situacao"`
	Protocolo      string `json:"protocolo"`
	ChaveAcesso    string `json:"chaveAcesso"`
	NfseXMLGZipB64 string `json:"nfseXmlGZipB64"`
	Erros          []struct {
		Codigo   string `json:"codigo"`
		Mensagem string `json:"descricao"`
	} `json:"erros"`
}

// EnviarDPS transmite a DPS assinada (gzip+b64) e interpreta a resposta.
func (c *GatewaySefinHTTP) EnviarDPS(ctx context.Context, xmlAssinado []byte, refCredencial, ambiente, cnpjEmitente string) (*RespostaGateway, error) {
	compactado, err := CompactarXMLGZipB64(xmlAssinado)
	if err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	body, err := json.Marshal(enviarDPSRequest{DpsXMLGZipB64: compactado})
	if err != nil {
		return nil, fmt.Errorf("gateway: serializar requisição: %w", err)
	}
	return c.enviar(ctx, c.baseURL+"/nfse", body, refCredencial, ambiente, cnpjEmitente)
}

// EnviarEvento transmite o pedido de registro de evento assinado.
func (c *GatewaySefinHTTP) EnviarEvento(ctx context.Context, xmlAssinado []byte, refCredencial, ambiente, cnpjEmitente string) (*RespostaGateway, error) {
	compactado, err := CompactarXMLGZipB64(xmlAssinado)
	if err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	body, err := json.Marshal(enviarEventoRequest{PedidoXMLGZipB64: compactado})
	if err != nil {
		return nil, fmt.Errorf("gateway: serializar requisição: %w", err)
	}
	return c.enviar(ctx, c.baseURL+"/nfse/eventos", body, refCredencial, ambiente, cnpjEmitente)
}

func (c *GatewaySefinHTTP) enviar(ctx context.Context, url string, body []byte, refCredencial, ambiente, cnpjEmitente string) (*RespostaGateway, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gateway: criar request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Ref-Credencial", refCredencial)
	httpReq.Header.Set("X-Ambiente", ambiente)
	httpReq.Header.Set("X-CNPJ-Emitente", nfse.SomenteDigitos(cnpjEmitente))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("gateway: timeout ou cancelamento: %w", ctx.Err())
		}
		return nil, fmt.Errorf("gateway: chamada HTTP falhou: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("gateway: ler resposta: %w", err)
	}

	var out respostaSefin
	if err := json.Unmarshal(raw, &out); err != nil {
		// Resposta que não parseia não aborta a interpretação: vira rejeição
		// com o corpo bruto na lista de erros.
		return &RespostaGateway{
			Aceita: false,
			Erros:  []string{fmt.Sprintf("resposta inesperada do ambiente nacional (HTTP %d): %s", resp.StatusCode, string(raw))},
		}, nil
	}

	r := &RespostaGateway{
		Situacao:    out.CodigoSituacao,
		Protocolo:   out.Protocolo,
		ChaveAcesso: out.ChaveAcesso,
	}
	for _, e := range out.Erros {
		r.Erros = append(r.Erros, fmt.Sprintf("[%s] %s", e.Codigo, e.Mensagem))
	}
	r.Aceita = resp.StatusCode < http.StatusBadRequest && len(r.Erros) == 0

	if out.NfseXMLGZipB64 != "" {
		nfseXML, err := DescompactarXMLGZipB64(out.NfseXMLGZipB64)
		if err == nil {
			r.PayloadBruto = nfseXML
			preencherDaNFSe(r, nfseXML)
		}
	}
	return r, nil
}

// preencherDaNFSe extrai chave de acesso e número da NFS-e devolvida quando a
// resposta JSON não os trouxe em claro.
func preencherDaNFSe(r *RespostaGateway, nfseXML []byte) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(nfseXML); err != nil {
		return
	}
	if r.ChaveAcesso == "" {
		if el := doc.FindElement("//infNFSe"); el != nil {
			id := el.SelectAttrValue("Id", "")
			if digitos := nfse.SomenteDigitos(id); len(digitos) == nfse.TamanhoChaveAcesso {
				r.ChaveAcesso = digitos
			}
		}
	}
	if r.NumeroNFSe == "" {
		if el := doc.FindElement("//infNFSe/nNFSe"); el != nil {
			r.NumeroNFSe = el.Text()
		}
	}
}
