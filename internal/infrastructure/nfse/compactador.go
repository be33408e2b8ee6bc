package nfse

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
)

// CompactarXMLGZipB64 empacota o XML assinado no formato que o ambiente
// nacional recebe: gzip + Base64. Devolve a string pronta para o campo
// dpsXmlGZipB64 da requisição.
func CompactarXMLGZipB64(xmlBytes []byte) (string, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(xmlBytes); err != nil {
		return "", fmt.Errorf("gzip: escrever XML: %w", err)
	}
	if err := gw.Close(); err != nil {
		return "", fmt.Errorf("gzip: fechar stream: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DescompactarXMLGZipB64 desfaz o empacotamento de um payload devolvido pelo
// ambiente nacional (NFS-e gerada, eventos homologados).
func DescompactarXMLGZipB64(payload string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("base64: decodificar payload: %w", err)
	}
	gr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("gzip: abrir payload: %w", err)
	}
	defer gr.Close()
	out, err := io.ReadAll(io.LimitReader(gr, 4<<20)) // máx 4 MB
	if err != nil {
		return nil, fmt.Errorf("gzip: ler payload: %w", err)
	}
	return out, nil
}
