package dto

// ItemNotaRequest linha de serviço de uma nota nova. Valores monetários
// viajam como string para preservar casas decimais exatas.
type ItemNotaRequest struct {
	CodigoTribNacional  string `json:"codigoTribNacional"` // 4 ou 6 dígitos
	CodigoTribMunicipal string `json:"codigoTribMunicipal,omitempty"`
	Descricao           string `json:"descricao"`
	Valor               string `json:"valor"`
	Aliquota            string `json:"aliquota,omitempty"`
}

// CriarNotaRequest corpo de criação de uma nota de serviço (ainda não
// transmitida).
type CriarNotaRequest struct {
	PrestadorID              string            `json:"prestadorId"`
	TomadorID                string            `json:"tomadorId"`
	Serie                    string            `json:"serie,omitempty"`       // vazio usa a série do prestador
	DataEmissao              string            `json:"dataEmissao,omitempty"` // AAAA-MM-DD; vazio usa a data corrente
	CodigoMunicipioPrestacao string            `json:"codigoMunicipioPrestacao,omitempty"`
	InfoComplementar         string            `json:"infoComplementar,omitempty"`
	NumeroReferencia         string            `json:"numeroReferencia,omitempty"`
	Itens                    []ItemNotaRequest `json:"itens"`
}

// NotaCriadaResponse devolvido na criação.
type NotaCriadaResponse struct {
	ID     string `json:"id"`
	Serie  string `json:"serie"`
	Numero int64  `json:"numero"`
	Status string `json:"status"`
}

// TransmitirRequest corpo do pedido de transmissão de uma nota.
type TransmitirRequest struct {
	// RefCredencial referencia a credencial de assinatura no serviço externo.
	// Vazio usa a credencial cadastrada no prestador.
	RefCredencial string `json:"refCredencial"`
}

// CancelarRequest corpo do pedido de cancelamento de uma nota autorizada.
type CancelarRequest struct {
	Motivo        string `json:"motivo"`        // código do motivo (1..4); vazio = erro na emissão
	Justificativa string `json:"justificativa"` // texto livre, obrigatório
	RefCredencial string `json:"refCredencial"`
}

// TransmissaoResponse desfecho de uma tentativa de transmissão ou cancelamento.
type TransmissaoResponse struct {
	Sucesso  bool     `json:"sucesso"`
	Mensagem string   `json:"mensagem"`
	Erros    []string `json:"erros,omitempty"`
}

// SituacaoResponse situação corrente da nota (consulta leve para polling).
type SituacaoResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	ChaveAcesso   string `json:"chaveAcesso,omitempty"`
	Protocolo     string `json:"protocolo,omitempty"`
	NumeroNFSe    string `json:"numeroNfse,omitempty"`
	MensagensErro string `json:"mensagensErro,omitempty"`
}
