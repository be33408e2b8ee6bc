package entity

import "time"

// Tomador representa o cliente da nota (tomador do serviço).
// Documento com 11 dígitos é CPF; com 14, CNPJ.
type Tomador struct {
	ID              string
	PrestadorID     string
	Documento       string // CPF (11) ou CNPJ (14)
	RazaoSocial     string
	Email           string // opcional
	Telefone        string // opcional; emitido só com 6 a 20 dígitos
	CodigoMunicipio string // código IBGE, 7 dígitos
	UF              string
	CEP             string // 8 dígitos, não pode ser todo zero
	Logradouro      string
	Numero          string // obrigatório no leiaute
	Complemento     string
	Bairro          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
