package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Prestador representa o emitente da DPS (pessoa jurídica prestadora de
// serviços), com sua configuração fiscal e o controle de numeração.
type Prestador struct {
	ID                 string
	CNPJ               string // 14 dígitos após normalização
	InscricaoMunicipal string // opcional
	RazaoSocial        string
	CodigoMunicipio    string // código IBGE, 7 dígitos
	UF                 string
	CEP                string // 8 dígitos, não pode ser todo zero
	Logradouro         string
	Numero             string
	Complemento        string
	Bairro             string

	// Regime tributário
	OpSimpNac  int // opção pelo Simples Nacional (1..3)
	RegEspTrib int // regime especial de tributação (0/1)

	// Defaults fiscais aplicados na montagem da DPS.
	CodigoTribNacional  string           // código de tributação nacional tipado no cadastro (prioridade 1)
	CodigoServicoPadrao string           // classificação de serviço padrão do prestador (prioridade 2)
	TribISSQNPadrao     string           // tributação do ISSQN (1..6)
	TpImunidade         *string          // tipo de imunidade; só emitido quando tribISSQN = imunidade
	TpRetISSQNPadrao    string           // retenção do ISSQN (1..3)
	PTotTribFed         *decimal.Decimal // percentuais de carga tributária total (IBPT), opcionais
	PTotTribEst         *decimal.Decimal
	PTotTribMun         *decimal.Decimal

	// Numeração da DPS.
	SerieDPS         string // série numérica (sem padding)
	ProximoNumeroDPS int64  // avançado pelo confirmador após transmissão aceita

	// RefCredencial referencia a credencial de assinatura no serviço externo
	// (nunca a chave em si).
	RefCredencial string

	CreatedAt time.Time
	UpdatedAt time.Time
}
