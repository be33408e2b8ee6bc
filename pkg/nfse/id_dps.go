// Derivação do identificador determinístico da DPS (atributo Id de infDPS).
// Composição fixa de 45 caracteres:
//
//	"DPS" + cMun(7) + tpInsc(1) + CNPJ(14) + série(5) + ano(4) + número(11)
package nfse

import (
	"fmt"
	"strings"
	"time"
)

// tpInscCNPJ é o marcador de tipo de inscrição do emitente. Neste perfil do
// leiaute a DPS é sempre emitida por pessoa jurídica.
const tpInscCNPJ = "2"

// ParametrosIDDPS agrupa os campos que entram na composição do identificador.
type ParametrosIDDPS struct {
	CodigoMunicipio string    // código IBGE do município emissor (7 dígitos)
	CNPJEmitente    string    // CNPJ do prestador (14 dígitos)
	Serie           string    // série da DPS (numérica, sem padding)
	Numero          string    // número sequencial da DPS
	Agora           time.Time // fonte do componente de ano
}

// IDDPS é o identificador derivado. Imutável depois de construído.
type IDDPS struct {
	// Valor é o identificador completo de 45 caracteres.
	Valor string
	// Serie é a série normalizada SEM padding, para uso no corpo do
	// documento. O leiaute admite que o Id carregue a série com 5 dígitos
	// enquanto o elemento serie do corpo vai sem zeros à esquerda; a
	// assimetria é do protocolo e precisa ser preservada.
	Serie string
	// Numero é o número sequencial normalizado (somente dígitos).
	Numero string
}

// GeradorIDDPS deriva o identificador da DPS.
type GeradorIDDPS struct{}

// NewGeradorIDDPS cria o serviço.
func NewGeradorIDDPS() *GeradorIDDPS {
	return &GeradorIDDPS{}
}

// Gerar monta o identificador e valida o comprimento final.
// Falha se município, CNPJ, série ou número não normalizarem.
func (g *GeradorIDDPS) Gerar(p *ParametrosIDDPS) (*IDDPS, error) {
	if p == nil {
		return nil, fmt.Errorf("nfse: ParametrosIDDPS é obrigatório")
	}

	cMun, err := DigitosFixos(p.CodigoMunicipio, 7, "cMun")
	if err != nil {
		return nil, err
	}
	cnpj, err := DigitosFixos(p.CNPJEmitente, 14, "CNPJ do emitente")
	if err != nil {
		return nil, err
	}

	serie := SomenteDigitos(p.Serie)
	if serie == "" {
		return nil, fmt.Errorf("nfse: série da DPS sem dígitos (%q)", p.Serie)
	}
	seriePad, err := DigitosFixos(serie, 5, "série")
	if err != nil {
		return nil, err
	}

	numero := SomenteDigitos(p.Numero)
	if numero == "" {
		return nil, fmt.Errorf("nfse: número da DPS sem dígitos (%q)", p.Numero)
	}
	// Componente de 15 dígitos: ano corrente (4) + número com 11 dígitos.
	// Número acima de 11 dígitos é truncado pelos menos significativos.
	numeroComp := numero
	if len(numeroComp) > 11 {
		numeroComp = numeroComp[len(numeroComp)-11:]
	} else {
		numeroComp = strings.Repeat("0", 11-len(numeroComp)) + numeroComp
	}
	ano := fmt.Sprintf("%04d", p.Agora.Year())

	valor := PrefixoIDDPS + cMun + tpInscCNPJ + cnpj + seriePad + ano + numeroComp
	if len(valor) != 45 {
		// Asserção de conformidade com o leiaute: nunca deve disparar com
		// entradas normalizadas; indica defeito no gerador.
		return nil, fmt.Errorf("nfse: identificador da DPS com %d caracteres, esperado 45 (%q)", len(valor), valor)
	}

	return &IDDPS{Valor: valor, Serie: serie, Numero: numero}, nil
}
