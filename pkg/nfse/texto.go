// Package nfse contém catálogos, normalização de campos e derivação de
// identificadores para a NFS-e Nacional (DPS), conforme leiaute do
// Sistema Nacional NFS-e.
package nfse

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SomenteDigitos remove tudo que não for dígito 0-9.
func SomenteDigitos(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DigitosFixos normaliza o valor para um campo numérico de largura fixa do
// leiaute: extrai os dígitos e completa com zeros à esquerda até n.
// Retorna erro nomeando o campo se não sobrar nenhum dígito ou se o valor
// exceder a largura.
func DigitosFixos(s string, n int, campo string) (string, error) {
	d := SomenteDigitos(s)
	if d == "" {
		return "", fmt.Errorf("nfse: campo %s sem dígitos (%q)", campo, s)
	}
	if len(d) > n {
		return "", fmt.Errorf("nfse: campo %s excede %d dígitos (%q)", campo, n, s)
	}
	return strings.Repeat("0", n-len(d)) + d, nil
}

// SanitizarTextoXML prepara texto livre para ser embutido como conteúdo de
// elemento ou valor de atributo sem escaping adicional:
//   - normaliza Unicode (NFD) e remove marcas diacríticas;
//   - descarta caracteres de controle, exceto TAB, CR e LF;
//   - colapsa espaços em branco (incluindo NBSP) e faz trim;
//   - escapa &, <, > e " preservando entidades já escapadas (idempotente).
func SanitizarTextoXML(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	semAcentos, _, err := transform.String(t, s)
	if err != nil {
		semAcentos = s
	}

	var limpo strings.Builder
	for _, r := range semAcentos {
		switch {
		case r == ' ':
			limpo.WriteRune(' ')
		case r == '\t' || r == '\r' || r == '\n':
			limpo.WriteRune(' ')
		case unicode.IsControl(r):
			// descartado
		default:
			limpo.WriteRune(r)
		}
	}

	colapsado := strings.Join(strings.Fields(limpo.String()), " ")
	return escaparXML(colapsado)
}

// entidades que escaparXML reconhece como já escapadas.
var entidadesXML = []string{"amp;", "lt;", "gt;", "quot;", "apos;"}

// escaparXML escapa &, <, > e " sem reescapar entidades existentes.
func escaparXML(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '&':
			if inicioDeEntidade(s[i+1:]) {
				b.WriteByte('&')
			} else {
				b.WriteString("&amp;")
			}
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func inicioDeEntidade(resto string) bool {
	for _, e := range entidadesXML {
		if strings.HasPrefix(resto, e) {
			return true
		}
	}
	// referência numérica (&#231; ou &#xE7;)
	if strings.HasPrefix(resto, "#") {
		fim := strings.IndexByte(resto, ';')
		return fim > 1
	}
	return false
}
