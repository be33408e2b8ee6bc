package nfse

import "strings"

// elemento é a representação intermediária do documento: uma árvore ordenada
// de (tag, atributos, texto|filhos). A ordem dos filhos é a ordem de inserção,
// de modo que a sequência exigida pelo schema fica garantida por construção e
// elementos condicionais simplesmente não são inseridos.
//
// Texto e valores de atributo devem chegar já seguros para XML
// (ver nfse.SanitizarTextoXML); a renderização não escapa nada.
type elemento struct {
	tag    string
	attrs  []atributo
	texto  string
	filhos []*elemento
}

type atributo struct {
	nome  string
	valor string
}

func novoElemento(tag string) *elemento {
	return &elemento{tag: tag}
}

func (e *elemento) comAtributo(nome, valor string) *elemento {
	e.attrs = append(e.attrs, atributo{nome: nome, valor: valor})
	return e
}

// filhoTexto insere um filho folha com texto. Devolve o pai para encadeamento.
func (e *elemento) filhoTexto(tag, texto string) *elemento {
	e.filhos = append(e.filhos, &elemento{tag: tag, texto: texto})
	return e
}

// filhoTextoSe insere o filho apenas quando a condição vale (elementos
// opcionais do leiaute).
func (e *elemento) filhoTextoSe(cond bool, tag, texto string) *elemento {
	if cond {
		e.filhoTexto(tag, texto)
	}
	return e
}

// filho insere um sub-bloco já montado.
func (e *elemento) filho(f *elemento) *elemento {
	e.filhos = append(e.filhos, f)
	return e
}

// render escreve o elemento e seus filhos, sem indentação nem espaços entre
// elementos: o documento de saída é o formato de fio bit-exato.
func (e *elemento) render(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(e.tag)
	for _, a := range e.attrs {
		b.WriteByte(' ')
		b.WriteString(a.nome)
		b.WriteString(`="`)
		b.WriteString(a.valor)
		b.WriteByte('"')
	}
	if e.texto == "" && len(e.filhos) == 0 {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	b.WriteString(e.texto)
	for _, f := range e.filhos {
		f.render(b)
	}
	b.WriteString("</")
	b.WriteString(e.tag)
	b.WriteByte('>')
}

// renderDocumento produz o documento completo com a declaração XML.
func renderDocumento(raiz *elemento) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	raiz.render(&b)
	return []byte(b.String())
}
