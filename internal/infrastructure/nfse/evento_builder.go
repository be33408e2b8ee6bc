package nfse

import (
	"fmt"

	"github.com/notafacil/emissor-nfse/internal/domain"
	"github.com/notafacil/emissor-nfse/pkg/nfse"
)

// tamanhoMaxJustificativa limita o xMotivo do evento; excedente é truncado
// silenciosamente (comportamento aceito pelo protocolo, não é erro).
const tamanhoMaxJustificativa = 255

// EventoBuilderService monta o pedido de registro do evento de cancelamento
// referenciando a chave de acesso da NFS-e emitida.
type EventoBuilderService struct{}

// NewEventoBuilderService cria o serviço.
func NewEventoBuilderService() *EventoBuilderService {
	return &EventoBuilderService{}
}

// Build valida a chave de acesso (50 dígitos) e a justificativa (não vazia) e
// monta o documento do evento. Defaults: motivo "1", nSeqEvento "01",
// nPedRegEvento "1".
func (s *EventoBuilderService) Build(d *DadosCancelamento) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: dados do cancelamento ausentes", domain.ErrEventoInvalido)
	}

	chave := nfse.SomenteDigitos(d.ChaveAcesso)
	if len(chave) != nfse.TamanhoChaveAcesso {
		return nil, fmt.Errorf("%w: chave de acesso deve ter exatamente %d dígitos, recebido %d", domain.ErrEventoInvalido, nfse.TamanhoChaveAcesso, len(chave))
	}
	if len(d.Justificativa) < 1 {
		return nil, fmt.Errorf("%w: justificativa do cancelamento vazia", domain.ErrEventoInvalido)
	}
	if !nfse.AmbientesValidos[d.Ambiente] {
		return nil, fmt.Errorf("%w: tpAmb deve ser 1 ou 2, recebido %q", domain.ErrEventoInvalido, d.Ambiente)
	}

	docAutor := nfse.SomenteDigitos(d.DocumentoAutor)
	if len(docAutor) != 11 && len(docAutor) != 14 {
		return nil, fmt.Errorf("%w: documento do autor deve ter 11 (CPF) ou 14 (CNPJ) dígitos, recebido %d", domain.ErrEventoInvalido, len(docAutor))
	}

	motivo := d.Motivo
	if motivo == "" {
		motivo = nfse.MotivoErroEmissao
	}
	if !nfse.MotivosCancelamentoValidos[motivo] {
		return nil, fmt.Errorf("%w: cMotivo deve estar entre 1 e 4, recebido %q", domain.ErrEventoInvalido, motivo)
	}

	seq := nfse.SomenteDigitos(d.SequenciaEvento)
	if seq == "" {
		seq = "01"
	} else {
		pad, err := nfse.DigitosFixos(seq, 2, "nSeqEvento")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrEventoInvalido, err)
		}
		seq = pad
	}
	numPedido := nfse.SomenteDigitos(d.NumeroPedido)
	if numPedido == "" {
		numPedido = "1"
	}

	// Identificador: ou o atribuído pela recepção do ambiente nacional, ou o
	// derivado determinístico "PRE" + chave + tpEvento + pedido(3).
	id := d.IDExterno
	if id == "" {
		pedidoPad, err := nfse.DigitosFixos(numPedido, 3, "nPedRegEvento")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrEventoInvalido, err)
		}
		id = nfse.PrefixoIDEvento + chave + nfse.CodigoEventoCancelamento + pedidoPad
	}

	// O limite de 255 vale para o texto emitido; truncar depois da
	// sanitização, senão a expansão das entidades (& -> &amp;) estoura o
	// limite no documento.
	justificativa := truncarEscapado(nfse.SanitizarTextoXML(d.Justificativa), tamanhoMaxJustificativa)

	infPedReg := novoElemento("infPedReg").comAtributo("Id", id)
	infPedReg.
		filhoTexto("tpAmb", d.Ambiente).
		filhoTextoSe(d.VersaoAplic != "", "verAplic", nfse.SanitizarTextoXML(d.VersaoAplic)).
		filhoTexto("dhEvento", nfse.FormatarDataHoraLocal(d.DataEvento))
	if len(docAutor) == 14 {
		infPedReg.filhoTexto("CNPJAutor", docAutor)
	} else {
		infPedReg.filhoTexto("CPFAutor", docAutor)
	}
	infPedReg.filhoTexto("chNFSe", chave)
	infPedReg.filhoTexto("nSeqEvento", seq)

	evento := novoElemento("e"+nfse.CodigoEventoCancelamento).
		filhoTexto("xDesc", nfse.DescricaoEventoCancelamento).
		filhoTexto("cMotivo", motivo).
		filhoTexto("xMotivo", justificativa)
	infPedReg.filho(evento)
	infPedReg.filhoTexto("nPedRegEvento", numPedido)

	raiz := novoElemento("pedRegEvento").
		comAtributo("xmlns", NsNFSe).
		comAtributo("versao", VersaoLeiaute).
		filho(infPedReg)

	return renderDocumento(raiz), nil
}

// truncarEscapado corta texto já escapado em no máximo n runas sem partir uma
// entidade XML ao meio; um corte que cairia dentro de uma entidade recua até o
// "&" que a abre. A entidade mais longa aqui é uma referência numérica curta,
// daí a janela de retrocesso limitada.
func truncarEscapado(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	r = r[:n]
	for i, limite := len(r)-1, len(r)-9; i >= 0 && i >= limite; i-- {
		if r[i] == ';' {
			break
		}
		if r[i] == '&' {
			r = r[:i]
			break
		}
	}
	return string(r)
}
