package fiscal

import (
	"fmt"
	"time"

	"github.com/notafacil/emissor-nfse/internal/domain"
	"github.com/notafacil/emissor-nfse/internal/domain/entity"
	infranfse "github.com/notafacil/emissor-nfse/internal/infrastructure/nfse"
)

// primeiroCodigo percorre os candidatos na ordem de precedência e devolve o
// primeiro não vazio. Mantém a cadeia de resolução visível e testável em vez
// de condicionais encadeados.
func primeiroCodigo(candidatos ...string) string {
	for _, c := range candidatos {
		if c != "" {
			return c
		}
	}
	return ""
}

// montarDadosDPS traduz o snapshot de negócio na entrada da montagem da DPS.
//
// Precedência do código de tributação nacional: código tipado no cadastro do
// prestador > classificação de serviço padrão do prestador > classificação do
// próprio item. Retenção, imunidade e percentuais vêm da configuração do
// prestador. A competência usa os campos de calendário locais da data de
// emissão do registro (sem conversão UTC).
func montarDadosDPS(
	nota *entity.NotaServico,
	prestador *entity.Prestador,
	tomador *entity.Tomador,
	itens []*entity.ItemServico,
	ambiente, versaoAplic string,
	agora time.Time,
) (*infranfse.DadosDPS, error) {
	if len(itens) == 0 {
		return nil, fmt.Errorf("%w: nota sem itens de serviço", domain.ErrEntradaInvalida)
	}
	// O leiaute da DPS carrega um único bloco de serviço; o primeiro item da
	// nota é o serviço declarado.
	item := itens[0]

	serie := nota.Serie
	if serie == "" {
		serie = prestador.SerieDPS
	}

	return &infranfse.DadosDPS{
		Ambiente:    ambiente,
		VersaoAplic: versaoAplic,
		Serie:       serie,
		Numero:      fmt.Sprintf("%d", nota.Numero),
		Competencia: nota.DataEmissao,
		DataEmissao: agora,

		Prestador: &infranfse.DadosPrestador{
			CNPJ:               prestador.CNPJ,
			InscricaoMunicipal: prestador.InscricaoMunicipal,
			RazaoSocial:        prestador.RazaoSocial,
			CodigoMunicipio:    prestador.CodigoMunicipio,
			UF:                 prestador.UF,
			CEP:                prestador.CEP,
			Logradouro:         prestador.Logradouro,
			Numero:             prestador.Numero,
			Bairro:             prestador.Bairro,
			OpSimpNac:          prestador.OpSimpNac,
			RegEspTrib:         prestador.RegEspTrib,
		},
		Tomador: &infranfse.DadosTomador{
			Documento:       tomador.Documento,
			RazaoSocial:     tomador.RazaoSocial,
			Telefone:        tomador.Telefone,
			Email:           tomador.Email,
			CodigoMunicipio: tomador.CodigoMunicipio,
			CEP:             tomador.CEP,
			Logradouro:      tomador.Logradouro,
			Numero:          tomador.Numero,
			Complemento:     tomador.Complemento,
			Bairro:          tomador.Bairro,
		},
		Servico: &infranfse.DadosServico{
			CodigoTribNacional: primeiroCodigo(
				prestador.CodigoTribNacional,
				prestador.CodigoServicoPadrao,
				item.CodigoTribNacional,
			),
			CodigoTribMunicipal: item.CodigoTribMunicipal,
			Descricao:           item.Descricao,
			Valor:               item.Valor,
			Aliquota:            item.Aliquota,
		},
		Tributacao: &infranfse.DadosTributacao{
			TribISSQN:   prestador.TribISSQNPadrao,
			TpImunidade: prestador.TpImunidade,
			TpRetISSQN:  prestador.TpRetISSQNPadrao,
			PTotTribFed: prestador.PTotTribFed,
			PTotTribEst: prestador.PTotTribEst,
			PTotTribMun: prestador.PTotTribMun,
		},

		CodigoMunicipioPrestacao: nota.CodigoMunicipioPrestacao,
		InfoComplementar:         nota.InfoComplementar,
		NumeroReferencia:         nota.NumeroReferencia,
	}, nil
}
