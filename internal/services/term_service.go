package services

import (
	"context"
	"strings"

	"inventory-system/internal/entities"
	"inventory-system/pkg/utils"
)

// TermKind - вид термо ответственности.
type TermKind string

const (
	TermEntrega   TermKind = "entrega"
	TermDevolucao TermKind = "devolucao"
)

const notAvailable = "N/A"

const defaultEntregaTemplate = `TERMO DE RESPONSABILIDADE
Utilização de Equipamento de Propriedade da Empresa

Empresa: {{EMPRESA}}
Colaborador(a): {{USUARIO}}

Detalhes do Equipamento:
- Equipamento: {{EQUIPAMENTO}}
- Patrimônio: {{PATRIMONIO}}
- Serial: {{SERIAL}}
- Data de entrega: {{DATA_ENTREGA}}

Declaro, para todos os fins, ter recebido da empresa {{EMPRESA}} o equipamento descrito acima, em perfeitas condições de uso e funcionamento, para meu uso exclusivo no desempenho de minhas funções profissionais.

Comprometo-me a zelar pela guarda, conservação e bom uso do equipamento, utilizando-o de acordo com as políticas de segurança e normas da empresa.

________________________________________________
{{USUARIO}}

Local e Data: {{DATA}}
`

const defaultDevolucaoTemplate = `TERMO DE DEVOLUÇÃO DE EQUIPAMENTO
Devolução de Equipamento de Propriedade da Empresa

Empresa: {{EMPRESA}}
Colaborador(a): {{USUARIO}}

Detalhes do Equipamento:
- Equipamento: {{EQUIPAMENTO}}
- Patrimônio: {{PATRIMONIO}}
- Serial: {{SERIAL}}

Declaro, para todos os fins, ter devolvido à empresa {{EMPRESA}} o equipamento descrito acima, que estava sob minha responsabilidade para uso profissional.

O equipamento foi devolvido nas mesmas condições em que o recebi, ressalvado o desgaste natural pelo uso normal, na data de {{DATA_DEVOLUCAO}}.

________________________________________________
{{USUARIO}}

Local e Data: {{DATA}}
`

type TermServiceInterface interface {
	Render(ctx context.Context, kind TermKind, eq entities.Equipment) (string, error)
}

type TermService struct {
	settings SettingsServiceInterface
}

func NewTermService(settings SettingsServiceInterface) TermServiceInterface {
	return &TermService{settings: settings}
}

func (s *TermService) Render(ctx context.Context, kind TermKind, eq entities.Equipment) (string, error) {
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return "", err
	}
	return RenderTerm(templateFor(settings, kind), kind, eq, settings.CompanyName, utils.Today(timeNow())), nil
}

func templateFor(settings entities.AppSettings, kind TermKind) string {
	if kind == TermDevolucao {
		if strings.TrimSpace(settings.TermoDevolucaoTemplate) != "" {
			return settings.TermoDevolucaoTemplate
		}
		return defaultDevolucaoTemplate
	}
	if strings.TrimSpace(settings.TermoEntregaTemplate) != "" {
		return settings.TermoEntregaTemplate
	}
	return defaultEntregaTemplate
}

// RenderTerm подставляет значения в шаблон. При возврате {{USUARIO}} - предыдущий пользователь.
func RenderTerm(template string, kind TermKind, eq entities.Equipment, company, today string) string {
	collaborator := eq.UsuarioAtual
	if kind == TermDevolucao {
		collaborator = eq.UsuarioAnterior
	}

	r := strings.NewReplacer(
		"{{USUARIO}}", orNA(collaborator),
		"{{EQUIPAMENTO}}", orNA(eq.Equipamento),
		"{{SERIAL}}", orNA(eq.Serial),
		"{{PATRIMONIO}}", orNA(eq.Patrimonio),
		"{{EMPRESA}}", company,
		"{{DATA_ENTREGA}}", utils.FormatDateBR(eq.DataEntregaUsuario, notAvailable),
		"{{DATA_DEVOLUCAO}}", utils.FormatDateBR(eq.DataDevolucao, notAvailable),
		"{{DATA}}", utils.FormatDateBR(today, notAvailable),
	)
	return r.Replace(template)
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return notAvailable
	}
	return v
}
