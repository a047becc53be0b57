package consolidation

import (
	"strings"
	"unicode"
)

// ColumnMapping связывает заголовок колонки источника с полем оборудования.
type ColumnMapping struct {
	Header string
	Field  string
}

// Mapping - декларативная таблица колонок одного источника.
type Mapping []ColumnMapping

// machineColumns - общие для обоих источников поля инвентаризационного агента.
var machineColumns = Mapping{
	{"IDENTIFICADOR", "identificador"},
	{"NOME DO SO", "nomeSO"},
	{"MEMÓRIA FÍSICA TOTAL", "memoriaFisicaTotal"},
	{"GRUPO DE POLÍTICAS", "grupoPoliticas"},
	{"PAÍS", "pais"},
	{"CIDADE", "cidade"},
	{"ESTADO/PROVÍNCIA", "estadoProvincia"},
}

// BaseMapping - колонки базовой таблицы инвентаря.
var BaseMapping = append(Mapping{
	{"EQUIPAMENTO", "equipamento"},
	{"GARANTIA", "garantia"},
	{"PATRIMONIO", "patrimonio"},
	{"SERIAL", "serial"},
	{"USUÁRIO ATUAL", "usuarioAtual"},
	{"USUÁRIO ANTERIOR", "usuarioAnterior"},
	{"LOCAL", "local"},
	{"SETOR", "setor"},
	{"DATA ENTREGA O USUÁRIO", "dataEntregaUsuario"},
	{"STATUS", "status"},
	{"DATA DE DEVOLUÇÃO", "dataDevolucao"},
	{"TIPO", "tipo"},
	{"NOTA DE COMPRA", "notaCompra"},
	{"NOTA / PL K&M", "notaPlKm"},
	{"TERMO DE RESPONSABILIDADE", "termoResponsabilidade"},
	{"FOTO", "foto"},
	{"QR CODE", "qrCode"},
	{"MARCA", "brand"},
	{"MODELO", "model"},
	{"EMAIL COLABORADOR", "emailColaborador"},
}, machineColumns...)

// AbsoluteMapping - колонки выгрузки Absolute.
var AbsoluteMapping = append(Mapping{
	{"NOMEDODISPOSITIVO", "equipamento"},
	{"NÚMERODESÉRIE", "serial"},
	{"NOMEDOUSUÁRIOATUAL", "usuarioAtual"},
	{"MARCA", "brand"},
	{"MODELO", "model"},
	{"EMAIL DO COLABORADOR", "emailColaborador"},
}, machineColumns...)

// NormalizeHeader убирает пробельные символы и '/' и приводит к верхнему регистру.
func NormalizeHeader(h string) string {
	var b strings.Builder
	b.Grow(len(h))
	for _, r := range h {
		if unicode.IsSpace(r) || r == '/' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// index строит поиск по нормализованному и по исходному (верхний регистр) заголовку.
func (m Mapping) index() (normalized, raw map[string]string) {
	normalized = make(map[string]string, len(m))
	raw = make(map[string]string, len(m))
	for _, c := range m {
		normalized[NormalizeHeader(c.Header)] = c.Field
		raw[strings.ToUpper(c.Header)] = c.Field
	}
	return normalized, raw
}

// Resolve возвращает поле для заголовка колонки.
func (m Mapping) Resolve(header string) (string, bool) {
	normalized, raw := m.index()
	return resolve(normalized, raw, header)
}

func resolve(normalized, raw map[string]string, header string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(header))
	if f, ok := normalized[NormalizeHeader(upper)]; ok {
		return f, true
	}
	f, ok := raw[upper]
	return f, ok
}
