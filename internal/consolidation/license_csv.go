package consolidation

import (
	"errors"
	"fmt"
	"strings"

	"inventory-system/internal/entities"
)

var (
	ErrLicenseHeader        = errors.New("cabeçalho do CSV inválido. Certifique-se que o delimitador é ponto e vírgula (;) e que as colunas esperadas estão presentes")
	ErrLicenseProductColumn = errors.New("a coluna 'produto' é obrigatória no arquivo CSV")
)

// LineError - ошибка конкретной строки файла (нумерация с единицы, заголовок - строка 1).
type LineError struct {
	Line int
	Msg  string
}

func (e *LineError) Error() string { return fmt.Sprintf("Erro na linha %d: %s", e.Line, e.Msg) }

// licenseColumns - колонки CSV лицензий в нижнем регистре без пробелов.
var licenseColumns = []ColumnMapping{
	{"produto", "produto"},
	{"tipolicenca", "tipoLicenca"},
	{"chaveserial", "chaveSerial"},
	{"dataexpiracao", "dataExpiracao"},
	{"usuario", "usuario"},
	{"cargo", "cargo"},
	{"setor", "setor"},
	{"gestor", "gestor"},
	{"centrocusto", "centroCusto"},
	{"contarazao", "contaRazao"},
	{"nomecomputador", "nomeComputador"},
	{"numerochamado", "numeroChamado"},
}

func licenseField(header string) (string, bool) {
	key := strings.Join(strings.Fields(strings.ToLower(header)), "")
	for _, c := range licenseColumns {
		if c.Header == key {
			return c.Field, true
		}
	}
	return "", false
}

// ParseLicenses разбирает CSV лицензий (разделитель ';') для выбранного продукта.
// Любая строка с другим продуктом или без chaveSerial/usuario отклоняет весь файл.
func ParseLicenses(text, product string) ([]entities.License, error) {
	lines := SplitLines(text)
	if len(lines) < 2 {
		return nil, ErrNotEnoughLines
	}

	headerLine := strings.TrimPrefix(lines[0], "\uFEFF")
	rawHeader := strings.Split(headerLine, ";")
	fields := make([]string, len(rawHeader))
	known := false
	for i, h := range rawHeader {
		if f, ok := licenseField(h); ok {
			fields[i] = f
			known = true
		}
	}
	if !known {
		return nil, ErrLicenseHeader
	}

	var out []entities.License
	for rowIndex, row := range lines[1:] {
		if strings.TrimSpace(row) == "" {
			continue
		}
		lineNo := rowIndex + 2
		values := strings.Split(row, ";")
		rec := make(map[string]string)
		for i, f := range fields {
			if f == "" || i >= len(values) {
				continue
			}
			rec[f] = strings.TrimSpace(values[i])
		}

		produto, ok := rec["produto"]
		if !ok {
			return nil, ErrLicenseProductColumn
		}
		if !strings.EqualFold(produto, product) {
			return nil, &LineError{Line: lineNo, Msg: fmt.Sprintf("o produto %q no arquivo não corresponde ao produto selecionado %q", produto, product)}
		}
		if rec["chaveSerial"] == "" || rec["usuario"] == "" {
			return nil, &LineError{Line: lineNo, Msg: "'chaveSerial' e 'usuario' são campos obrigatórios"}
		}

		lic := entities.License{
			Produto:        product,
			TipoLicenca:    rec["tipoLicenca"],
			ChaveSerial:    rec["chaveSerial"],
			Usuario:        rec["usuario"],
			Cargo:          rec["cargo"],
			Setor:          rec["setor"],
			Gestor:         rec["gestor"],
			CentroCusto:    rec["centroCusto"],
			ContaRazao:     rec["contaRazao"],
			NomeComputador: rec["nomeComputador"],
			NumeroChamado:  rec["numeroChamado"],
		}
		if exp := rec["dataExpiracao"]; exp != "" {
			lic.DataExpiracao = &exp
		}
		out = append(out, lic)
	}
	return out, nil
}
