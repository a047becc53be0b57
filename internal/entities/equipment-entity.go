// Файл: internal/entities/equipment-entity.go
package entities

import (
	"encoding/json"
	"fmt"

	"inventory-system/pkg/types"
)

type Equipment struct {
	ID                    uint64          `json:"id" db:"id"`
	Equipamento           string          `json:"equipamento" db:"equipamento"`
	Garantia              string          `json:"garantia" db:"garantia"`
	Patrimonio            string          `json:"patrimonio" db:"patrimonio"`
	Serial                string          `json:"serial" db:"serial"`
	UsuarioAtual          string          `json:"usuarioAtual" db:"usuario_atual"`
	UsuarioAnterior       string          `json:"usuarioAnterior" db:"usuario_anterior"`
	Local                 string          `json:"local" db:"local"`
	Setor                 string          `json:"setor" db:"setor"`
	DataEntregaUsuario    string          `json:"dataEntregaUsuario" db:"data_entrega_usuario"`
	Status                EquipmentStatus `json:"status" db:"status"`
	DataDevolucao         string          `json:"dataDevolucao" db:"data_devolucao"`
	Tipo                  string          `json:"tipo" db:"tipo"`
	NotaCompra            string          `json:"notaCompra" db:"nota_compra"`
	NotaPlKm              string          `json:"notaPlKm" db:"nota_pl_km"`
	TermoResponsabilidade string          `json:"termoResponsabilidade" db:"termo_responsabilidade"`
	Foto                  string          `json:"foto" db:"foto"`
	QRCode                string          `json:"qrCode" db:"qr_code"`
	Brand                 string          `json:"brand" db:"brand"`
	Model                 string          `json:"model" db:"model"`
	EmailColaborador      string          `json:"emailColaborador" db:"email_colaborador"`
	Identificador         string          `json:"identificador" db:"identificador"`
	NomeSO                string          `json:"nomeSO" db:"nome_so"`
	MemoriaFisicaTotal    string          `json:"memoriaFisicaTotal" db:"memoria_fisica_total"`
	GrupoPoliticas        string          `json:"grupoPoliticas" db:"grupo_politicas"`
	Pais                  string          `json:"pais" db:"pais"`
	Cidade                string          `json:"cidade" db:"cidade"`
	EstadoProvincia       string          `json:"estadoProvincia" db:"estado_provincia"`
	CondicaoTermo         TermCondition   `json:"condicaoTermo" db:"condicao_termo"`
	Observacoes           string          `json:"observacoes" db:"observacoes"`

	ApprovalStatus  ApprovalStatus `json:"approval_status" db:"approval_status"`
	RejectionReason *string        `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedByID     *uint64        `json:"created_by_id,omitempty" db:"created_by_id"`

	types.BaseEntity
}

// equipmentField связывает имя поля API, колонку БД и доступ к значению.
type equipmentField struct {
	name   string
	column string
	get    func(e *Equipment) string
	set    func(e *Equipment, v string)
}

// Порядок совпадает с порядком колонок в equipmentColumns репозитория.
var equipmentFields = []equipmentField{
	{"equipamento", "equipamento", func(e *Equipment) string { return e.Equipamento }, func(e *Equipment, v string) { e.Equipamento = v }},
	{"garantia", "garantia", func(e *Equipment) string { return e.Garantia }, func(e *Equipment, v string) { e.Garantia = v }},
	{"patrimonio", "patrimonio", func(e *Equipment) string { return e.Patrimonio }, func(e *Equipment, v string) { e.Patrimonio = v }},
	{"serial", "serial", func(e *Equipment) string { return e.Serial }, func(e *Equipment, v string) { e.Serial = v }},
	{"usuarioAtual", "usuario_atual", func(e *Equipment) string { return e.UsuarioAtual }, func(e *Equipment, v string) { e.UsuarioAtual = v }},
	{"usuarioAnterior", "usuario_anterior", func(e *Equipment) string { return e.UsuarioAnterior }, func(e *Equipment, v string) { e.UsuarioAnterior = v }},
	{"local", "local", func(e *Equipment) string { return e.Local }, func(e *Equipment, v string) { e.Local = v }},
	{"setor", "setor", func(e *Equipment) string { return e.Setor }, func(e *Equipment, v string) { e.Setor = v }},
	{"dataEntregaUsuario", "data_entrega_usuario", func(e *Equipment) string { return e.DataEntregaUsuario }, func(e *Equipment, v string) { e.DataEntregaUsuario = v }},
	{"status", "status", func(e *Equipment) string { return string(e.Status) }, func(e *Equipment, v string) { e.Status = EquipmentStatus(v) }},
	{"dataDevolucao", "data_devolucao", func(e *Equipment) string { return e.DataDevolucao }, func(e *Equipment, v string) { e.DataDevolucao = v }},
	{"tipo", "tipo", func(e *Equipment) string { return e.Tipo }, func(e *Equipment, v string) { e.Tipo = v }},
	{"notaCompra", "nota_compra", func(e *Equipment) string { return e.NotaCompra }, func(e *Equipment, v string) { e.NotaCompra = v }},
	{"notaPlKm", "nota_pl_km", func(e *Equipment) string { return e.NotaPlKm }, func(e *Equipment, v string) { e.NotaPlKm = v }},
	{"termoResponsabilidade", "termo_responsabilidade", func(e *Equipment) string { return e.TermoResponsabilidade }, func(e *Equipment, v string) { e.TermoResponsabilidade = v }},
	{"foto", "foto", func(e *Equipment) string { return e.Foto }, func(e *Equipment, v string) { e.Foto = v }},
	{"qrCode", "qr_code", func(e *Equipment) string { return e.QRCode }, func(e *Equipment, v string) { e.QRCode = v }},
	{"brand", "brand", func(e *Equipment) string { return e.Brand }, func(e *Equipment, v string) { e.Brand = v }},
	{"model", "model", func(e *Equipment) string { return e.Model }, func(e *Equipment, v string) { e.Model = v }},
	{"emailColaborador", "email_colaborador", func(e *Equipment) string { return e.EmailColaborador }, func(e *Equipment, v string) { e.EmailColaborador = v }},
	{"identificador", "identificador", func(e *Equipment) string { return e.Identificador }, func(e *Equipment, v string) { e.Identificador = v }},
	{"nomeSO", "nome_so", func(e *Equipment) string { return e.NomeSO }, func(e *Equipment, v string) { e.NomeSO = v }},
	{"memoriaFisicaTotal", "memoria_fisica_total", func(e *Equipment) string { return e.MemoriaFisicaTotal }, func(e *Equipment, v string) { e.MemoriaFisicaTotal = v }},
	{"grupoPoliticas", "grupo_politicas", func(e *Equipment) string { return e.GrupoPoliticas }, func(e *Equipment, v string) { e.GrupoPoliticas = v }},
	{"pais", "pais", func(e *Equipment) string { return e.Pais }, func(e *Equipment, v string) { e.Pais = v }},
	{"cidade", "cidade", func(e *Equipment) string { return e.Cidade }, func(e *Equipment, v string) { e.Cidade = v }},
	{"estadoProvincia", "estado_provincia", func(e *Equipment) string { return e.EstadoProvincia }, func(e *Equipment, v string) { e.EstadoProvincia = v }},
	{"condicaoTermo", "condicao_termo", func(e *Equipment) string { return string(e.CondicaoTermo) }, func(e *Equipment, v string) { e.CondicaoTermo = TermCondition(v) }},
	{"observacoes", "observacoes", func(e *Equipment) string { return e.Observacoes }, func(e *Equipment, v string) { e.Observacoes = v }},
}

var equipmentFieldIndex = func() map[string]int {
	idx := make(map[string]int, len(equipmentFields))
	for i, f := range equipmentFields {
		idx[f.name] = i
	}
	return idx
}()

// EquipmentFieldNames - отслеживаемые (редактируемые) поля в фиксированном порядке.
func EquipmentFieldNames() []string {
	names := make([]string, len(equipmentFields))
	for i, f := range equipmentFields {
		names[i] = f.name
	}
	return names
}

// EquipmentColumn возвращает колонку БД для поля API.
func EquipmentColumn(field string) (string, bool) {
	i, ok := equipmentFieldIndex[field]
	if !ok {
		return "", false
	}
	return equipmentFields[i].column, true
}

func (e *Equipment) Get(field string) (string, bool) {
	i, ok := equipmentFieldIndex[field]
	if !ok {
		return "", false
	}
	return equipmentFields[i].get(e), true
}

// Set записывает значение поля; false для неизвестного поля.
func (e *Equipment) Set(field, value string) bool {
	i, ok := equipmentFieldIndex[field]
	if !ok {
		return false
	}
	equipmentFields[i].set(e, value)
	return true
}

// Values - снимок всех отслеживаемых полей.
func (e *Equipment) Values() map[string]string {
	out := make(map[string]string, len(equipmentFields))
	for _, f := range equipmentFields {
		out[f.name] = f.get(e)
	}
	return out
}

// BuildQRCode формирует полезную нагрузку QR-кода: {"id":..,"serial":"..","type":"equipment"}.
func BuildQRCode(id uint64, serial string) string {
	payload, err := json.Marshal(struct {
		ID     uint64 `json:"id"`
		Serial string `json:"serial"`
		Type   string `json:"type"`
	}{id, serial, string(ItemEquipment)})
	if err != nil {
		return fmt.Sprintf(`{"id":%d,"serial":%q,"type":"equipment"}`, id, serial)
	}
	return string(payload)
}

// DisplayName - подпись записи в очереди одобрения.
func (e *Equipment) DisplayName() string {
	if e.Equipamento == "" {
		return e.Serial
	}
	return fmt.Sprintf("%s (%s)", e.Equipamento, e.Serial)
}
