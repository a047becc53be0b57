package dto

import (
	"github.com/aarondl/null/v8"

	"inventory-system/internal/entities"
)

// EquipmentFieldsDTO - редактируемые поля оборудования, кроме serial.
// Поле считается переданным, если оно присутствует в JSON и не равно null.
type EquipmentFieldsDTO struct {
	Equipamento           null.String `json:"equipamento"`
	Garantia              null.String `json:"garantia"`
	Patrimonio            null.String `json:"patrimonio"`
	UsuarioAtual          null.String `json:"usuarioAtual"`
	UsuarioAnterior       null.String `json:"usuarioAnterior"`
	Local                 null.String `json:"local"`
	Setor                 null.String `json:"setor"`
	DataEntregaUsuario    null.String `json:"dataEntregaUsuario"`
	Status                null.String `json:"status" validate:"omitempty,equipment_status"`
	DataDevolucao         null.String `json:"dataDevolucao"`
	Tipo                  null.String `json:"tipo"`
	NotaCompra            null.String `json:"notaCompra"`
	NotaPlKm              null.String `json:"notaPlKm"`
	TermoResponsabilidade null.String `json:"termoResponsabilidade"`
	Foto                  null.String `json:"foto"`
	Brand                 null.String `json:"brand"`
	Model                 null.String `json:"model"`
	EmailColaborador      null.String `json:"emailColaborador" validate:"omitempty,email"`
	Identificador         null.String `json:"identificador"`
	NomeSO                null.String `json:"nomeSO"`
	MemoriaFisicaTotal    null.String `json:"memoriaFisicaTotal"`
	GrupoPoliticas        null.String `json:"grupoPoliticas"`
	Pais                  null.String `json:"pais"`
	Cidade                null.String `json:"cidade"`
	EstadoProvincia       null.String `json:"estadoProvincia"`
	CondicaoTermo         null.String `json:"condicaoTermo" validate:"omitempty,termo_condition"`
	Observacoes           null.String `json:"observacoes"`
}

// Changes - переданные поля с ключами в виде имён полей API.
func (d EquipmentFieldsDTO) Changes() map[string]string {
	all := map[string]null.String{
		"equipamento":           d.Equipamento,
		"garantia":              d.Garantia,
		"patrimonio":            d.Patrimonio,
		"usuarioAtual":          d.UsuarioAtual,
		"usuarioAnterior":       d.UsuarioAnterior,
		"local":                 d.Local,
		"setor":                 d.Setor,
		"dataEntregaUsuario":    d.DataEntregaUsuario,
		"status":                d.Status,
		"dataDevolucao":         d.DataDevolucao,
		"tipo":                  d.Tipo,
		"notaCompra":            d.NotaCompra,
		"notaPlKm":              d.NotaPlKm,
		"termoResponsabilidade": d.TermoResponsabilidade,
		"foto":                  d.Foto,
		"brand":                 d.Brand,
		"model":                 d.Model,
		"emailColaborador":      d.EmailColaborador,
		"identificador":         d.Identificador,
		"nomeSO":                d.NomeSO,
		"memoriaFisicaTotal":    d.MemoriaFisicaTotal,
		"grupoPoliticas":        d.GrupoPoliticas,
		"pais":                  d.Pais,
		"cidade":                d.Cidade,
		"estadoProvincia":       d.EstadoProvincia,
		"condicaoTermo":         d.CondicaoTermo,
		"observacoes":           d.Observacoes,
	}
	out := make(map[string]string)
	for field, v := range all {
		if v.Valid {
			out[field] = v.String
		}
	}
	return out
}

type CreateEquipmentDTO struct {
	Serial string `json:"serial" validate:"required,notblank"`
	EquipmentFieldsDTO
}

// Equipment строит запись из переданных полей. Пустой статус - Estoque, пустое условие термо - N/A.
func (d CreateEquipmentDTO) Equipment() entities.Equipment {
	var e entities.Equipment
	for field, value := range d.Changes() {
		e.Set(field, value)
	}
	e.Serial = d.Serial
	if e.Status == "" {
		e.Status = entities.StatusEstoque
	}
	if e.CondicaoTermo == "" {
		e.CondicaoTermo = entities.TermNA
	}
	return e
}

type UpdateEquipmentDTO struct {
	Serial null.String `json:"serial" validate:"omitempty,notblank"`
	EquipmentFieldsDTO
}

func (d UpdateEquipmentDTO) Changes() map[string]string {
	out := d.EquipmentFieldsDTO.Changes()
	if d.Serial.Valid {
		out["serial"] = d.Serial.String
	}
	return out
}

type DeliverEquipmentDTO struct {
	Recipient string `json:"recipient" validate:"required,notblank"`
	Email     string `json:"email" validate:"omitempty,email"`
}

// LifecycleResultDTO - результат выдачи или возврата: обновлённая запись и текст термо.
type LifecycleResultDTO struct {
	Equipment entities.Equipment `json:"equipment"`
	Term      string             `json:"term"`
}

type ConsolidationPreviewDTO struct {
	Equipment       []entities.Equipment `json:"equipment"`
	BaseSkipped     int                  `json:"baseSkipped"`
	AbsoluteSkipped int                  `json:"absoluteSkipped"`
}

type ConsolidationSaveDTO struct {
	Equipment []map[string]string `json:"equipment" validate:"required,min=1"`
	Confirm   bool                `json:"confirm"`
}

type PeriodicPreviewDTO struct {
	Records []map[string]string `json:"records"`
	Skipped int                 `json:"skipped"`
}

type PeriodicUpdateDTO struct {
	Records []map[string]string `json:"records" validate:"required"`
}

type PeriodicUpdateResultDTO struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Skipped   int    `json:"skipped"`
}
