package dto

import (
	"strings"

	"github.com/aarondl/null/v8"

	"inventory-system/internal/entities"
)

// LicenseDTO - тело создания и полного обновления лицензии.
type LicenseDTO struct {
	Produto        string      `json:"produto" validate:"required,notblank"`
	TipoLicenca    string      `json:"tipoLicenca"`
	ChaveSerial    string      `json:"chaveSerial" validate:"required,notblank"`
	DataExpiracao  null.String `json:"dataExpiracao"`
	Usuario        string      `json:"usuario" validate:"required,notblank"`
	Cargo          string      `json:"cargo"`
	Setor          string      `json:"setor"`
	Gestor         string      `json:"gestor"`
	CentroCusto    string      `json:"centroCusto"`
	ContaRazao     string      `json:"contaRazao"`
	NomeComputador string      `json:"nomeComputador"`
	NumeroChamado  string      `json:"numeroChamado"`
	Observacoes    string      `json:"observacoes"`
}

func (d LicenseDTO) License() entities.License {
	l := entities.License{
		Produto:        strings.TrimSpace(d.Produto),
		TipoLicenca:    d.TipoLicenca,
		ChaveSerial:    d.ChaveSerial,
		Usuario:        d.Usuario,
		Cargo:          d.Cargo,
		Setor:          d.Setor,
		Gestor:         d.Gestor,
		CentroCusto:    d.CentroCusto,
		ContaRazao:     d.ContaRazao,
		NomeComputador: d.NomeComputador,
		NumeroChamado:  d.NumeroChamado,
		Observacoes:    d.Observacoes,
	}
	if d.DataExpiracao.Valid && strings.TrimSpace(d.DataExpiracao.String) != "" {
		exp := strings.TrimSpace(d.DataExpiracao.String)
		l.DataExpiracao = &exp
	}
	return l
}

type SaveTotalsDTO struct {
	Totals entities.ProductTotals `json:"totals" validate:"required"`
}

type SaveProductsDTO struct {
	Products []string          `json:"products" validate:"dive,notblank"`
	Renames  map[string]string `json:"renames"`
}

type RenameProductDTO struct {
	OldName string `json:"oldName" validate:"required,notblank"`
	NewName string `json:"newName" validate:"required,notblank"`
}

type LicenseImportResultDTO struct {
	Product  string `json:"product"`
	Imported int    `json:"imported"`
	Removed  int64  `json:"removed"`
}
