package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"inventory-system/internal/entities"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// writeWorkbook собирает книгу с одним листом: жирная шапка и строки данных.
func writeWorkbook(sheet string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("ошибка переименования листа: %w", err)
	}
	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return nil, fmt.Errorf("ошибка записи шапки: %w", err)
	}
	if len(headers) > 0 {
		lastCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err == nil {
			_ = f.SetCellStyle(sheet, "A1", lastCell, style)
		}
	}

	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return nil, fmt.Errorf("ошибка записи строки %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("ошибка формирования XLSX: %w", err)
	}
	return buf.Bytes(), nil
}

func equipmentWorkbook(list []entities.Equipment) ([]byte, error) {
	fields := entities.EquipmentFieldNames()
	headers := append([]string{"id"}, fields...)
	headers = append(headers, "approval_status")

	rows := make([][]interface{}, 0, len(list))
	for i := range list {
		row := make([]interface{}, 0, len(headers))
		row = append(row, list[i].ID)
		for _, field := range fields {
			v, _ := list[i].Get(field)
			row = append(row, v)
		}
		row = append(row, string(list[i].ApprovalStatus))
		rows = append(rows, row)
	}
	return writeWorkbook("Inventário", headers, rows)
}

var licenseHeaders = []string{
	"id", "produto", "tipoLicenca", "chaveSerial", "dataExpiracao", "usuario", "cargo", "setor",
	"gestor", "centroCusto", "contaRazao", "nomeComputador", "numeroChamado", "observacoes", "approval_status",
}

func licenseWorkbook(list []entities.License) ([]byte, error) {
	rows := make([][]interface{}, 0, len(list))
	for _, l := range list {
		exp := ""
		if l.DataExpiracao != nil {
			exp = *l.DataExpiracao
		}
		rows = append(rows, []interface{}{
			l.ID, l.Produto, l.TipoLicenca, l.ChaveSerial, exp, l.Usuario, l.Cargo, l.Setor,
			l.Gestor, l.CentroCusto, l.ContaRazao, l.NomeComputador, l.NumeroChamado, l.Observacoes,
			string(l.ApprovalStatus),
		})
	}
	return writeWorkbook("Licenças", licenseHeaders, rows)
}
