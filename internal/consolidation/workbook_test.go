package consolidation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseFile_Workbook(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Nome do Dispositivo", "Número de Série", "Nome do Usuário Atual"},
		{"NB-01", "SN1", "Carla"},
		{"NB-02", "", ""},
	})

	res, err := ParseFile("absolute.xlsx", data, AbsoluteMapping)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, "NB-01", res.Records[0]["equipamento"])
	assert.Equal(t, "Carla", res.Records[0]["usuarioAtual"])
}

func TestReconcileFiles_MixedSources(t *testing.T) {
	abs := buildWorkbook(t, [][]interface{}{
		{"NÚMERODESÉRIE", "MARCA"},
		{"SN1", "HP"},
	})

	res, err := ReconcileFiles("base.csv", []byte("SERIAL,MARCA,LOCAL\nSN1,Dell,Matriz"), "abs.xlsx", abs)
	require.NoError(t, err)
	require.Len(t, res.Equipment, 1)
	assert.Equal(t, "HP", res.Equipment[0]["brand"])
	assert.Equal(t, "Matriz", res.Equipment[0]["local"])
}

func TestParseFile_WorkbookTooShort(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{{"SERIAL"}})
	_, err := ParseFile("base.xlsx", data, BaseMapping)
	assert.ErrorIs(t, err, ErrNotEnoughLines)
}
