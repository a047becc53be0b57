package consolidation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bySerial(records []Record) map[string]Record {
	out := make(map[string]Record, len(records))
	for _, r := range records {
		out[SerialKey(r["serial"])] = r
	}
	return out
}

func TestReconcile_AbsoluteUserForcesEmUso(t *testing.T) {
	base := "SERIAL,EQUIPAMENTO,STATUS\nABC123,Notebook X,Estoque"
	absolute := "NÚMERODESÉRIE,NOMEDOUSUÁRIOATUAL\nABC123,Jane Doe"

	res, err := Reconcile(base, absolute)
	require.NoError(t, err)
	require.Len(t, res.Equipment, 1)

	rec := res.Equipment[0]
	assert.Equal(t, "Notebook X", rec["equipamento"])
	assert.Equal(t, "Jane Doe", rec["usuarioAtual"])
	assert.Equal(t, "Em Uso", rec["status"])
}

func TestReconcile_AbsoluteWinsBaseRetained(t *testing.T) {
	base := "SERIAL,MARCA,MODELO,LOCAL\nS-1,Dell,Latitude,Matriz"
	absolute := "Número de Série,Marca\ns-1,Lenovo"

	res, err := Reconcile(base, absolute)
	require.NoError(t, err)
	require.Len(t, res.Equipment, 1)

	rec := res.Equipment[0]
	assert.Equal(t, "Lenovo", rec["brand"], "Absolute перекрывает базу")
	assert.Equal(t, "Latitude", rec["model"], "поле только из базы сохраняется")
	assert.Equal(t, "Matriz", rec["local"])
	assert.Equal(t, "s-1", rec["serial"])
}

func TestReconcile_LastRowWinsWithinSource(t *testing.T) {
	base := "SERIAL,EQUIPAMENTO,LOCAL\nAB 12,Primeiro,Filial\nab12,Segundo,"
	absolute := "NÚMERODESÉRIE,NOMEDODISPOSITIVO\nZZ1,Outro"

	res, err := Reconcile(base, absolute)
	require.NoError(t, err)

	got := bySerial(res.Equipment)
	require.Len(t, got, 2)
	assert.Equal(t, "Segundo", got["AB12"]["equipamento"])
	assert.Equal(t, "", got["AB12"]["local"], "в базе дубликат заменяет строку целиком")
	assert.Equal(t, "Outro", got["ZZ1"]["equipamento"])
}

func TestReconcile_ReportsSkippedRows(t *testing.T) {
	base := "SERIAL,EQUIPAMENTO\n,Sem serial\nA1,Com serial"
	absolute := "NÚMERODESÉRIE,NOMEDODISPOSITIVO\n ,x\n,y\nA1,z"

	res, err := Reconcile(base, absolute)
	require.NoError(t, err)
	assert.Equal(t, 1, res.BaseSkipped)
	assert.Equal(t, 2, res.AbsoluteSkipped)
	assert.Len(t, res.Equipment, 1)
}

func TestReconcile_RejectsShortSource(t *testing.T) {
	_, err := Reconcile("SERIAL", "NÚMERODESÉRIE\nA1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotEnoughLines)
	assert.Contains(t, err.Error(), "planilha base")
}

func TestMerge_Properties(t *testing.T) {
	var baseLines, absLines []string
	baseLines = append(baseLines, "SERIAL,EQUIPAMENTO,USUÁRIO ATUAL,STATUS")
	absLines = append(absLines, "NÚMERODESÉRIE,NOMEDOUSUÁRIOATUAL,MARCA")
	for i := 0; i < 50; i++ {
		user := ""
		if i%3 == 0 {
			user = fmt.Sprintf("user%d", i)
		}
		baseLines = append(baseLines, fmt.Sprintf("sn %d,Eq%d,%s,Estoque", i%40, i, user))
		if i%2 == 0 {
			absLines = append(absLines, fmt.Sprintf("SN%d,,Marca%d", i, i))
		}
	}

	res, err := Reconcile(strings.Join(baseLines, "\n"), strings.Join(absLines, "\n"))
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, rec := range res.Equipment {
		key := SerialKey(rec["serial"])
		assert.NotEmpty(t, key)
		assert.False(t, seen[key], "serial %s duplicated", key)
		seen[key] = true
		if strings.TrimSpace(rec["usuarioAtual"]) != "" {
			assert.Equal(t, "Em Uso", rec["status"])
		}
	}
}

func TestRecordToEquipment(t *testing.T) {
	rec := Record{"serial": "X1", "usuarioAtual": "Ana", "status": "Em Uso", "desconhecido": "?"}
	eq := rec.ToEquipment()
	assert.Equal(t, "X1", eq.Serial)
	assert.Equal(t, "Ana", eq.UsuarioAtual)
	assert.Equal(t, "Em Uso", string(eq.Status))
}
