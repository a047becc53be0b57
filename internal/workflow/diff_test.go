package workflow

import (
	"testing"

	"inventory-system/internal/entities"

	"github.com/stretchr/testify/assert"
)

func TestDiff_OnlyPresentFields(t *testing.T) {
	eq := &entities.Equipment{ID: 1, Serial: "A", Brand: "Dell", Model: "E5470", QRCode: "old"}

	changes := Diff(eq, map[string]string{
		"serial": "A",
		"brand":  "HP",
		"id":     "99",
		"qrCode": "new",
	})

	assert.Equal(t, []FieldChange{{Field: "brand", From: "Dell", To: "HP"}}, changes)
}

func TestDiff_Idempotent(t *testing.T) {
	eq := &entities.Equipment{Serial: "A", Brand: "Dell"}
	incoming := map[string]string{"serial": "A", "brand": "HP"}

	changes := Diff(eq, incoming)
	Apply(eq, changes)

	assert.Empty(t, Diff(eq, incoming), "повторное применение не даёт изменений")
	assert.Equal(t, "HP", eq.Brand)
}

func TestDiff_EmptyVersusMissing(t *testing.T) {
	eq := &entities.Equipment{Serial: "A", Local: "Matriz"}

	changes := Diff(eq, map[string]string{"local": ""})
	assert.Equal(t, []FieldChange{{Field: "local", From: "Matriz", To: ""}}, changes)
}
