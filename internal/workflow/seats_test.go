package workflow

import (
	"testing"

	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lic(product string, status entities.ApprovalStatus) entities.License {
	return entities.License{Produto: product, ApprovalStatus: status}
}

func TestComputeSeats(t *testing.T) {
	licenses := []entities.License{
		lic("Office", entities.ApprovalApproved),
		lic("Office", entities.ApprovalPending),
		lic("Office", entities.ApprovalRejected),
		lic("Visio", entities.ApprovalApproved),
	}
	totals := entities.ProductTotals{"Office": 10, "Project": 3}

	got := ComputeSeats(licenses, totals)

	assert.Equal(t, []SeatUsage{
		{Product: "Office", Total: 10, Used: 2, Available: 8},
		{Product: "Project", Total: 3, Used: 0, Available: 3},
		{Product: "Visio", Total: 0, Used: 1, Available: -1},
	}, got)

	for _, s := range got {
		assert.Equal(t, s.Total-s.Used, s.Available)
	}
}

func TestComputeSeats_RejectDoesNotCount(t *testing.T) {
	l := lic("Office", entities.ApprovalPending)
	before := ComputeSeats([]entities.License{l}, entities.ProductTotals{"Office": 1})
	l.ApprovalStatus = entities.ApprovalRejected
	after := ComputeSeats([]entities.License{l}, entities.ProductTotals{"Office": 1})

	assert.Equal(t, 1, before[0].Used)
	assert.Equal(t, 0, after[0].Used)
	assert.Equal(t, 1, after[0].Available)
}

func TestRenameTotals(t *testing.T) {
	totals := entities.ProductTotals{"Office 365": 25, "Visio": 2}

	got := RenameTotals(totals, "Office 365", "Microsoft 365")

	assert.Equal(t, entities.ProductTotals{"Microsoft 365": 25, "Visio": 2}, got)
	assert.Contains(t, totals, "Office 365", "исходная карта не меняется")
}

func TestPlanProducts_RenameCarriesTotal(t *testing.T) {
	totals := entities.ProductTotals{"Office 365": 25, "Visio": 2}
	current := []string{"Office 365", "Visio"}

	got, err := PlanProducts(current, totals,
		[]string{"Microsoft 365", "Visio", "Project"},
		map[string]string{"Office 365": "Microsoft 365"},
		map[string]int{"Office 365": 3},
	)
	require.NoError(t, err)
	assert.Equal(t, entities.ProductTotals{"Microsoft 365": 25, "Visio": 2, "Project": 0}, got)
}

func TestPlanProducts_BlocksRemovalWithLicenses(t *testing.T) {
	current := []string{"Office", "Visio", "Project"}

	_, err := PlanProducts(current, entities.ProductTotals{"Office": 1}, []string{"Office"}, nil,
		map[string]int{"Visio": 2, "Project": 0})
	require.Error(t, err)

	var inputErr *apperrors.InvalidInputError
	require.ErrorAs(t, err, &inputErr)
	assert.Contains(t, err.Error(), `"Visio"`)
	assert.NotContains(t, err.Error(), `"Project"`)
}

func TestPlanProducts_Validation(t *testing.T) {
	_, err := PlanProducts(nil, nil, []string{"Office", "office"}, nil, nil)
	assert.Error(t, err)

	_, err = PlanProducts(nil, nil, []string{" "}, nil, nil)
	assert.Error(t, err)

	_, err = PlanProducts([]string{"A"}, nil, []string{"B"}, map[string]string{"X": "B"}, nil)
	assert.Error(t, err)

	_, err = PlanProducts([]string{"A"}, nil, []string{"A"}, map[string]string{"A": "C"}, nil)
	assert.Error(t, err)
}

func TestManagedProducts(t *testing.T) {
	got := ManagedProducts(entities.ProductTotals{"B": 1, "A": 0}, []string{"C", "A", ""})
	assert.Equal(t, []string{"A", "B", "C"}, got)
}
