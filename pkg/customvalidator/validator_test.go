package customvalidator

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Status   string `validate:"omitempty,equipment_status"`
	Termo    string `validate:"omitempty,termo_condition"`
	Approval string `validate:"omitempty,approval_status"`
	Role     string `validate:"omitempty,user_role"`
	Name     string `validate:"notblank"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	require.NoError(t, RegisterCustomValidations(v))
	return v
}

func TestRules_Accept(t *testing.T) {
	v := newValidator(t)
	err := v.Struct(sample{
		Status:   "Manutenção",
		Termo:    "Assinado - Devolução",
		Approval: "pending_approval",
		Role:     "User Manager",
		Name:     "Notebook",
	})
	assert.NoError(t, err)
}

func TestRules_Reject(t *testing.T) {
	v := newValidator(t)
	tests := map[string]sample{
		"status":   {Status: "Quebrado", Name: "x"},
		"termo":    {Termo: "Assinado", Name: "x"},
		"approval": {Approval: "approved_by_ai", Name: "x"},
		"role":     {Role: "Root", Name: "x"},
		"blank":    {Name: "   "},
	}
	for name, s := range tests {
		t.Run(name, func(t *testing.T) {
			err := v.Struct(s)
			require.Error(t, err)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Len(t, verrs, 1)
		})
	}
}

type patch struct {
	Status null.String `validate:"omitempty,equipment_status"`
	Email  null.String `validate:"omitempty,email"`
}

func TestRules_NullString(t *testing.T) {
	v := newValidator(t)
	assert.NoError(t, v.Struct(patch{}))
	assert.NoError(t, v.Struct(patch{Status: null.StringFrom("Estoque"), Email: null.StringFrom("a@b.com")}))
	assert.Error(t, v.Struct(patch{Status: null.StringFrom("Quebrado")}))
	assert.Error(t, v.Struct(patch{Email: null.StringFrom("not-an-email")}))
}
