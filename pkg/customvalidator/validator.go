// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"reflect"
	"strings"

	"inventory-system/internal/entities"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations регистрирует доменные правила в переданном валидаторе.
func RegisterCustomValidations(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"equipment_status": isEquipmentStatus,
		"termo_condition":  isTermCondition,
		"approval_status":  isApprovalStatus,
		"user_role":        isUserRole,
		"notblank":         isNotBlank,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	v.RegisterCustomTypeFunc(nullStringValue, null.String{})
	return nil
}

// nullStringValue позволяет применять обычные теги к null.String: null проверяется как отсутствующее значение.
func nullStringValue(field reflect.Value) interface{} {
	if s, ok := field.Interface().(null.String); ok && s.Valid {
		return s.String
	}
	return nil
}

// Пустые значения пропускаются: обязательность задаётся тегом required.

func isEquipmentStatus(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || entities.EquipmentStatus(s).Valid()
}

func isTermCondition(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || entities.TermCondition(s).Valid()
}

func isApprovalStatus(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || entities.ApprovalStatus(s).Valid()
}

func isUserRole(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || entities.UserRole(s).Valid()
}

func isNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
