package entities

import (
	"fmt"
	"sort"
	"time"
)

// ProductTotals - настроенное администратором число мест по продукту.
type ProductTotals map[string]int

// Validate отклоняет пустые имена продуктов и отрицательные значения.
func (t ProductTotals) Validate() error {
	for product, total := range t {
		if product == "" {
			return fmt.Errorf("пустое имя продукта в license_totals")
		}
		if total < 0 {
			return fmt.Errorf("отрицательное количество лицензий для продукта %q: %d", product, total)
		}
	}
	return nil
}

// Products - имена продуктов в алфавитном порядке.
func (t ProductTotals) Products() []string {
	out := make([]string, 0, len(t))
	for p := range t {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (t ProductTotals) Clone() ProductTotals {
	out := make(ProductTotals, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

type SMTPSettings struct {
	Server   string `json:"smtpServer"`
	Port     int    `json:"smtpPort"`
	User     string `json:"smtpUser"`
	Password string `json:"smtpPass,omitempty"`
	Secure   bool   `json:"smtpSecure"`
}

type SSOSettings struct {
	Enabled     bool   `json:"isSsoEnabled"`
	URL         string `json:"ssoUrl"`
	EntityID    string `json:"ssoEntityId"`
	Certificate string `json:"ssoCertificate"`
}

// Configured - SSO включён и задан адрес IdP.
func (s SSOSettings) Configured() bool { return s.Enabled && s.URL != "" }

// AppSettings - типизированное представление таблицы app_config.
type AppSettings struct {
	CompanyName                 string        `json:"companyName"`
	SSO                         SSOSettings   `json:"sso"`
	Is2FAEnabled                bool          `json:"is2faEnabled"`
	Require2FA                  bool          `json:"require2fa"`
	SMTP                        SMTPSettings  `json:"smtp"`
	TermoEntregaTemplate        string        `json:"termo_entrega_template"`
	TermoDevolucaoTemplate      string        `json:"termo_devolucao_template"`
	HasInitialConsolidationRun  bool          `json:"hasInitialConsolidationRun"`
	LastAbsoluteUpdateTimestamp *time.Time    `json:"lastAbsoluteUpdateTimestamp"`
	LicenseTotals               ProductTotals `json:"license_totals"`
}

func DefaultSettings() AppSettings {
	return AppSettings{
		CompanyName:   "Inventário Pro",
		LicenseTotals: ProductTotals{},
	}
}

func (s AppSettings) Validate() error {
	if s.SSO.Enabled && s.SSO.URL == "" {
		return fmt.Errorf("SSO включён, но ssoUrl не задан")
	}
	if s.Require2FA && !s.Is2FAEnabled {
		return fmt.Errorf("require2fa требует is2faEnabled")
	}
	if s.SMTP.Port < 0 || s.SMTP.Port > 65535 {
		return fmt.Errorf("некорректный порт SMTP: %d", s.SMTP.Port)
	}
	return s.LicenseTotals.Validate()
}
