package entities

import (
	"fmt"
	"time"

	"inventory-system/pkg/types"
)

type License struct {
	ID             uint64  `json:"id" db:"id"`
	Produto        string  `json:"produto" db:"produto"`
	TipoLicenca    string  `json:"tipoLicenca" db:"tipo_licenca"`
	ChaveSerial    string  `json:"chaveSerial" db:"chave_serial"`
	DataExpiracao  *string `json:"dataExpiracao" db:"data_expiracao"` // nil - бессрочная
	Usuario        string  `json:"usuario" db:"usuario"`
	Cargo          string  `json:"cargo" db:"cargo"`
	Setor          string  `json:"setor" db:"setor"`
	Gestor         string  `json:"gestor" db:"gestor"`
	CentroCusto    string  `json:"centroCusto" db:"centro_custo"`
	ContaRazao     string  `json:"contaRazao" db:"conta_razao"`
	NomeComputador string  `json:"nomeComputador" db:"nome_computador"`
	NumeroChamado  string  `json:"numeroChamado" db:"numero_chamado"`
	Observacoes    string  `json:"observacoes" db:"observacoes"`

	ApprovalStatus  ApprovalStatus `json:"approval_status" db:"approval_status"`
	RejectionReason *string        `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedByID     *uint64        `json:"created_by_id,omitempty" db:"created_by_id"`

	types.BaseEntity
}

func (l *License) DisplayName() string {
	return fmt.Sprintf("%s - %s", l.Produto, l.Usuario)
}

// ExpiresBetween - истекает ли лицензия в полуинтервале [from, to).
func (l *License) ExpiresBetween(from, to time.Time) bool {
	if l.DataExpiracao == nil || *l.DataExpiracao == "" {
		return false
	}
	value := *l.DataExpiracao
	if len(value) > 10 {
		value = value[:10]
	}
	exp, err := time.Parse("2006-01-02", value)
	if err != nil {
		return false
	}
	return !exp.Before(from) && exp.Before(to)
}
