package employee

import (
	"time"

	"github.com/PookieLand/employee-management-service/internal/core/rbac"
)

// InitialStatus は作成時のステータスを導出します。
// 正社員かつ試用期間が指定されている場合のみ on_probation、それ以外は active です。
func InitialStatus(employmentType EmploymentType, probationMonths *int) Status {
	if employmentType == EmploymentPermanent && probationMonths != nil && *probationMonths > 0 {
		return StatusOnProbation
	}
	return StatusActive
}

// Change はフィールド単位の変更（旧値と新値）を表します。
type Change struct {
	Old any
	New any
}

// Delta は部分更新で適用されたフィールドの変更集合です。
type Delta map[rbac.Field]Change

// UpdatedFields は新値のみをワイヤ形式のマップで返します。
func (d Delta) UpdatedFields() map[string]any {
	out := make(map[string]any, len(d))
	for field, change := range d {
		out[string(field)] = change.New
	}
	return out
}

// PreviousValues は旧値のみをワイヤ形式のマップで返します。
func (d Delta) PreviousValues() map[string]any {
	out := make(map[string]any, len(d))
	for field, change := range d {
		out[string(field)] = change.Old
	}
	return out
}

// StatusChange はステータス遷移の前後を表します。
type StatusChange struct {
	From Status
	To   Status
}

// Transition は社員のステータスを遷移させます。terminated は吸収状態であり、
// そこからのあらゆる遷移は ErrEmployeeTerminated で失敗します。
// terminated への遷移では terminated_at も設定されます。
func Transition(e *Employee, to Status, now time.Time) (StatusChange, error) {
	if !isValidStatus(to) {
		return StatusChange{}, ErrInvalidStatus
	}
	if e.Status == StatusTerminated {
		return StatusChange{}, ErrEmployeeTerminated
	}

	change := StatusChange{From: e.Status, To: to}
	e.Status = to
	e.UpdatedAt = now
	if to == StatusTerminated {
		terminatedAt := now
		e.TerminatedAt = &terminatedAt
	}
	return change, nil
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusOnProbation, StatusSuspended, StatusTerminated, StatusOnLeave, StatusResigned:
		return true
	default:
		return false
	}
}
