package employee

import (
	"github.com/PookieLand/employee-management-service/internal/core/rbac"
	"github.com/shopspring/decimal"
)

// RedactForViewer は viewer の権限に応じて閲覧不可フィールドを落とした
// コピーを返します。元のエンティティは変更しません。
// 口座番号は HR ロール以外には本人であっても返しません。
func RedactForViewer(e *Employee, viewer rbac.Role, isOwn bool) *Employee {
	view := e.Clone()

	if !rbac.CanPerformHROperations(viewer) {
		view.BankAccountNumber = nil
		view.BankRoutingNumber = nil
	}

	if !rbac.CanViewSalary(viewer, rbac.Role(e.Role), isOwn) {
		view.Salary = decimal.Decimal{}
		view.SalaryCurrency = ""
		view.SalaryIncrementDate = nil
	}

	return view
}

// Summary は一覧表示用の軽量ビューです。給与・口座・個人情報を
// 含まないため、マネージャにも返せます。
type Summary struct {
	ID         int64   `json:"id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	JobTitle   string  `json:"job_title"`
	Position   string  `json:"position"`
	Department *string `json:"department,omitempty"`
	Team       *string `json:"team,omitempty"`
	Status     Status  `json:"status"`
}

// SummaryOf は社員エンティティからサマリを生成します。
func SummaryOf(e *Employee) Summary {
	return Summary{
		ID:         e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Email:      e.Email,
		JobTitle:   e.JobTitle,
		Position:   e.Position,
		Department: cloneString(e.Department),
		Team:       cloneString(e.Team),
		Status:     e.Status,
	}
}
