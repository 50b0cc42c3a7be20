package employee

import (
	"context"
	"time"
)

// Repository は社員永続化の抽象です。存在しない社員に対する操作は
// ErrEmployeeNotFound を返します。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	FindByUserID(ctx context.Context, userID int64) (*Employee, error)
	List(ctx context.Context, filter ListFilter) ([]*Employee, int64, error)
	Metrics(ctx context.Context, now time.Time) (*DashboardMetrics, error)
}

// ListFilter は一覧取得用フィルタです。
type ListFilter struct {
	Department     *string
	Status         *Status
	EmploymentType *EmploymentType

	// ExcludeRole は指定ロールの社員を結果から除外します。
	// HR_Manager の一覧から HR_Admin を隠すために使います。
	ExcludeRole *string

	Offset int
	Limit  int
}

// DashboardMetrics は HR ダッシュボード用の集計値です。
type DashboardMetrics struct {
	TotalEmployees     int64            `json:"total_employees"`
	ActiveEmployees    int64            `json:"active_employees"`
	OnProbation        int64            `json:"on_probation"`
	OnLeave            int64            `json:"on_leave"`
	Suspended          int64            `json:"suspended"`
	PermanentEmployees int64            `json:"permanent_employees"`
	ContractEmployees  int64            `json:"contract_employees"`
	ByDepartment       map[string]int64 `json:"employees_by_department"`
	ByRole             map[string]int64 `json:"employees_by_role"`

	NewHiresThisMonth          int64 `json:"new_hires_this_month"`
	ProbationEndingSoon        int64 `json:"probation_ending_soon"`
	ContractsExpiringSoon      int64 `json:"contracts_expiring_soon"`
	BirthdaysThisMonth         int64 `json:"birthdays_this_month"`
	WorkAnniversariesThisMonth int64 `json:"work_anniversaries_this_month"`
}
