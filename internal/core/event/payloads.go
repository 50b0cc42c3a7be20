package event

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payload はイベントごとに固定スキーマを持つ型付きペイロードです。
// 列挙を閉じるため実装は本パッケージ内に限定されます。
type Payload interface {
	eventType() Type
}

// EmployeeCreated は employee.created のペイロードです。
type EmployeeCreated struct {
	EmployeeID        int64           `json:"employee_id"`
	UserID            *int64          `json:"user_id,omitempty"`
	Email             string          `json:"email"`
	FirstName         string          `json:"first_name"`
	LastName          string          `json:"last_name"`
	Role              string          `json:"role"`
	JobTitle          string          `json:"job_title"`
	Department        *string         `json:"department,omitempty"`
	Team              *string         `json:"team,omitempty"`
	ManagerID         *int64          `json:"manager_id,omitempty"`
	EmploymentType    string          `json:"employment_type"`
	Salary            decimal.Decimal `json:"salary"`
	SalaryCurrency    string          `json:"salary_currency"`
	JoiningDate       time.Time       `json:"joining_date"`
	ProbationMonths   *int            `json:"probation_months,omitempty"`
	ProbationEndDate  *time.Time      `json:"probation_end_date,omitempty"`
	ContractStartDate *time.Time      `json:"contract_start_date,omitempty"`
	ContractEndDate   *time.Time      `json:"contract_end_date,omitempty"`
	CreatedBy         string          `json:"created_by,omitempty"`
}

func (EmployeeCreated) eventType() Type { return TypeEmployeeCreated }

// EmployeeUpdated は employee.updated のペイロードです。
type EmployeeUpdated struct {
	EmployeeID     int64          `json:"employee_id"`
	UserID         *int64         `json:"user_id,omitempty"`
	Email          string         `json:"email"`
	UpdatedFields  map[string]any `json:"updated_fields"`
	PreviousValues map[string]any `json:"previous_values,omitempty"`
	UpdatedBy      string         `json:"updated_by,omitempty"`
}

func (EmployeeUpdated) eventType() Type { return TypeEmployeeUpdated }

// EmployeeDeleted は employee.deleted のペイロードです。
type EmployeeDeleted struct {
	EmployeeID int64  `json:"employee_id"`
	UserID     *int64 `json:"user_id,omitempty"`
	Email      string `json:"email"`
	DeletedBy  string `json:"deleted_by"`
	Reason     string `json:"reason,omitempty"`
}

func (EmployeeDeleted) eventType() Type { return TypeEmployeeDeleted }

// EmployeeTerminated は employee.terminated のペイロードです。
type EmployeeTerminated struct {
	EmployeeID      int64     `json:"employee_id"`
	UserID          *int64    `json:"user_id,omitempty"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	TerminationDate time.Time `json:"termination_date"`
	Reason          string    `json:"reason,omitempty"`
	TerminatedBy    string    `json:"terminated_by"`
}

func (EmployeeTerminated) eventType() Type { return TypeEmployeeTerminated }

// EmployeePromoted は employee.promoted のペイロードです。
type EmployeePromoted struct {
	EmployeeID    int64            `json:"employee_id"`
	UserID        *int64           `json:"user_id,omitempty"`
	Email         string           `json:"email"`
	FirstName     string           `json:"first_name"`
	LastName      string           `json:"last_name"`
	OldPosition   string           `json:"old_position"`
	NewPosition   string           `json:"new_position"`
	OldJobTitle   string           `json:"old_job_title"`
	NewJobTitle   string           `json:"new_job_title"`
	OldSalary     *decimal.Decimal `json:"old_salary,omitempty"`
	NewSalary     *decimal.Decimal `json:"new_salary,omitempty"`
	OldDepartment *string          `json:"old_department,omitempty"`
	NewDepartment *string          `json:"new_department,omitempty"`
	EffectiveDate time.Time        `json:"effective_date"`
	PromotedBy    string           `json:"promoted_by"`
}

func (EmployeePromoted) eventType() Type { return TypeEmployeePromoted }

// EmployeeTransferred は employee.transferred のペイロードです。
type EmployeeTransferred struct {
	EmployeeID    int64     `json:"employee_id"`
	UserID        *int64    `json:"user_id,omitempty"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	OldDepartment *string   `json:"old_department,omitempty"`
	NewDepartment string    `json:"new_department"`
	OldTeam       *string   `json:"old_team,omitempty"`
	NewTeam       *string   `json:"new_team,omitempty"`
	OldManagerID  *int64    `json:"old_manager_id,omitempty"`
	NewManagerID  *int64    `json:"new_manager_id,omitempty"`
	EffectiveDate time.Time `json:"effective_date"`
	TransferredBy string    `json:"transferred_by"`
}

func (EmployeeTransferred) eventType() Type { return TypeEmployeeTransferred }

// EmployeeSuspended は employee.suspended のペイロードです。
type EmployeeSuspended struct {
	EmployeeID  int64  `json:"employee_id"`
	UserID      *int64 `json:"user_id,omitempty"`
	Email       string `json:"email"`
	SuspendedBy string `json:"suspended_by"`
	Reason      string `json:"reason,omitempty"`
}

func (EmployeeSuspended) eventType() Type { return TypeEmployeeSuspended }

// EmployeeActivated は employee.activated のペイロードです。
type EmployeeActivated struct {
	EmployeeID  int64  `json:"employee_id"`
	UserID      *int64 `json:"user_id,omitempty"`
	Email       string `json:"email"`
	ActivatedBy string `json:"activated_by"`
}

func (EmployeeActivated) eventType() Type { return TypeEmployeeActivated }

// SalaryUpdated は employee.salary.updated のペイロードです。
type SalaryUpdated struct {
	EmployeeID     int64           `json:"employee_id"`
	UserID         *int64          `json:"user_id,omitempty"`
	Email          string          `json:"email"`
	OldSalary      decimal.Decimal `json:"old_salary"`
	NewSalary      decimal.Decimal `json:"new_salary"`
	SalaryCurrency string          `json:"salary_currency"`
	EffectiveDate  time.Time       `json:"effective_date"`
	Reason         string          `json:"reason,omitempty"`
	UpdatedBy      string          `json:"updated_by"`
}

func (SalaryUpdated) eventType() Type { return TypeSalaryUpdated }

// ProbationStarted は employee.probation.started のペイロードです。
type ProbationStarted struct {
	EmployeeID         int64     `json:"employee_id"`
	UserID             *int64    `json:"user_id,omitempty"`
	Email              string    `json:"email"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	ProbationMonths    int       `json:"probation_months"`
	ProbationStartDate time.Time `json:"probation_start_date"`
	ProbationEndDate   time.Time `json:"probation_end_date"`
	ManagerID          *int64    `json:"manager_id,omitempty"`
}

func (ProbationStarted) eventType() Type { return TypeProbationStarted }

// ContractStarted は employee.contract.started のペイロードです。
type ContractStarted struct {
	EmployeeID        int64     `json:"employee_id"`
	UserID            *int64    `json:"user_id,omitempty"`
	Email             string    `json:"email"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	ContractStartDate time.Time `json:"contract_start_date"`
	ContractEndDate   time.Time `json:"contract_end_date"`
	ContractType      string    `json:"contract_type"`
}

func (ContractStarted) eventType() Type { return TypeContractStarted }
