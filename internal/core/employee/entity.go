package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmploymentType は雇用形態を表します。
type EmploymentType string

const (
	EmploymentPermanent EmploymentType = "permanent"
	EmploymentContract  EmploymentType = "contract"
)

// Status は社員の状態を表します。terminated は吸収状態で、
// 以降のステータス変更操作はすべて失敗します。
type Status string

const (
	StatusActive      Status = "active"
	StatusOnProbation Status = "on_probation"
	StatusSuspended   Status = "suspended"
	StatusTerminated  Status = "terminated"
	StatusOnLeave     Status = "on_leave"
	StatusResigned    Status = "resigned"
)

// Employee は社員エンティティです。人事・給与・オンボーディング連携に
// 必要な全カラムを保持します。
type Employee struct {
	ID int64 `json:"id"`

	// 外部 ID 管理サービスへの弱参照。存在する場合は一意です。
	UserID *int64 `json:"user_id,omitempty"`

	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`

	Role   string `json:"role"`
	Status Status `json:"status"`

	JobTitle   string  `json:"job_title"`
	Position   string  `json:"position"`
	Department *string `json:"department,omitempty"`
	Team       *string `json:"team,omitempty"`
	ManagerID  *int64  `json:"manager_id,omitempty"`

	Salary         decimal.Decimal `json:"salary"`
	SalaryCurrency string          `json:"salary_currency"`

	EmploymentType EmploymentType `json:"employment_type"`
	DateOfHire     time.Time      `json:"date_of_hire"`
	JoiningDate    *time.Time     `json:"joining_date,omitempty"`

	ProbationMonths    *int       `json:"probation_months,omitempty"`
	ProbationEndDate   *time.Time `json:"probation_end_date,omitempty"`
	ProbationCompleted bool       `json:"probation_completed"`

	ContractType      string     `json:"contract_type"`
	ContractStartDate *time.Time `json:"contract_start_date,omitempty"`
	ContractEndDate   *time.Time `json:"contract_end_date,omitempty"`

	PerformanceReviewDate *time.Time `json:"performance_review_date,omitempty"`
	SalaryIncrementDate   *time.Time `json:"salary_increment_date,omitempty"`

	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Age         *int       `json:"age,omitempty"`
	Gender      *string    `json:"gender,omitempty"`
	Nationality *string    `json:"nationality,omitempty"`

	Address      *string `json:"address,omitempty"`
	AddressLine1 *string `json:"address_line_1,omitempty"`
	AddressLine2 *string `json:"address_line_2,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	Country      *string `json:"country,omitempty"`
	PostalCode   *string `json:"postal_code,omitempty"`

	EmergencyContactName         *string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone        *string `json:"emergency_contact_phone,omitempty"`
	EmergencyContactRelationship *string `json:"emergency_contact_relationship,omitempty"`

	BankName          *string `json:"bank_name,omitempty"`
	BankAccountNumber *string `json:"bank_account_number,omitempty"`
	BankRoutingNumber *string `json:"bank_routing_number,omitempty"`

	Notes *string `json:"notes,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	TerminatedAt *time.Time `json:"terminated_at,omitempty"`
}

// Clone はエンティティの深いコピーを返します。
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	clone := *e
	clone.UserID = cloneInt64(e.UserID)
	clone.Phone = cloneString(e.Phone)
	clone.Department = cloneString(e.Department)
	clone.Team = cloneString(e.Team)
	clone.ManagerID = cloneInt64(e.ManagerID)
	clone.JoiningDate = cloneTime(e.JoiningDate)
	clone.ProbationMonths = cloneInt(e.ProbationMonths)
	clone.ProbationEndDate = cloneTime(e.ProbationEndDate)
	clone.ContractStartDate = cloneTime(e.ContractStartDate)
	clone.ContractEndDate = cloneTime(e.ContractEndDate)
	clone.PerformanceReviewDate = cloneTime(e.PerformanceReviewDate)
	clone.SalaryIncrementDate = cloneTime(e.SalaryIncrementDate)
	clone.DateOfBirth = cloneTime(e.DateOfBirth)
	clone.Age = cloneInt(e.Age)
	clone.Gender = cloneString(e.Gender)
	clone.Nationality = cloneString(e.Nationality)
	clone.Address = cloneString(e.Address)
	clone.AddressLine1 = cloneString(e.AddressLine1)
	clone.AddressLine2 = cloneString(e.AddressLine2)
	clone.City = cloneString(e.City)
	clone.State = cloneString(e.State)
	clone.Country = cloneString(e.Country)
	clone.PostalCode = cloneString(e.PostalCode)
	clone.EmergencyContactName = cloneString(e.EmergencyContactName)
	clone.EmergencyContactPhone = cloneString(e.EmergencyContactPhone)
	clone.EmergencyContactRelationship = cloneString(e.EmergencyContactRelationship)
	clone.BankName = cloneString(e.BankName)
	clone.BankAccountNumber = cloneString(e.BankAccountNumber)
	clone.BankRoutingNumber = cloneString(e.BankRoutingNumber)
	clone.Notes = cloneString(e.Notes)
	clone.TerminatedAt = cloneTime(e.TerminatedAt)
	return &clone
}

// FullName は表示用の氏名を返します。
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	clone := *v
	return &clone
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	clone := *v
	return &clone
}
