package employee

import (
	"time"

	"github.com/PookieLand/employee-management-service/internal/core/rbac"
	"github.com/shopspring/decimal"
)

// UpdateInput は部分更新の入力です。nil のフィールドは未指定扱いです。
// 許可フィールド集合に含まれない指定は黙って破棄されます。
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string

	Role   *string
	Status *Status

	JobTitle   *string
	Position   *string
	Department *string
	Team       *string
	ManagerID  *int64

	Salary         *decimal.Decimal
	SalaryCurrency *string

	EmploymentType *EmploymentType
	DateOfHire     *time.Time
	JoiningDate    *time.Time

	ProbationMonths    *int
	ProbationEndDate   *time.Time
	ProbationCompleted *bool

	ContractType      *string
	ContractStartDate *time.Time
	ContractEndDate   *time.Time

	PerformanceReviewDate *time.Time
	SalaryIncrementDate   *time.Time

	DateOfBirth *time.Time
	Age         *int
	Gender      *string
	Nationality *string

	Address      *string
	AddressLine1 *string
	AddressLine2 *string
	City         *string
	State        *string
	Country      *string
	PostalCode   *string

	EmergencyContactName         *string
	EmergencyContactPhone        *string
	EmergencyContactRelationship *string

	BankName          *string
	BankAccountNumber *string
	BankRoutingNumber *string

	Notes *string
}

// apply は許可フィールドとの積集合を e に適用し、適用された差分を返します。
// 積集合が空の場合は ErrNoUpdatableFields を返し、e は変更されません。
func (in UpdateInput) apply(e *Employee, allowed rbac.FieldSet, now time.Time) (Delta, error) {
	// ステータス変更の妥当性はコミット前に検査します。
	if in.Status != nil && allowed.Contains(rbac.FieldStatus) {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		if e.Status == StatusTerminated && *in.Status != StatusTerminated {
			return nil, ErrEmployeeTerminated
		}
	}

	delta := Delta{}

	applyString(delta, allowed, rbac.FieldFirstName, &e.FirstName, in.FirstName)
	applyString(delta, allowed, rbac.FieldLastName, &e.LastName, in.LastName)
	applyString(delta, allowed, rbac.FieldEmail, &e.Email, in.Email)
	applyStringPtr(delta, allowed, rbac.FieldPhone, &e.Phone, in.Phone)
	applyString(delta, allowed, rbac.FieldRole, &e.Role, in.Role)

	if in.Status != nil && allowed.Contains(rbac.FieldStatus) {
		delta[rbac.FieldStatus] = Change{Old: string(e.Status), New: string(*in.Status)}
		e.Status = *in.Status
	}

	applyString(delta, allowed, rbac.FieldJobTitle, &e.JobTitle, in.JobTitle)
	applyString(delta, allowed, rbac.FieldPosition, &e.Position, in.Position)
	applyStringPtr(delta, allowed, rbac.FieldDepartment, &e.Department, in.Department)
	applyStringPtr(delta, allowed, rbac.FieldTeam, &e.Team, in.Team)
	applyInt64Ptr(delta, allowed, rbac.FieldManagerID, &e.ManagerID, in.ManagerID)

	if in.Salary != nil && allowed.Contains(rbac.FieldSalary) {
		delta[rbac.FieldSalary] = Change{Old: e.Salary, New: *in.Salary}
		e.Salary = *in.Salary
	}
	applyString(delta, allowed, rbac.FieldSalaryCurrency, &e.SalaryCurrency, in.SalaryCurrency)

	if in.EmploymentType != nil && allowed.Contains(rbac.FieldEmploymentType) {
		delta[rbac.FieldEmploymentType] = Change{Old: string(e.EmploymentType), New: string(*in.EmploymentType)}
		e.EmploymentType = *in.EmploymentType
	}
	if in.DateOfHire != nil && allowed.Contains(rbac.FieldDateOfHire) {
		delta[rbac.FieldDateOfHire] = Change{Old: e.DateOfHire, New: *in.DateOfHire}
		e.DateOfHire = *in.DateOfHire
	}
	applyTimePtr(delta, allowed, rbac.FieldJoiningDate, &e.JoiningDate, in.JoiningDate)

	applyIntPtr(delta, allowed, rbac.FieldProbationMonths, &e.ProbationMonths, in.ProbationMonths)
	applyTimePtr(delta, allowed, rbac.FieldProbationEndDate, &e.ProbationEndDate, in.ProbationEndDate)
	if in.ProbationCompleted != nil && allowed.Contains(rbac.FieldProbationCompleted) {
		delta[rbac.FieldProbationCompleted] = Change{Old: e.ProbationCompleted, New: *in.ProbationCompleted}
		e.ProbationCompleted = *in.ProbationCompleted
	}

	applyString(delta, allowed, rbac.FieldContractType, &e.ContractType, in.ContractType)
	applyTimePtr(delta, allowed, rbac.FieldContractStartDate, &e.ContractStartDate, in.ContractStartDate)
	applyTimePtr(delta, allowed, rbac.FieldContractEndDate, &e.ContractEndDate, in.ContractEndDate)
	applyTimePtr(delta, allowed, rbac.FieldPerformanceReviewDate, &e.PerformanceReviewDate, in.PerformanceReviewDate)
	applyTimePtr(delta, allowed, rbac.FieldSalaryIncrementDate, &e.SalaryIncrementDate, in.SalaryIncrementDate)

	applyTimePtr(delta, allowed, rbac.FieldDateOfBirth, &e.DateOfBirth, in.DateOfBirth)
	applyIntPtr(delta, allowed, rbac.FieldAge, &e.Age, in.Age)
	applyStringPtr(delta, allowed, rbac.FieldGender, &e.Gender, in.Gender)
	applyStringPtr(delta, allowed, rbac.FieldNationality, &e.Nationality, in.Nationality)

	applyStringPtr(delta, allowed, rbac.FieldAddress, &e.Address, in.Address)
	applyStringPtr(delta, allowed, rbac.FieldAddressLine1, &e.AddressLine1, in.AddressLine1)
	applyStringPtr(delta, allowed, rbac.FieldAddressLine2, &e.AddressLine2, in.AddressLine2)
	applyStringPtr(delta, allowed, rbac.FieldCity, &e.City, in.City)
	applyStringPtr(delta, allowed, rbac.FieldState, &e.State, in.State)
	applyStringPtr(delta, allowed, rbac.FieldCountry, &e.Country, in.Country)
	applyStringPtr(delta, allowed, rbac.FieldPostalCode, &e.PostalCode, in.PostalCode)

	applyStringPtr(delta, allowed, rbac.FieldEmergencyContactName, &e.EmergencyContactName, in.EmergencyContactName)
	applyStringPtr(delta, allowed, rbac.FieldEmergencyContactPhone, &e.EmergencyContactPhone, in.EmergencyContactPhone)
	applyStringPtr(delta, allowed, rbac.FieldEmergencyContactRelationship, &e.EmergencyContactRelationship, in.EmergencyContactRelationship)

	applyStringPtr(delta, allowed, rbac.FieldBankName, &e.BankName, in.BankName)
	applyStringPtr(delta, allowed, rbac.FieldBankAccountNumber, &e.BankAccountNumber, in.BankAccountNumber)
	applyStringPtr(delta, allowed, rbac.FieldBankRoutingNumber, &e.BankRoutingNumber, in.BankRoutingNumber)

	applyStringPtr(delta, allowed, rbac.FieldNotes, &e.Notes, in.Notes)

	if len(delta) == 0 {
		return nil, ErrNoUpdatableFields
	}

	e.UpdatedAt = now
	return delta, nil
}

func applyString(delta Delta, allowed rbac.FieldSet, field rbac.Field, dst *string, src *string) {
	if src == nil || !allowed.Contains(field) {
		return
	}
	delta[field] = Change{Old: *dst, New: *src}
	*dst = *src
}

func applyStringPtr(delta Delta, allowed rbac.FieldSet, field rbac.Field, dst **string, src *string) {
	if src == nil || !allowed.Contains(field) {
		return
	}
	delta[field] = Change{Old: derefString(*dst), New: *src}
	value := *src
	*dst = &value
}

func applyTimePtr(delta Delta, allowed rbac.FieldSet, field rbac.Field, dst **time.Time, src *time.Time) {
	if src == nil || !allowed.Contains(field) {
		return
	}
	delta[field] = Change{Old: derefTime(*dst), New: *src}
	value := *src
	*dst = &value
}

func applyIntPtr(delta Delta, allowed rbac.FieldSet, field rbac.Field, dst **int, src *int) {
	if src == nil || !allowed.Contains(field) {
		return
	}
	delta[field] = Change{Old: derefInt(*dst), New: *src}
	value := *src
	*dst = &value
}

func applyInt64Ptr(delta Delta, allowed rbac.FieldSet, field rbac.Field, dst **int64, src *int64) {
	if src == nil || !allowed.Contains(field) {
		return
	}
	delta[field] = Change{Old: derefInt64(*dst), New: *src}
	value := *src
	*dst = &value
}

func derefString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func derefInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func derefInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
