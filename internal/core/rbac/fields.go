package rbac

// Field は部分更新の対象となるフィールド識別子です。
// 文字列マップではなくコンパイル時の列挙として扱います。
type Field string

const (
	FieldFirstName  Field = "first_name"
	FieldLastName   Field = "last_name"
	FieldEmail      Field = "email"
	FieldPhone      Field = "phone"
	FieldRole       Field = "role"
	FieldStatus     Field = "status"
	FieldJobTitle   Field = "job_title"
	FieldPosition   Field = "position"
	FieldDepartment Field = "department"
	FieldTeam       Field = "team"
	FieldManagerID  Field = "manager_id"

	FieldSalary         Field = "salary"
	FieldSalaryCurrency Field = "salary_currency"

	FieldEmploymentType        Field = "employment_type"
	FieldDateOfHire            Field = "date_of_hire"
	FieldJoiningDate           Field = "joining_date"
	FieldProbationMonths       Field = "probation_months"
	FieldProbationEndDate      Field = "probation_end_date"
	FieldProbationCompleted    Field = "probation_completed"
	FieldContractType          Field = "contract_type"
	FieldContractStartDate     Field = "contract_start_date"
	FieldContractEndDate       Field = "contract_end_date"
	FieldPerformanceReviewDate Field = "performance_review_date"
	FieldSalaryIncrementDate   Field = "salary_increment_date"
	FieldNotes                 Field = "notes"

	FieldDateOfBirth Field = "date_of_birth"
	FieldAge         Field = "age"
	FieldGender      Field = "gender"
	FieldNationality Field = "nationality"

	FieldAddress      Field = "address"
	FieldAddressLine1 Field = "address_line_1"
	FieldAddressLine2 Field = "address_line_2"
	FieldCity         Field = "city"
	FieldState        Field = "state"
	FieldCountry      Field = "country"
	FieldPostalCode   Field = "postal_code"

	FieldEmergencyContactName         Field = "emergency_contact_name"
	FieldEmergencyContactPhone        Field = "emergency_contact_phone"
	FieldEmergencyContactRelationship Field = "emergency_contact_relationship"

	FieldBankName          Field = "bank_name"
	FieldBankAccountNumber Field = "bank_account_number"
	FieldBankRoutingNumber Field = "bank_routing_number"
)

// FieldSet はフィールドの集合です。
type FieldSet map[Field]struct{}

// Contains は field が集合に含まれるか返します。
func (s FieldSet) Contains(field Field) bool {
	_, ok := s[field]
	return ok
}

func newFieldSet(fields ...Field) FieldSet {
	set := make(FieldSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func union(sets ...FieldSet) FieldSet {
	merged := FieldSet{}
	for _, set := range sets {
		for f := range set {
			merged[f] = struct{}{}
		}
	}
	return merged
}

// ownFields は本人が自分のレコードに対して常に更新できるフィールドです。
var ownFields = newFieldSet(
	FieldPhone,
	FieldAddress,
	FieldAddressLine1,
	FieldAddressLine2,
	FieldCity,
	FieldState,
	FieldCountry,
	FieldPostalCode,
	FieldEmergencyContactName,
	FieldEmergencyContactPhone,
	FieldEmergencyContactRelationship,
	FieldBankName,
	FieldBankAccountNumber,
	FieldBankRoutingNumber,
)

// hrFields は HR ロールのみが更新できるフィールドです。
var hrFields = newFieldSet(
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldRole,
	FieldStatus,
	FieldJobTitle,
	FieldPosition,
	FieldDepartment,
	FieldTeam,
	FieldManagerID,
	FieldSalary,
	FieldSalaryCurrency,
	FieldEmploymentType,
	FieldDateOfHire,
	FieldJoiningDate,
	FieldProbationMonths,
	FieldProbationEndDate,
	FieldProbationCompleted,
	FieldContractType,
	FieldContractStartDate,
	FieldContractEndDate,
	FieldPerformanceReviewDate,
	FieldSalaryIncrementDate,
	FieldNotes,
)

// personalFields は HR ロールまたは本人が更新できるフィールドです。
var personalFields = newFieldSet(
	FieldDateOfBirth,
	FieldAge,
	FieldGender,
	FieldNationality,
)

// AllowedUpdateFields は actor が更新を許可されるフィールド集合を返します。
// 許可集合に含まれないフィールドは呼び出し側で黙って破棄されます。
func AllowedUpdateFields(actor Role, isOwn bool) FieldSet {
	actor = Normalize(actor)

	if actor == RoleHRAdmin || actor == RoleHRManager {
		return union(ownFields, hrFields, personalFields)
	}

	if isOwn {
		return union(ownFields, personalFields)
	}

	return FieldSet{}
}
