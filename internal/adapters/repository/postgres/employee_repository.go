package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/PookieLand/employee-management-service/internal/core/employee"
	pgdb "github.com/PookieLand/employee-management-service/internal/platform/db/postgres"
)

const uniqueViolationCode = "23505"

const employeeColumns = `
        id, user_id, first_name, last_name, email, phone, role, status,
        job_title, position, department, team, manager_id,
        salary, salary_currency, employment_type, date_of_hire, joining_date,
        probation_months, probation_end_date, probation_completed,
        contract_type, contract_start_date, contract_end_date,
        performance_review_date, salary_increment_date,
        date_of_birth, age, gender, nationality,
        address, address_line_1, address_line_2, city, state, country, postal_code,
        emergency_contact_name, emergency_contact_phone, emergency_contact_relationship,
        bank_name, bank_account_number, bank_routing_number,
        notes, created_at, updated_at, terminated_at`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (
            user_id, first_name, last_name, email, phone, role, status,
            job_title, position, department, team, manager_id,
            salary, salary_currency, employment_type, date_of_hire, joining_date,
            probation_months, probation_end_date, probation_completed,
            contract_type, contract_start_date, contract_end_date,
            performance_review_date, salary_increment_date,
            date_of_birth, age, gender, nationality,
            address, address_line_1, address_line_2, city, state, country, postal_code,
            emergency_contact_name, emergency_contact_phone, emergency_contact_relationship,
            bank_name, bank_account_number, bank_routing_number,
            notes, created_at, updated_at, terminated_at
        )
        VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
            $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29,
            $30, $31, $32, $33, $34, $35, $36, $37, $38, $39, $40, $41, $42, $43,
            $44, $45, $46
        )
        RETURNING`+employeeColumns, employeeArgs(e)...)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return created, nil
}

// Update は社員レコード全体を置き換えます。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	args := append(employeeArgs(e), e.ID)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET user_id = $1,
               first_name = $2,
               last_name = $3,
               email = $4,
               phone = $5,
               role = $6,
               status = $7,
               job_title = $8,
               position = $9,
               department = $10,
               team = $11,
               manager_id = $12,
               salary = $13,
               salary_currency = $14,
               employment_type = $15,
               date_of_hire = $16,
               joining_date = $17,
               probation_months = $18,
               probation_end_date = $19,
               probation_completed = $20,
               contract_type = $21,
               contract_start_date = $22,
               contract_end_date = $23,
               performance_review_date = $24,
               salary_increment_date = $25,
               date_of_birth = $26,
               age = $27,
               gender = $28,
               nationality = $29,
               address = $30,
               address_line_1 = $31,
               address_line_2 = $32,
               city = $33,
               state = $34,
               country = $35,
               postal_code = $36,
               emergency_contact_name = $37,
               emergency_contact_phone = $38,
               emergency_contact_relationship = $39,
               bank_name = $40,
               bank_account_number = $41,
               bank_routing_number = $42,
               notes = $43,
               created_at = $44,
               updated_at = $45,
               terminated_at = $46
         WHERE id = $47
        RETURNING`+employeeColumns, args...)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return updated, nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translatePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*employee.Employee, error) {
	return r.findBy(ctx, "id = $1", id)
}

// FindByEmail はメールアドレスで社員を取得します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	return r.findBy(ctx, "email = $1", email)
}

// FindByUserID は外部ユーザー ID で社員を取得します。
func (r *EmployeeRepository) FindByUserID(ctx context.Context, userID int64) (*employee.Employee, error) {
	return r.findBy(ctx, "user_id = $1", userID)
}

func (r *EmployeeRepository) findBy(ctx context.Context, where string, arg any) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT`+employeeColumns+`
          FROM employees
         WHERE `+where+`
         LIMIT 1`, arg)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return found, nil
}

// List はフィルタ条件に合致する社員一覧と総件数を返します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListFilter) ([]*employee.Employee, int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	conditions := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if filter.Department != nil {
		args = append(args, *filter.Department)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.EmploymentType != nil {
		args = append(args, string(*filter.EmploymentType))
		conditions = append(conditions, fmt.Sprintf("employment_type = $%d", len(args)))
	}
	if filter.ExcludeRole != nil {
		args = append(args, *filter.ExcludeRole)
		conditions = append(conditions, fmt.Sprintf("role <> $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := exec.QueryRow(ctx, `SELECT count(*) FROM employees`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
        SELECT%s
          FROM employees%s
         ORDER BY id
         LIMIT $%d OFFSET $%d`, employeeColumns, where, len(args)-1, len(args))

	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// Metrics は HR ダッシュボード用の集計値を返します。
func (r *EmployeeRepository) Metrics(ctx context.Context, now time.Time) (*employee.DashboardMetrics, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	metrics := &employee.DashboardMetrics{
		ByDepartment: map[string]int64{},
		ByRole:       map[string]int64{},
	}

	err := exec.QueryRow(ctx, `
        SELECT count(*),
               count(*) FILTER (WHERE status = 'active'),
               count(*) FILTER (WHERE status = 'on_probation'),
               count(*) FILTER (WHERE status = 'on_leave'),
               count(*) FILTER (WHERE status = 'suspended'),
               count(*) FILTER (WHERE employment_type = 'permanent'),
               count(*) FILTER (WHERE employment_type = 'contract'),
               count(*) FILTER (WHERE date_trunc('month', date_of_hire) = date_trunc('month', $1::timestamptz)),
               count(*) FILTER (WHERE status = 'on_probation'
                                  AND probation_end_date BETWEEN $1::timestamptz AND $1::timestamptz + interval '7 days'),
               count(*) FILTER (WHERE employment_type = 'contract'
                                  AND contract_end_date BETWEEN $1::timestamptz AND $1::timestamptz + interval '30 days'),
               count(*) FILTER (WHERE date_of_birth IS NOT NULL
                                  AND extract(month FROM date_of_birth) = extract(month FROM $1::timestamptz)),
               count(*) FILTER (WHERE extract(month FROM date_of_hire) = extract(month FROM $1::timestamptz)
                                  AND date_of_hire < date_trunc('month', $1::timestamptz))
          FROM employees
    `, now).Scan(
		&metrics.TotalEmployees,
		&metrics.ActiveEmployees,
		&metrics.OnProbation,
		&metrics.OnLeave,
		&metrics.Suspended,
		&metrics.PermanentEmployees,
		&metrics.ContractEmployees,
		&metrics.NewHiresThisMonth,
		&metrics.ProbationEndingSoon,
		&metrics.ContractsExpiringSoon,
		&metrics.BirthdaysThisMonth,
		&metrics.WorkAnniversariesThisMonth,
	)
	if err != nil {
		return nil, err
	}

	if err := r.groupCount(ctx, exec, `
        SELECT department, count(*)
          FROM employees
         WHERE department IS NOT NULL
         GROUP BY department
    `, metrics.ByDepartment); err != nil {
		return nil, err
	}

	if err := r.groupCount(ctx, exec, `
        SELECT role, count(*)
          FROM employees
         GROUP BY role
    `, metrics.ByRole); err != nil {
		return nil, err
	}

	return metrics, nil
}

func (r *EmployeeRepository) groupCount(ctx context.Context, exec pgdb.Queryer, query string, out map[string]int64) error {
	rows, err := exec.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			count int64
		)
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		out[key] = count
	}
	return rows.Err()
}

func employeeArgs(e *employee.Employee) []any {
	return []any{
		e.UserID,
		e.FirstName,
		e.LastName,
		e.Email,
		e.Phone,
		e.Role,
		string(e.Status),
		e.JobTitle,
		e.Position,
		e.Department,
		e.Team,
		e.ManagerID,
		e.Salary,
		e.SalaryCurrency,
		string(e.EmploymentType),
		e.DateOfHire,
		e.JoiningDate,
		e.ProbationMonths,
		e.ProbationEndDate,
		e.ProbationCompleted,
		e.ContractType,
		e.ContractStartDate,
		e.ContractEndDate,
		e.PerformanceReviewDate,
		e.SalaryIncrementDate,
		e.DateOfBirth,
		e.Age,
		e.Gender,
		e.Nationality,
		e.Address,
		e.AddressLine1,
		e.AddressLine2,
		e.City,
		e.State,
		e.Country,
		e.PostalCode,
		e.EmergencyContactName,
		e.EmergencyContactPhone,
		e.EmergencyContactRelationship,
		e.BankName,
		e.BankAccountNumber,
		e.BankRoutingNumber,
		e.Notes,
		e.CreatedAt,
		e.UpdatedAt,
		e.TerminatedAt,
	}
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		e              employee.Employee
		status         string
		employmentType string
	)

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.FirstName,
		&e.LastName,
		&e.Email,
		&e.Phone,
		&e.Role,
		&status,
		&e.JobTitle,
		&e.Position,
		&e.Department,
		&e.Team,
		&e.ManagerID,
		&e.Salary,
		&e.SalaryCurrency,
		&employmentType,
		&e.DateOfHire,
		&e.JoiningDate,
		&e.ProbationMonths,
		&e.ProbationEndDate,
		&e.ProbationCompleted,
		&e.ContractType,
		&e.ContractStartDate,
		&e.ContractEndDate,
		&e.PerformanceReviewDate,
		&e.SalaryIncrementDate,
		&e.DateOfBirth,
		&e.Age,
		&e.Gender,
		&e.Nationality,
		&e.Address,
		&e.AddressLine1,
		&e.AddressLine2,
		&e.City,
		&e.State,
		&e.Country,
		&e.PostalCode,
		&e.EmergencyContactName,
		&e.EmergencyContactPhone,
		&e.EmergencyContactRelationship,
		&e.BankName,
		&e.BankAccountNumber,
		&e.BankRoutingNumber,
		&e.Notes,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.TerminatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	e.Status = employee.Status(status)
	e.EmploymentType = employee.EmploymentType(employmentType)
	return &e, nil
}

func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolationCode {
			return employee.ErrEmailAlreadyExists
		}
	}
	return err
}
