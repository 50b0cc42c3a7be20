package employee

import "errors"

var (
	// ErrPermissionDenied は認可判定に失敗したことを表します。
	// クライアントには forbidden として返され、リトライされません。
	ErrPermissionDenied = errors.New("employee: permission denied")

	// ErrEmployeeNotFound は対象の社員が存在しないことを表します。
	ErrEmployeeNotFound = errors.New("employee: not found")

	// ErrNoUpdatableFields は許可フィールドとの積集合が空だったことを表します。
	// ゼロフィールドのコミットは行いません。
	ErrNoUpdatableFields = errors.New("employee: no updatable fields")

	// ErrEmployeeTerminated は terminated 状態の社員に対する
	// ステータス変更が拒否されたことを表します。
	ErrEmployeeTerminated = errors.New("employee: already terminated")

	ErrEmailAlreadyExists    = errors.New("employee: email already exists")
	ErrInvalidEmail          = errors.New("employee: invalid email")
	ErrInvalidName           = errors.New("employee: invalid name")
	ErrInvalidStatus         = errors.New("employee: invalid status")
	ErrInvalidID             = errors.New("employee: invalid id")
	ErrInvalidSalary         = errors.New("employee: invalid salary")
	ErrInvalidEmploymentType = errors.New("employee: invalid employment type")
)
