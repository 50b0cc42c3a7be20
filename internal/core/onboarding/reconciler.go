// Package onboarding は外部 ID 管理サービスのオンボーディングフローと
// 社員レコードを突き合わせるリコンサイラを提供します。重複配送を
// 前提とし、すべてのハンドラは冪等に動作します。
package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PookieLand/employee-management-service/internal/core/employee"
	"github.com/PookieLand/employee-management-service/internal/core/event"
)

// Reconciler はオンボーディングイベントを社員レコードへ反映します。
type Reconciler struct {
	employees *employee.Service
	logger    *slog.Logger
}

// NewReconciler は Reconciler を生成します。logger が nil の場合は
// slog.Default() を使用します。
func NewReconciler(employees *employee.Service, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{employees: employees, logger: logger}
}

type inboundEnvelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Metadata  struct {
		SourceService string `json:"source_service"`
		CorrelationID string `json:"correlation_id"`
	} `json:"metadata"`
}

// flexTime は RFC3339 と日付のみの両形式を受け付けます。上流は
// 日時を日付のみで送ることがあります。
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("onboarding: unparseable time %q", s)
}

type employeePayload struct {
	EmployeeID        *int64           `json:"employee_id,omitempty"`
	UserID            *int64           `json:"user_id,omitempty"`
	Email             string           `json:"email"`
	FirstName         string           `json:"first_name"`
	LastName          string           `json:"last_name"`
	Phone             *string          `json:"phone,omitempty"`
	Role              string           `json:"role,omitempty"`
	JobTitle          string           `json:"job_title,omitempty"`
	Position          string           `json:"position,omitempty"`
	Department        *string          `json:"department,omitempty"`
	Team              *string          `json:"team,omitempty"`
	ManagerID         *int64           `json:"manager_id,omitempty"`
	Salary            *decimal.Decimal `json:"salary,omitempty"`
	SalaryCurrency    string           `json:"salary_currency,omitempty"`
	EmploymentType    string           `json:"employment_type,omitempty"`
	JoiningDate       *flexTime        `json:"joining_date,omitempty"`
	ProbationMonths   *int             `json:"probation_months,omitempty"`
	ContractType      string           `json:"contract_type,omitempty"`
	ContractStartDate *flexTime        `json:"contract_start_date,omitempty"`
	ContractEndDate   *flexTime        `json:"contract_end_date,omitempty"`
}

// Handle は topic に応じてイベントを処理します。ペイロードの
// 破損はログに残して破棄し、永続化の失敗のみをエラーとして返します
// （コンシューマ側のリトライ対象にするため）。
func (r *Reconciler) Handle(ctx context.Context, topic string, value []byte) error {
	var envelope inboundEnvelope
	if err := json.Unmarshal(value, &envelope); err != nil {
		r.logger.ErrorContext(ctx, "onboarding: malformed envelope",
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)
		return nil
	}

	switch topic {
	case event.TopicOnboardingInitiated, event.TopicOnboardingIdentityCreated:
		r.logProgress(ctx, topic, envelope)
		return nil
	case event.TopicOnboardingFailed:
		r.logFailure(ctx, envelope)
		return nil
	case event.TopicOnboardingEmployeeCreated:
		return r.handleEmployeeCreated(ctx, envelope)
	case event.TopicOnboardingCompleted:
		return r.handleCompleted(ctx, envelope)
	default:
		r.logger.WarnContext(ctx, "onboarding: unexpected topic",
			slog.String("topic", topic),
		)
		return nil
	}
}

func (r *Reconciler) logProgress(ctx context.Context, topic string, envelope inboundEnvelope) {
	r.logger.InfoContext(ctx, "onboarding: flow progress",
		slog.String("topic", topic),
		slog.String("event_id", envelope.EventID),
		slog.String("correlation_id", envelope.Metadata.CorrelationID),
	)
}

func (r *Reconciler) logFailure(ctx context.Context, envelope inboundEnvelope) {
	var data struct {
		Email  string `json:"email"`
		Step   string `json:"step"`
		Reason string `json:"reason"`
	}
	_ = json.Unmarshal(envelope.Data, &data)
	r.logger.ErrorContext(ctx, "onboarding: flow failed upstream",
		slog.String("event_id", envelope.EventID),
		slog.String("correlation_id", envelope.Metadata.CorrelationID),
		slog.String("email", data.Email),
		slog.String("step", data.Step),
		slog.String("reason", data.Reason),
	)
}

// handleEmployeeCreated はメールアドレスをキーとした冪等な取り込みです。
// 既存レコードがあれば何もせず、なければ作成します。
func (r *Reconciler) handleEmployeeCreated(ctx context.Context, envelope inboundEnvelope) error {
	var payload employeePayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		r.logger.ErrorContext(ctx, "onboarding: malformed employee payload",
			slog.String("event_id", envelope.EventID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if payload.Email == "" || payload.FirstName == "" || payload.LastName == "" {
		r.logger.ErrorContext(ctx, "onboarding: incomplete employee payload",
			slog.String("event_id", envelope.EventID),
			slog.String("email", payload.Email),
		)
		return nil
	}

	existing, err := r.employees.LookupByEmail(ctx, payload.Email)
	if err != nil && !errors.Is(err, employee.ErrEmployeeNotFound) {
		return err
	}
	if existing != nil {
		r.logger.InfoContext(ctx, "onboarding: employee already exists",
			slog.Int64("employee_id", existing.ID),
			slog.String("email", existing.Email),
		)
		return nil
	}

	in := employee.CreateInput{
		UserID:          payload.UserID,
		FirstName:       payload.FirstName,
		LastName:        payload.LastName,
		Email:           payload.Email,
		Phone:           payload.Phone,
		Role:            payload.Role,
		JobTitle:        payload.JobTitle,
		Position:        payload.Position,
		Department:      payload.Department,
		Team:            payload.Team,
		ManagerID:       payload.ManagerID,
		SalaryCurrency:  payload.SalaryCurrency,
		EmploymentType:  employee.EmploymentType(payload.EmploymentType),
		ProbationMonths: payload.ProbationMonths,
		ContractType:    payload.ContractType,
	}
	if payload.Salary != nil {
		in.Salary = *payload.Salary
	}
	if payload.JoiningDate != nil {
		in.JoiningDate = &payload.JoiningDate.Time
	}
	if payload.ContractStartDate != nil {
		in.ContractStartDate = &payload.ContractStartDate.Time
	}
	if payload.ContractEndDate != nil {
		in.ContractEndDate = &payload.ContractEndDate.Time
	}

	created, err := r.employees.CreateInternal(ctx, in, event.Meta{
		CorrelationID: envelope.Metadata.CorrelationID,
		CausationID:   envelope.EventID,
	})
	if err != nil {
		// 並行配送との競合。すでに作られていれば目的は達成されている。
		if errors.Is(err, employee.ErrEmailAlreadyExists) {
			return nil
		}
		if errors.Is(err, employee.ErrInvalidEmail) || errors.Is(err, employee.ErrInvalidName) ||
			errors.Is(err, employee.ErrInvalidEmploymentType) || errors.Is(err, employee.ErrInvalidSalary) {
			r.logger.ErrorContext(ctx, "onboarding: rejected employee payload",
				slog.String("event_id", envelope.EventID),
				slog.String("email", payload.Email),
				slog.String("error", err.Error()),
			)
			return nil
		}
		return err
	}

	r.logger.InfoContext(ctx, "onboarding: employee created",
		slog.Int64("employee_id", created.ID),
		slog.String("email", created.Email),
		slog.String("correlation_id", envelope.Metadata.CorrelationID),
	)
	return nil
}

// handleCompleted は完了イベントの内容を既存レコードへマージします。
// user_id、なければメールアドレスで突き合わせ、どちらでも見つから
// ない場合はエラーログを残して破棄します。
func (r *Reconciler) handleCompleted(ctx context.Context, envelope inboundEnvelope) error {
	var payload employeePayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		r.logger.ErrorContext(ctx, "onboarding: malformed completion payload",
			slog.String("event_id", envelope.EventID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	target, err := r.resolveTarget(ctx, payload)
	if err != nil {
		return err
	}
	if target == nil {
		r.logger.ErrorContext(ctx, "onboarding: completion for unknown employee",
			slog.String("event_id", envelope.EventID),
			slog.String("email", payload.Email),
			slog.String("correlation_id", envelope.Metadata.CorrelationID),
		)
		return nil
	}

	in := employee.UpdateInput{
		Phone:           payload.Phone,
		Department:      payload.Department,
		Team:            payload.Team,
		ManagerID:       payload.ManagerID,
		Salary:          payload.Salary,
		ProbationMonths: payload.ProbationMonths,
	}
	if payload.FirstName != "" {
		in.FirstName = &payload.FirstName
	}
	if payload.LastName != "" {
		in.LastName = &payload.LastName
	}
	if payload.Role != "" {
		in.Role = &payload.Role
	}
	if payload.JobTitle != "" {
		in.JobTitle = &payload.JobTitle
	}
	if payload.Position != "" {
		in.Position = &payload.Position
	}
	if payload.SalaryCurrency != "" {
		in.SalaryCurrency = &payload.SalaryCurrency
	}
	if payload.ContractType != "" {
		in.ContractType = &payload.ContractType
	}
	if payload.JoiningDate != nil {
		in.JoiningDate = &payload.JoiningDate.Time
	}
	if payload.ContractStartDate != nil {
		in.ContractStartDate = &payload.ContractStartDate.Time
	}
	if payload.ContractEndDate != nil {
		in.ContractEndDate = &payload.ContractEndDate.Time
	}

	updated, err := r.employees.UpdateInternal(ctx, target.ID, payload.UserID, in, event.Meta{
		CorrelationID: envelope.Metadata.CorrelationID,
		CausationID:   envelope.EventID,
	})
	if err != nil {
		// マージ対象が何も残らないのは再配送で起こりうる正常系。
		if errors.Is(err, employee.ErrNoUpdatableFields) {
			return nil
		}
		return err
	}

	r.logger.InfoContext(ctx, "onboarding: completion merged",
		slog.Int64("employee_id", updated.ID),
		slog.String("email", updated.Email),
		slog.String("correlation_id", envelope.Metadata.CorrelationID),
	)
	return nil
}

// resolveTarget はペイロード中の社員 ID、外部ユーザー ID、メール
// アドレスの順で既存レコードを解決します。
func (r *Reconciler) resolveTarget(ctx context.Context, payload employeePayload) (*employee.Employee, error) {
	if payload.EmployeeID != nil {
		e, err := r.employees.LookupByID(ctx, *payload.EmployeeID)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, err
		}
	}
	if payload.UserID != nil {
		e, err := r.employees.LookupByUserID(ctx, *payload.UserID)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, err
		}
	}
	if payload.Email != "" {
		e, err := r.employees.LookupByEmail(ctx, payload.Email)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, err
		}
	}
	return nil, nil
}
