package employee

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PookieLand/employee-management-service/internal/core/event"
	"github.com/PookieLand/employee-management-service/internal/core/rbac"
)

// Update は社員レコードを部分更新します。許可フィールド集合に
// 含まれない指定は黙って破棄され、適用対象が残らない場合は
// ErrNoUpdatableFields で失敗します。
func (s *Service) Update(ctx context.Context, actor Actor, id int64, in UpdateInput) (*Employee, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	var (
		updated       *Employee
		delta         Delta
		previousEmail string
		isOwn         bool
	)
	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		e, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		isOwn = s.isOwn(actor, e)
		if !rbac.CanUpdateEmployee(actor.Role(), rbac.Role(e.Role), isOwn) {
			return ErrPermissionDenied
		}

		allowed := rbac.AllowedUpdateFields(actor.Role(), isOwn)
		// 給与は更新権限とは別判定です。権限がない場合は指定を
		// 黙って落とし、残りのフィールドだけを適用します。
		if !rbac.CanModifySalary(actor.Role(), rbac.Role(e.Role)) {
			delete(allowed, rbac.FieldSalary)
			delete(allowed, rbac.FieldSalaryCurrency)
		}

		previousEmail = e.Email
		delta, err = in.apply(e, allowed, s.clock.Now())
		if err != nil {
			return err
		}

		updated, err = s.repo.Update(ctx, e)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateRecord(ctx, updated, previousEmail)

	meta := s.metaFor(actor)
	s.events.Publish(ctx, partitionKey(updated.ID), event.EmployeeUpdated{
		EmployeeID:     updated.ID,
		UserID:         updated.UserID,
		Email:          updated.Email,
		UpdatedFields:  delta.UpdatedFields(),
		PreviousValues: delta.PreviousValues(),
		UpdatedBy:      meta.ActorUserID,
	}, meta)

	return RedactForViewer(updated, actor.Role(), isOwn), nil
}

// UpdateProfile は actor 自身のレコードを部分更新します。
func (s *Service) UpdateProfile(ctx context.Context, actor Actor, in UpdateInput) (*Employee, error) {
	email := normalizeEmail(actor.Email)
	if email == "" {
		return nil, ErrEmployeeNotFound
	}

	e, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, actor, e.ID, in)
}

// Delete は社員レコードを削除します。
func (s *Service) Delete(ctx context.Context, actor Actor, id int64, reason string) error {
	if id <= 0 {
		return ErrInvalidID
	}

	var target *Employee
	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		e, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !rbac.CanDeleteEmployee(actor.Role(), rbac.Role(e.Role)) {
			return ErrPermissionDenied
		}
		target = e
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.invalidateRecord(ctx, target, "")

	meta := s.metaFor(actor)
	s.events.Publish(ctx, partitionKey(target.ID), event.EmployeeDeleted{
		EmployeeID: target.ID,
		UserID:     target.UserID,
		Email:      target.Email,
		DeletedBy:  meta.ActorUserID,
		Reason:     reason,
	}, meta)

	return nil
}

// Suspend は社員を停職状態へ遷移させます。
func (s *Service) Suspend(ctx context.Context, actor Actor, id int64, reason string) (*Employee, error) {
	updated, err := s.transition(ctx, actor, id, StatusSuspended)
	if err != nil {
		return nil, err
	}

	meta := s.metaFor(actor)
	s.events.Publish(ctx, partitionKey(updated.ID), event.EmployeeSuspended{
		EmployeeID:  updated.ID,
		UserID:      updated.UserID,
		Email:       updated.Email,
		SuspendedBy: meta.ActorUserID,
		Reason:      reason,
	}, meta)

	return updated, nil
}

// Activate は社員を稼働状態へ復帰させます。
func (s *Service) Activate(ctx context.Context, actor Actor, id int64) (*Employee, error) {
	updated, err := s.transition(ctx, actor, id, StatusActive)
	if err != nil {
		return nil, err
	}

	meta := s.metaFor(actor)
	s.events.Publish(ctx, partitionKey(updated.ID), event.EmployeeActivated{
		EmployeeID:  updated.ID,
		UserID:      updated.UserID,
		Email:       updated.Email,
		ActivatedBy: meta.ActorUserID,
	}, meta)

	return updated, nil
}

func (s *Service) transition(ctx context.Context, actor Actor, id int64, to Status) (*Employee, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	var updated *Employee
	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		e, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		// 同格制限があるのは停職のみで、復職は HR 操作権限だけで
		// 判定されます。
		allowed := rbac.CanPerformHROperations(actor.Role())
		if to == StatusSuspended {
			allowed = rbac.CanSuspendEmployee(actor.Role(), rbac.Role(e.Role))
		}
		if !allowed {
			return ErrPermissionDenied
		}
		if _, err := Transition(e, to, s.clock.Now()); err != nil {
			return err
		}
		updated, err = s.repo.Update(ctx, e)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateRecord(ctx, updated, "")
	return updated, nil
}

// TerminateInput は解雇時の入力です。TerminationDate が nil の場合は
// 現在時刻が使われます。
type TerminateInput struct {
	Reason          string
	TerminationDate *time.Time
}

// Terminate は社員を解雇状態へ遷移させます。terminated は吸収状態の
// ため、以降のステータス変更はすべて失敗します。
func (s *Service) Terminate(ctx context.Context, actor Actor, id int64, in TerminateInput) (*Employee, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	var updated *Employee
	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		e, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !rbac.CanTerminateEmployee(actor.Role(), rbac.Role(e.Role)) {
			return ErrPermissionDenied
		}
		if _, err := Transition(e, StatusTerminated, s.clock.Now()); err != nil {
			return err
		}
		if in.TerminationDate != nil {
			e.TerminatedAt = cloneTime(in.TerminationDate)
		}
		updated, err = s.repo.Update(ctx, e)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateRecord(ctx, updated, "")

	meta := s.metaFor(actor)
	s.events.Publish(ctx, partitionKey(updated.ID), event.EmployeeTerminated{
		EmployeeID:      updated.ID,
		UserID:          updated.UserID,
		Email:           updated.Email,
		FirstName:       updated.FirstName,
		LastName:        updated.LastName,
		TerminationDate: *updated.TerminatedAt,
		Reason:          in.Reason,
		TerminatedBy:    meta.ActorUserID,
	}, meta)

	return updated, nil
}

// PromoteInput は昇進時の入力です。
type PromoteInput struct {
	NewPosition   string
	NewJobTitle   string
	NewSalary     *decimal.Decimal
	NewDepartment *string
	EffectiveDate *time.Time
}

// Promote は社員を昇進させます。
func (s *Service) Promote(ctx context.Context, actor Actor, id int64, in PromoteInput) (*Employee, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	if in.NewPosition == "" && in.NewJobTitle == "" && in.NewSalary == nil && in.NewDepartment == nil {
		return nil, ErrNoUpdatableFields
	}
	if in.NewSalary != nil && in.NewSalary.IsNegative() {
		return nil, ErrInvalidSalary
	}

	var (
		updated *Employee
		payload event.EmployeePromoted
	)
	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		e, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !rbac.CanPromoteEmployee(actor.Role(), rbac.Role(e.Role)) {
			return ErrPermissionDenied
		}

		now := s.clock.Now()
		effective := now
		if in.EffectiveDate != nil {
			effective = *in.EffectiveDate
		}

		payload = event.EmployeePromoted{
			EmployeeID:    e.ID,
			UserID:        e.UserID,
			Email:         e.Email,
			FirstName:     e.FirstName,
			LastName:      e.LastName,
			OldPosition:   e.Position,
			OldJobTitle:   e.JobTitle,
			OldDepartment: cloneString(e.Department),
			EffectiveDate: effective,
		}

		if in.NewPosition != "" {
			e.Position = in.NewPosition
		}
		if in.NewJobTitle != "" {
			e.JobTitle = in.NewJobTitle
		}
		if in.NewSalary != nil {
			old := e.Salary
			payload.OldSalary = &old
			e.Salary = *in.NewSalary
			payload.NewSalary = in.NewSalary
			e.SalaryIncrementDate = cloneTime(&effective)
		}
		if in.NewDepartment != nil {
			e.Department = cloneString(in.NewDepartment)
			payload.NewDepartment = in.NewDepartment
		}
		e.UpdatedAt = now

		payload.NewPosition = e.Position
		payload.NewJobTitle = e.JobTitle

		updated, err = s.repo.Update(ctx, e)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateRecord(ctx, updated, "")

	meta := s.metaFor(actor)
	payload.PromotedBy = meta.ActorUserID
	s.events.Publish(ctx, partitionKey(updated.ID), payload, meta)

	return updated, nil
}

// TransferInput は異動時の入力です。
type TransferInput struct {
	NewDepartment string
	NewTeam       *string
	NewManagerID  *int64
	EffectiveDate *time.Time
}

// Transfer は社員を別部門へ異動させます。
func (s *Service) Transfer(ctx context.Context, actor Actor, id int64, in TransferInput) (*Employee, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	if in.NewDepartment == "" {
		return nil, ErrNoUpdatableFields
	}

	var (
		updated *Employee
		payload event.EmployeeTransferred
	)
	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		e, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !rbac.CanPerformHROperations(actor.Role()) {
			return ErrPermissionDenied
		}

		now := s.clock.Now()
		effective := now
		if in.EffectiveDate != nil {
			effective = *in.EffectiveDate
		}

		payload = event.EmployeeTransferred{
			EmployeeID:    e.ID,
			UserID:        e.UserID,
			Email:         e.Email,
			FirstName:     e.FirstName,
			LastName:      e.LastName,
			OldDepartment: cloneString(e.Department),
			NewDepartment: in.NewDepartment,
			OldTeam:       cloneString(e.Team),
			OldManagerID:  cloneInt64(e.ManagerID),
			EffectiveDate: effective,
		}

		department := in.NewDepartment
		e.Department = &department
		if in.NewTeam != nil {
			e.Team = cloneString(in.NewTeam)
			payload.NewTeam = in.NewTeam
		}
		if in.NewManagerID != nil {
			e.ManagerID = cloneInt64(in.NewManagerID)
			payload.NewManagerID = in.NewManagerID
		}
		e.UpdatedAt = now

		updated, err = s.repo.Update(ctx, e)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateRecord(ctx, updated, "")

	meta := s.metaFor(actor)
	payload.TransferredBy = meta.ActorUserID
	s.events.Publish(ctx, partitionKey(updated.ID), payload, meta)

	return updated, nil
}

// SalaryInput は給与改定時の入力です。
type SalaryInput struct {
	NewSalary     decimal.Decimal
	Currency      *string
	EffectiveDate *time.Time
	Reason        string
}

// UpdateSalary は給与を改定します。本人のレコードに対しても
// ランク比較のみで判定されます（給与の自己承認を防ぐため）。
func (s *Service) UpdateSalary(ctx context.Context, actor Actor, id int64, in SalaryInput) (*Employee, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	if in.NewSalary.IsNegative() {
		return nil, ErrInvalidSalary
	}

	var (
		updated *Employee
		payload event.SalaryUpdated
	)
	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		e, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !rbac.CanModifySalary(actor.Role(), rbac.Role(e.Role)) {
			return ErrPermissionDenied
		}

		now := s.clock.Now()
		effective := now
		if in.EffectiveDate != nil {
			effective = *in.EffectiveDate
		}

		payload = event.SalaryUpdated{
			EmployeeID:    e.ID,
			UserID:        e.UserID,
			Email:         e.Email,
			OldSalary:     e.Salary,
			NewSalary:     in.NewSalary,
			EffectiveDate: effective,
			Reason:        in.Reason,
		}

		e.Salary = in.NewSalary
		if in.Currency != nil {
			e.SalaryCurrency = *in.Currency
		}
		payload.SalaryCurrency = e.SalaryCurrency
		e.SalaryIncrementDate = cloneTime(&effective)
		e.UpdatedAt = now

		updated, err = s.repo.Update(ctx, e)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateRecord(ctx, updated, "")

	meta := s.metaFor(actor)
	payload.UpdatedBy = meta.ActorUserID
	s.events.Publish(ctx, partitionKey(updated.ID), payload, meta)

	return updated, nil
}

// invalidateRecord はコミット済みの変更に対応するキャッシュを
// 無効化します。メールアドレス変更時は旧キーも併せて落とします。
func (s *Service) invalidateRecord(ctx context.Context, e *Employee, previousEmail string) {
	s.invalidator.Employee(ctx, e.ID, e.Email, e.UserID)
	if previousEmail != "" && previousEmail != e.Email {
		s.invalidator.Employee(ctx, e.ID, previousEmail, nil)
	}
}
