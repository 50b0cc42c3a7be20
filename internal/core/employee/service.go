package employee

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PookieLand/employee-management-service/internal/core/cache"
	"github.com/PookieLand/employee-management-service/internal/core/event"
	"github.com/PookieLand/employee-management-service/internal/core/rbac"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Actor は操作を実行する認証済み主体です。ロールはトークンの
// クレームをそのまま保持し、判定時に最上位ロールへ畳み込みます。
type Actor struct {
	UserID string
	Email  string
	Roles  []string
}

// Role は actor の最上位ロールを返します。
func (a Actor) Role() rbac.Role {
	return rbac.Highest(a.Roles)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200

	defaultCacheTTL   = 15 * time.Minute
	defaultMetricsTTL = 5 * time.Minute

	defaultSalaryCurrency = "USD"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Service は社員に関するユースケースをまとめます。永続化への
// コミットが成立した場合のみキャッシュ無効化とイベント発行を行います。
// 後者2つはベストエフォートであり、操作の成否には影響しません。
type Service struct {
	repo        Repository
	cache       cache.Store
	invalidator *cache.Invalidator
	events      *event.Publisher
	clock       Clock
	tx          TransactionManager
	logger      *slog.Logger

	cacheTTL   time.Duration
	metricsTTL time.Duration
}

// ServiceOption は Service の構成オプションです。
type ServiceOption func(*Service)

// WithClock は時刻取得を差し替えます。
func WithClock(c Clock) ServiceOption {
	return func(s *Service) { s.clock = c }
}

// WithTransactionManager はトランザクション制御を差し替えます。
func WithTransactionManager(tx TransactionManager) ServiceOption {
	return func(s *Service) { s.tx = tx }
}

// WithCacheTTL は単一レコード・一覧キャッシュの TTL を設定します。
func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.cacheTTL = ttl }
}

// WithMetricsTTL はダッシュボード集計キャッシュの TTL を設定します。
func WithMetricsTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.metricsTTL = ttl }
}

// NewService は Service を生成します。logger が nil の場合は
// slog.Default() を使用します。
func NewService(repo Repository, store cache.Store, events *event.Publisher, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:        repo,
		cache:       store,
		invalidator: cache.NewInvalidator(store, logger),
		events:      events,
		clock:       realClock{},
		tx:          noopTransactionManager{},
		logger:      logger,
		cacheTTL:    defaultCacheTTL,
		metricsTTL:  defaultMetricsTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput は社員作成時の入力です。
type CreateInput struct {
	UserID *int64

	FirstName string
	LastName  string
	Email     string
	Phone     *string

	Role string

	JobTitle   string
	Position   string
	Department *string
	Team       *string
	ManagerID  *int64

	Salary         decimal.Decimal
	SalaryCurrency string

	EmploymentType EmploymentType
	JoiningDate    *time.Time

	ProbationMonths *int

	ContractType      string
	ContractStartDate *time.Time
	ContractEndDate   *time.Time

	DateOfBirth *time.Time
	Gender      *string
	Nationality *string

	Notes *string
}

// Create は HR 操作として社員を新規作成します。
func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (*Employee, error) {
	if !rbac.CanPerformHROperations(actor.Role()) {
		return nil, ErrPermissionDenied
	}
	return s.create(ctx, in, s.metaFor(actor))
}

// CreateInternal は認可判定を伴わない内部作成です。オンボーディング
// リコンサイラのような信頼済みの内部呼び出し専用で、外部リクエスト
// からは到達しません。
func (s *Service) CreateInternal(ctx context.Context, in CreateInput, meta event.Meta) (*Employee, error) {
	return s.create(ctx, in, meta)
}

// UpdateInternal は認可判定を伴わない内部更新です。外部 ID 管理
// サービス由来のイベントを既存レコードへ取り込むために使います。
// キャッシュ無効化とイベント発行は通常の更新と同じ経路を通ります。
func (s *Service) UpdateInternal(ctx context.Context, id int64, userID *int64, in UpdateInput, meta event.Meta) (*Employee, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	var (
		updated       *Employee
		delta         Delta
		previousEmail string
	)
	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		e, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		var linked *Change
		if userID != nil && (e.UserID == nil || *e.UserID != *userID) {
			linked = &Change{Old: e.UserID, New: *userID}
			e.UserID = cloneInt64(userID)
		}

		previousEmail = e.Email
		delta, err = in.apply(e, rbac.AllowedUpdateFields(rbac.RoleHRAdmin, false), now)
		if err != nil {
			if !errors.Is(err, ErrNoUpdatableFields) || linked == nil {
				return err
			}
			delta = Delta{}
			e.UpdatedAt = now
		}
		if linked != nil {
			delta[rbac.Field("user_id")] = *linked
		}

		updated, err = s.repo.Update(ctx, e)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateRecord(ctx, updated, previousEmail)

	if len(delta) > 0 {
		s.events.Publish(ctx, partitionKey(updated.ID), event.EmployeeUpdated{
			EmployeeID:     updated.ID,
			UserID:         updated.UserID,
			Email:          updated.Email,
			UpdatedFields:  delta.UpdatedFields(),
			PreviousValues: delta.PreviousValues(),
			UpdatedBy:      meta.ActorUserID,
		}, meta)
	}

	return updated, nil
}

func (s *Service) create(ctx context.Context, in CreateInput, meta event.Meta) (*Employee, error) {
	now := s.clock.Now()

	email := normalizeEmail(in.Email)
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	if firstName == "" || lastName == "" {
		return nil, ErrInvalidName
	}
	if in.Salary.IsNegative() {
		return nil, ErrInvalidSalary
	}

	employmentType := in.EmploymentType
	if employmentType == "" {
		employmentType = EmploymentPermanent
	}
	if employmentType != EmploymentPermanent && employmentType != EmploymentContract {
		return nil, ErrInvalidEmploymentType
	}

	role := string(rbac.Normalize(rbac.Role(in.Role)))
	if in.Role == "" {
		role = string(rbac.RoleEmployee)
	}

	currency := in.SalaryCurrency
	if currency == "" {
		currency = defaultSalaryCurrency
	}

	joining := now
	if in.JoiningDate != nil {
		joining = *in.JoiningDate
	}

	status := InitialStatus(employmentType, in.ProbationMonths)

	e := &Employee{
		UserID:            cloneInt64(in.UserID),
		FirstName:         firstName,
		LastName:          lastName,
		Email:             email,
		Phone:             cloneString(in.Phone),
		Role:              role,
		Status:            status,
		JobTitle:          in.JobTitle,
		Position:          in.Position,
		Department:        cloneString(in.Department),
		Team:              cloneString(in.Team),
		ManagerID:         cloneInt64(in.ManagerID),
		Salary:            in.Salary,
		SalaryCurrency:    currency,
		EmploymentType:    employmentType,
		DateOfHire:        joining,
		JoiningDate:       cloneTime(&joining),
		ProbationMonths:   cloneInt(in.ProbationMonths),
		ContractType:      in.ContractType,
		ContractStartDate: cloneTime(in.ContractStartDate),
		ContractEndDate:   cloneTime(in.ContractEndDate),
		DateOfBirth:       cloneTime(in.DateOfBirth),
		Gender:            cloneString(in.Gender),
		Nationality:       cloneString(in.Nationality),
		Notes:             cloneString(in.Notes),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if status == StatusOnProbation {
		end := joining.AddDate(0, *in.ProbationMonths, 0)
		e.ProbationEndDate = &end
	}

	var created *Employee
	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}
		created, err = s.repo.Create(ctx, e)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidator.Employee(ctx, created.ID, created.Email, created.UserID)
	s.publishCreated(ctx, created, meta)

	return created, nil
}

func (s *Service) publishCreated(ctx context.Context, e *Employee, meta event.Meta) {
	key := partitionKey(e.ID)

	s.events.Publish(ctx, key, event.EmployeeCreated{
		EmployeeID:        e.ID,
		UserID:            e.UserID,
		Email:             e.Email,
		FirstName:         e.FirstName,
		LastName:          e.LastName,
		Role:              e.Role,
		JobTitle:          e.JobTitle,
		Department:        e.Department,
		Team:              e.Team,
		ManagerID:         e.ManagerID,
		EmploymentType:    string(e.EmploymentType),
		Salary:            e.Salary,
		SalaryCurrency:    e.SalaryCurrency,
		JoiningDate:       e.DateOfHire,
		ProbationMonths:   e.ProbationMonths,
		ProbationEndDate:  e.ProbationEndDate,
		ContractStartDate: e.ContractStartDate,
		ContractEndDate:   e.ContractEndDate,
		CreatedBy:         meta.ActorUserID,
	}, meta)

	if e.Status == StatusOnProbation && e.ProbationMonths != nil && e.ProbationEndDate != nil {
		s.events.Publish(ctx, key, event.ProbationStarted{
			EmployeeID:         e.ID,
			UserID:             e.UserID,
			Email:              e.Email,
			FirstName:          e.FirstName,
			LastName:           e.LastName,
			ProbationMonths:    *e.ProbationMonths,
			ProbationStartDate: e.DateOfHire,
			ProbationEndDate:   *e.ProbationEndDate,
			ManagerID:          e.ManagerID,
		}, meta)
	}

	if e.EmploymentType == EmploymentContract && e.ContractStartDate != nil && e.ContractEndDate != nil {
		s.events.Publish(ctx, key, event.ContractStarted{
			EmployeeID:        e.ID,
			UserID:            e.UserID,
			Email:             e.Email,
			FirstName:         e.FirstName,
			LastName:          e.LastName,
			ContractStartDate: *e.ContractStartDate,
			ContractEndDate:   *e.ContractEndDate,
			ContractType:      e.ContractType,
		}, meta)
	}
}

func (s *Service) metaFor(actor Actor) event.Meta {
	return event.Meta{
		ActorUserID: actor.UserID,
		ActorRole:   string(actor.Role()),
	}
}

func (s *Service) isOwn(actor Actor, e *Employee) bool {
	return actor.Email != "" && normalizeEmail(actor.Email) == e.Email
}

func partitionKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
