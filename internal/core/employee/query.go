package employee

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/PookieLand/employee-management-service/internal/core/cache"
	"github.com/PookieLand/employee-management-service/internal/core/rbac"
)

// Get は社員を取得します。閲覧権限に応じて給与・口座情報を
// 落とした読み取り用ビューを返します。
func (s *Service) Get(ctx context.Context, actor Actor, id int64) (*Employee, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	e, err := s.cachedEmployee(ctx, cache.EmployeeKey(id), func(ctx context.Context) (*Employee, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	isOwn := s.isOwn(actor, e)
	if !isOwn && !rbac.CanViewEmployee(actor.Role(), rbac.Role(e.Role)) {
		return nil, ErrPermissionDenied
	}

	return RedactForViewer(e, actor.Role(), isOwn), nil
}

// GetProfile は actor 自身のレコードを取得します。
func (s *Service) GetProfile(ctx context.Context, actor Actor) (*Employee, error) {
	email := normalizeEmail(actor.Email)
	if email == "" {
		return nil, ErrEmployeeNotFound
	}

	e, err := s.cachedEmployee(ctx, cache.EmailKey(email), func(ctx context.Context) (*Employee, error) {
		return s.repo.FindByEmail(ctx, email)
	})
	if err != nil {
		return nil, err
	}

	return RedactForViewer(e, actor.Role(), true), nil
}

// LookupByID は社員 ID で社員を解決します。サービス間連携用の
// 内部参照であり、認可判定は行いません。
func (s *Service) LookupByID(ctx context.Context, id int64) (*Employee, error) {
	if id <= 0 {
		return nil, ErrEmployeeNotFound
	}
	return s.cachedEmployee(ctx, cache.EmployeeKey(id), func(ctx context.Context) (*Employee, error) {
		return s.repo.FindByID(ctx, id)
	})
}

// LookupByEmail はメールアドレスで社員を解決します。サービス間
// 連携用の内部参照であり、認可判定は行いません。
func (s *Service) LookupByEmail(ctx context.Context, email string) (*Employee, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrEmployeeNotFound
	}
	return s.cachedEmployee(ctx, cache.EmailKey(email), func(ctx context.Context) (*Employee, error) {
		return s.repo.FindByEmail(ctx, email)
	})
}

// LookupByUserID は外部 ID 管理サービスのユーザー ID で社員を
// 解決します。サービス間連携用の内部参照です。
func (s *Service) LookupByUserID(ctx context.Context, userID int64) (*Employee, error) {
	if userID <= 0 {
		return nil, ErrEmployeeNotFound
	}
	return s.cachedEmployee(ctx, cache.UserKey(userID), func(ctx context.Context) (*Employee, error) {
		return s.repo.FindByUserID(ctx, userID)
	})
}

// ListInput は一覧取得時の入力です。
type ListInput struct {
	Department     *string
	Status         *Status
	EmploymentType *EmploymentType

	Offset int
	Limit  int
}

// ListResult は一覧取得結果を表します。
type ListResult struct {
	Items  []*Employee `json:"items"`
	Total  int64       `json:"total"`
	Offset int         `json:"offset"`
	Limit  int         `json:"limit"`
}

// List は社員一覧を取得します。HR ロール専用で、HR_Manager の結果
// からは HR_Admin が除外されます。
func (s *Service) List(ctx context.Context, actor Actor, in ListInput) (*ListResult, error) {
	role := actor.Role()
	if !rbac.CanPerformHROperations(role) {
		return nil, ErrPermissionDenied
	}

	offset, limit := normalizePage(in.Offset, in.Limit)

	filter := ListFilter{
		Department:     in.Department,
		Status:         in.Status,
		EmploymentType: in.EmploymentType,
		Offset:         offset,
		Limit:          limit,
	}
	if role == rbac.RoleHRManager {
		exclude := string(rbac.RoleHRAdmin)
		filter.ExcludeRole = &exclude
	}

	// キャッシュキーはページングのみを含むため、結果が可視性に
	// 依存しない HR_Admin の無フィルタ一覧だけをキャッシュします。
	cacheable := role == rbac.RoleHRAdmin &&
		in.Department == nil && in.Status == nil && in.EmploymentType == nil
	key := cache.ListKey(offset, limit)

	if cacheable {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var result ListResult
			if err := json.Unmarshal(raw, &result); err == nil {
				return &result, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			s.logger.WarnContext(ctx, "cache: read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	var (
		items []*Employee
		total int64
	)
	err := s.tx.WithinReadOnly(ctx, func(ctx context.Context) error {
		var err error
		items, total, err = s.repo.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &ListResult{Items: items, Total: total, Offset: offset, Limit: limit}
	if cacheable {
		s.setCached(ctx, key, result, s.cacheTTL)
	}
	return result, nil
}

// ListSummary は給与・口座情報を含まない社員サマリの一覧を返します。
// マネージャにも許可される軽量ビューです。
func (s *Service) ListSummary(ctx context.Context, actor Actor, in ListInput) ([]Summary, int64, error) {
	if !rbac.CanViewTeamMembers(actor.Role()) {
		return nil, 0, ErrPermissionDenied
	}

	offset, limit := normalizePage(in.Offset, in.Limit)

	var (
		items []*Employee
		total int64
	)
	err := s.tx.WithinReadOnly(ctx, func(ctx context.Context) error {
		var err error
		items, total, err = s.repo.List(ctx, ListFilter{
			Department:     in.Department,
			Status:         in.Status,
			EmploymentType: in.EmploymentType,
			Offset:         offset,
			Limit:          limit,
		})
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]Summary, 0, len(items))
	for _, e := range items {
		summaries = append(summaries, SummaryOf(e))
	}
	return summaries, total, nil
}

// DashboardMetrics は HR ダッシュボード用の集計値を返します。
// 集計クエリは重いため、一覧より短い TTL で独立にキャッシュします。
func (s *Service) DashboardMetrics(ctx context.Context, actor Actor) (*DashboardMetrics, error) {
	if !rbac.CanPerformHROperations(actor.Role()) {
		return nil, ErrPermissionDenied
	}

	if raw, err := s.cache.Get(ctx, cache.DashboardMetricsKey); err == nil {
		var metrics DashboardMetrics
		if err := json.Unmarshal(raw, &metrics); err == nil {
			return &metrics, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.WarnContext(ctx, "cache: read failed",
			slog.String("key", cache.DashboardMetricsKey),
			slog.String("error", err.Error()),
		)
	}

	var metrics *DashboardMetrics
	err := s.tx.WithinReadOnly(ctx, func(ctx context.Context) error {
		var err error
		metrics, err = s.repo.Metrics(ctx, s.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.setCached(ctx, cache.DashboardMetricsKey, metrics, s.metricsTTL)
	return metrics, nil
}

// cachedEmployee は単一レコードの read-through です。キャッシュ障害は
// ログに残してデータベースへフォールバックします。
func (s *Service) cachedEmployee(ctx context.Context, key string, fetch func(context.Context) (*Employee, error)) (*Employee, error) {
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var e Employee
		if err := json.Unmarshal(raw, &e); err == nil {
			return &e, nil
		}
		s.logger.WarnContext(ctx, "cache: corrupt entry",
			slog.String("key", key),
		)
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.WarnContext(ctx, "cache: read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	e, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	s.setCached(ctx, key, e, s.cacheTTL)
	return e, nil
}

func (s *Service) setCached(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, ttl); err != nil {
		s.logger.WarnContext(ctx, "cache: write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListPageSize
	}
	if limit > maxListPageSize {
		limit = maxListPageSize
	}
	return offset, limit
}
