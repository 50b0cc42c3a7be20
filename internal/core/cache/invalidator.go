package cache

import (
	"context"
	"log/slog"
)

// Invalidator は従業員レコードの変更後に関連キャッシュを無効化します。
// 無効化はベストエフォートであり、失敗してもエラーを返しません。
// 取り残されたエントリは TTL の満了で回収されます。
type Invalidator struct {
	store  Store
	logger *slog.Logger
}

// NewInvalidator は Invalidator を生成します。logger が nil の場合は
// slog.Default() を使用します。
func NewInvalidator(store Store, logger *slog.Logger) *Invalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invalidator{store: store, logger: logger}
}

// Employee は単一従業員の変更に伴うキャッシュを無効化します。
// レコード本体と ID 系の参照キーを個別に削除し、一覧と
// ダッシュボードはパターンで一括削除します。
func (i *Invalidator) Employee(ctx context.Context, id int64, email string, userID *int64) {
	keys := []string{EmployeeKey(id)}
	if email != "" {
		keys = append(keys, EmailKey(email))
	}
	if userID != nil {
		keys = append(keys, UserKey(*userID))
	}
	if err := i.store.Delete(ctx, keys...); err != nil {
		i.logger.WarnContext(ctx, "cache: delete keys failed",
			slog.Int64("employee_id", id),
			slog.String("error", err.Error()),
		)
	}
	i.deletePatterns(ctx, patternLists, patternDashboard)
}

// All は従業員関連の全キャッシュを無効化します。
func (i *Invalidator) All(ctx context.Context) {
	i.deletePatterns(ctx, patternEmployee, patternLists, patternDashboard)
}

func (i *Invalidator) deletePatterns(ctx context.Context, patterns ...string) {
	for _, pattern := range patterns {
		if err := i.store.DeletePattern(ctx, pattern); err != nil {
			i.logger.WarnContext(ctx, "cache: delete pattern failed",
				slog.String("pattern", pattern),
				slog.String("error", err.Error()),
			)
		}
	}
}
