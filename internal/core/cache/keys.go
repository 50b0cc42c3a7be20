package cache

import "fmt"

// キャッシュキーの命名規約。単一レコードは ID 系のキー、一覧と
// ダッシュボードはパターン削除前提のプレフィックス付きキーを使います。
const (
	patternEmployee  = "employee:*"
	patternLists     = "employees:*"
	patternDashboard = "dashboard:*"

	// DashboardMetricsKey はダッシュボード集計のキャッシュキーです。
	DashboardMetricsKey = "dashboard:employee:metrics"
)

// EmployeeKey は従業員 ID によるキャッシュキーを返します。
func EmployeeKey(id int64) string {
	return fmt.Sprintf("employee:%d", id)
}

// EmailKey はメールアドレスによるキャッシュキーを返します。
func EmailKey(email string) string {
	return fmt.Sprintf("employee:email:%s", email)
}

// UserKey はユーザー ID によるキャッシュキーを返します。
func UserKey(userID int64) string {
	return fmt.Sprintf("employee:user:%d", userID)
}

// ListKey は一覧取得のページングパラメータによるキャッシュキーを返します。
func ListKey(offset, limit int) string {
	return fmt.Sprintf("employees:list:%d:%d", offset, limit)
}
