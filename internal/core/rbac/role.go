package rbac

// Role は権限判定に用いるロール名を表します。
type Role string

const (
	RoleHRAdmin   Role = "HR_Admin"
	RoleHRManager Role = "HR_Manager"
	RoleManager   Role = "manager"
	RoleEmployee  Role = "employee"

	// roleAdminAlias は HR_Admin の別名として扱います。
	roleAdminAlias Role = "admin"
)

// roleLevels はロールの権限レベルです。数値が大きいほど権限が強くなります。
var roleLevels = map[Role]int{
	RoleHRAdmin:    4,
	roleAdminAlias: 4,
	RoleHRManager:  3,
	RoleManager:    2,
	RoleEmployee:   1,
}

// Level はロールの権限レベルを返します。未知のロールは 0 です。
func Level(role Role) int {
	return roleLevels[Normalize(role)]
}

// Normalize は別名ロールを正規化します。
func Normalize(role Role) Role {
	if role == roleAdminAlias {
		return RoleHRAdmin
	}
	return role
}

// Highest は複数ロールのうち最も権限の強いロールを返します。
// 空リストや未知ロールのみの場合は employee を返します。
func Highest(roles []string) Role {
	highest := RoleEmployee
	highestLevel := 0

	for _, raw := range roles {
		role := Role(raw)
		if level := Level(role); level > highestLevel {
			highestLevel = level
			highest = role
		}
	}

	return Normalize(highest)
}
