package rbac

// hrRoles は HR 操作を実行できるロール集合です。
var hrRoles = map[Role]struct{}{
	RoleHRAdmin:   {},
	RoleHRManager: {},
}

func isHRRole(role Role) bool {
	_, ok := hrRoles[Normalize(role)]
	return ok
}

// CanViewEmployee は actor が target の社員情報を閲覧できるか判定します。
// 自分自身のレコードの閲覧可否は呼び出し側が isOwn で先に判定します。
func CanViewEmployee(actor, target Role) bool {
	actor = Normalize(actor)

	switch actor {
	case RoleHRAdmin:
		return true
	case RoleHRManager:
		return Level(target) < Level(actor)
	case RoleManager:
		return Level(target) <= Level(RoleEmployee)
	default:
		return false
	}
}

// CanUpdateEmployee は actor が target の社員情報を更新できるか判定します。
// 自分自身のレコードは常に更新可能です（更新対象フィールドは別途制限されます）。
func CanUpdateEmployee(actor, target Role, isOwn bool) bool {
	if isOwn {
		return true
	}

	actor = Normalize(actor)

	switch actor {
	case RoleHRAdmin:
		return true
	case RoleHRManager:
		return Level(target) < Level(actor)
	default:
		return false
	}
}

// CanDeleteEmployee は actor が target の社員を削除できるか判定します。
func CanDeleteEmployee(actor, target Role) bool {
	return hrRankedDecision(actor, target)
}

// CanPromoteEmployee は actor が target の社員を昇進させられるか判定します。
func CanPromoteEmployee(actor, target Role) bool {
	return hrRankedDecision(actor, target)
}

// CanTerminateEmployee は actor が target の社員を解雇できるか判定します。
func CanTerminateEmployee(actor, target Role) bool {
	return hrRankedDecision(actor, target)
}

// CanSuspendEmployee は actor が target の社員を停職させられるか判定します。
// 復職・異動には同格制限がなく CanPerformHROperations のみで判定します。
func CanSuspendEmployee(actor, target Role) bool {
	return hrRankedDecision(actor, target)
}

// CanViewSalary は actor が target の給与情報を閲覧できるか判定します。
// 自分自身の給与は常に閲覧可能です。
func CanViewSalary(actor, target Role, isOwn bool) bool {
	if isOwn {
		return true
	}
	return hrRankedDecision(actor, target)
}

// CanModifySalary は actor が target の給与を変更できるか判定します。
// 閲覧と異なり自分自身のレコードでも例外扱いしません（給与の自己承認を防ぐため、
// ランク比較のみで判定する挙動を維持しています）。
func CanModifySalary(actor, target Role) bool {
	return hrRankedDecision(actor, target)
}

// CanViewTeamMembers は actor が社員一覧（サマリ）を閲覧できるか判定します。
func CanViewTeamMembers(actor Role) bool {
	actor = Normalize(actor)
	return actor == RoleHRAdmin || actor == RoleHRManager || actor == RoleManager
}

// CanPerformHROperations は actor が HR 操作（作成・停止・復帰・異動・
// ダッシュボード閲覧）を実行できるか判定します。
func CanPerformHROperations(actor Role) bool {
	return isHRRole(actor)
}

// hrRankedDecision は「HR_Admin は無制限、HR_Manager は下位ランクのみ、
// それ以外は不可」という共通の判定です。
func hrRankedDecision(actor, target Role) bool {
	actor = Normalize(actor)

	if !isHRRole(actor) {
		return false
	}
	if actor == RoleHRAdmin {
		return true
	}
	return Level(target) < Level(actor)
}
