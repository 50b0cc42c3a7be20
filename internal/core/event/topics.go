package event

import "fmt"

// 発行先トピック。<domain>-<event> の命名規約に従います。
const (
	TopicEmployeeCreated     = "employee-created"
	TopicEmployeeUpdated     = "employee-updated"
	TopicEmployeeDeleted     = "employee-deleted"
	TopicEmployeeTerminated  = "employee-terminated"
	TopicEmployeePromoted    = "employee-promoted"
	TopicEmployeeTransferred = "employee-transferred"
	TopicSalaryUpdated       = "employee-salary-updated"
	TopicProbationStarted    = "employee-probation-started"
	TopicContractStarted     = "employee-contract-started"
)

// ID 管理サービスのオンボーディングフローから購読するトピック。
const (
	TopicOnboardingInitiated       = "user-onboarding-initiated"
	TopicOnboardingIdentityCreated = "user-onboarding-asgardeo-created"
	TopicOnboardingEmployeeCreated = "user-onboarding-employee-created"
	TopicOnboardingCompleted       = "user-onboarding-completed"
	TopicOnboardingFailed          = "user-onboarding-failed"
)

// topicByType はイベント種別から発行先トピックへの静的対応表です。
// suspended / activated はステータス変更として employee-updated を
// 共有する点に注意してください（既存コンシューマとの互換挙動）。
var topicByType = map[Type]string{
	TypeEmployeeCreated:     TopicEmployeeCreated,
	TypeEmployeeUpdated:     TopicEmployeeUpdated,
	TypeEmployeeDeleted:     TopicEmployeeDeleted,
	TypeEmployeeTerminated:  TopicEmployeeTerminated,
	TypeEmployeePromoted:    TopicEmployeePromoted,
	TypeEmployeeTransferred: TopicEmployeeTransferred,
	TypeEmployeeSuspended:   TopicEmployeeUpdated,
	TypeEmployeeActivated:   TopicEmployeeUpdated,
	TypeSalaryUpdated:       TopicSalaryUpdated,
	TypeProbationStarted:    TopicProbationStarted,
	TypeContractStarted:     TopicContractStarted,
}

// TopicFor はイベント種別に対応するトピック名を返します。
func TopicFor(t Type) (string, error) {
	topic, ok := topicByType[t]
	if !ok {
		return "", fmt.Errorf("event: no topic mapped for type %q", t)
	}
	return topic, nil
}

// OnboardingTopics はリコンサイラが購読するトピック一覧を返します。
func OnboardingTopics() []string {
	return []string{
		TopicOnboardingInitiated,
		TopicOnboardingIdentityCreated,
		TopicOnboardingEmployeeCreated,
		TopicOnboardingCompleted,
		TopicOnboardingFailed,
	}
}
