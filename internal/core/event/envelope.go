package event

// Type は本サービスが発行するイベント種別の閉じた列挙です。
type Type string

const (
	TypeEmployeeCreated     Type = "employee.created"
	TypeEmployeeUpdated     Type = "employee.updated"
	TypeEmployeeDeleted     Type = "employee.deleted"
	TypeEmployeeTerminated  Type = "employee.terminated"
	TypeEmployeePromoted    Type = "employee.promoted"
	TypeEmployeeTransferred Type = "employee.transferred"
	TypeEmployeeSuspended   Type = "employee.suspended"
	TypeEmployeeActivated   Type = "employee.activated"
	TypeSalaryUpdated       Type = "employee.salary.updated"
	TypeProbationStarted    Type = "employee.probation.started"
	TypeContractStarted     Type = "employee.contract.started"
)

// Metadata はトレーシングと相関付けのために全イベントへ付与されます。
type Metadata struct {
	SourceService string `json:"source_service"`
	CorrelationID string `json:"correlation_id"`
	CausationID   string `json:"causation_id,omitempty"`
	ActorUserID   string `json:"actor_user_id,omitempty"`
	ActorRole     string `json:"actor_role,omitempty"`
	TraceID       string `json:"trace_id,omitempty"`
}

// Envelope は全イベント共通のワイヤ形式です。data には型付きペイロードが
// そのまま JSON 化されて入ります。
type Envelope struct {
	EventID   string   `json:"event_id"`
	EventType Type     `json:"event_type"`
	Timestamp string   `json:"timestamp"`
	Version   string   `json:"version"`
	Data      Payload  `json:"data"`
	Metadata  Metadata `json:"metadata"`
}

// SchemaVersion は現行のエンベロープスキーマバージョンです。
const SchemaVersion = "1.0"

// SourceService は metadata.source_service の既定値です。
const SourceService = "employee-management-service"
