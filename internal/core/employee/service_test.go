package employee

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PookieLand/employee-management-service/internal/core/cache"
	"github.com/PookieLand/employee-management-service/internal/core/event"
)

type fakeRepo struct {
	byID   map[int64]*Employee
	nextID int64

	findByIDCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[int64]*Employee{}}
}

func (f *fakeRepo) seed(e *Employee) *Employee {
	f.nextID++
	e.ID = f.nextID
	f.byID[e.ID] = e.Clone()
	return e
}

func (f *fakeRepo) Create(_ context.Context, e *Employee) (*Employee, error) {
	f.nextID++
	clone := e.Clone()
	clone.ID = f.nextID
	f.byID[clone.ID] = clone
	return clone.Clone(), nil
}

func (f *fakeRepo) Update(_ context.Context, e *Employee) (*Employee, error) {
	if _, ok := f.byID[e.ID]; !ok {
		return nil, ErrEmployeeNotFound
	}
	f.byID[e.ID] = e.Clone()
	return e.Clone(), nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id int64) (*Employee, error) {
	f.findByIDCalls++
	e, ok := f.byID[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return e.Clone(), nil
}

func (f *fakeRepo) FindByEmail(_ context.Context, email string) (*Employee, error) {
	for _, e := range f.byID {
		if e.Email == email {
			return e.Clone(), nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (f *fakeRepo) FindByUserID(_ context.Context, userID int64) (*Employee, error) {
	for _, e := range f.byID {
		if e.UserID != nil && *e.UserID == userID {
			return e.Clone(), nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (f *fakeRepo) List(_ context.Context, filter ListFilter) ([]*Employee, int64, error) {
	var items []*Employee
	for _, e := range f.byID {
		if filter.ExcludeRole != nil && e.Role == *filter.ExcludeRole {
			continue
		}
		items = append(items, e.Clone())
	}
	return items, int64(len(items)), nil
}

func (f *fakeRepo) Metrics(_ context.Context, _ time.Time) (*DashboardMetrics, error) {
	return &DashboardMetrics{TotalEmployees: int64(len(f.byID))}, nil
}

type memStore struct {
	entries map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{entries: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := m.entries[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return value, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.entries[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *memStore) DeletePattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

type capturedEvent struct {
	topic     string
	eventType string
	data      json.RawMessage
}

type capturingBroker struct {
	events []capturedEvent
}

func (c *capturingBroker) Publish(_ context.Context, topic string, _ string, value []byte) error {
	var envelope struct {
		EventType string          `json:"event_type"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(value, &envelope); err != nil {
		return err
	}
	c.events = append(c.events, capturedEvent{topic: topic, eventType: envelope.EventType, data: envelope.Data})
	return nil
}

func (c *capturingBroker) types() []string {
	out := make([]string, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.eventType)
	}
	return out
}

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time { return s.now }

var testNow = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *fakeRepo, *memStore, *capturingBroker) {
	t.Helper()

	repo := newFakeRepo()
	store := newMemStore()
	broker := &capturingBroker{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := event.NewPublisher(broker, logger)
	service := NewService(repo, store, publisher, logger, WithClock(stubClock{now: testNow}))
	return service, repo, store, broker
}

func hrAdmin() Actor {
	return Actor{UserID: "1", Email: "admin@example.com", Roles: []string{"HR_Admin"}}
}

func hrManager() Actor {
	return Actor{UserID: "2", Email: "hrm@example.com", Roles: []string{"HR_Manager"}}
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }

func TestCreate_PermanentWithProbation(t *testing.T) {
	t.Parallel()

	service, repo, _, broker := newTestService(t)

	created, err := service.Create(context.Background(), hrAdmin(), CreateInput{
		FirstName:       "Taro",
		LastName:        "Yamada",
		Email:           "Taro@Example.com",
		JobTitle:        "Engineer",
		Salary:          decimal.NewFromInt(500000),
		EmploymentType:  EmploymentPermanent,
		ProbationMonths: intPtr(3),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if created.Email != "taro@example.com" {
		t.Errorf("email = %q, want normalized lowercase", created.Email)
	}
	if created.Status != StatusOnProbation {
		t.Errorf("status = %q, want %q", created.Status, StatusOnProbation)
	}
	wantEnd := testNow.AddDate(0, 3, 0)
	if created.ProbationEndDate == nil || !created.ProbationEndDate.Equal(wantEnd) {
		t.Errorf("probation_end_date = %v, want %v", created.ProbationEndDate, wantEnd)
	}
	if _, ok := repo.byID[created.ID]; !ok {
		t.Error("record not persisted")
	}

	wantTypes := []string{"employee.created", "employee.probation.started"}
	if got := broker.types(); len(got) != 2 || got[0] != wantTypes[0] || got[1] != wantTypes[1] {
		t.Errorf("events = %v, want %v", got, wantTypes)
	}
}

func TestCreate_ContractEmitsContractStarted(t *testing.T) {
	t.Parallel()

	service, _, _, broker := newTestService(t)

	start := testNow
	end := testNow.AddDate(1, 0, 0)
	created, err := service.Create(context.Background(), hrAdmin(), CreateInput{
		FirstName:         "Hanako",
		LastName:          "Sato",
		Email:             "hanako@example.com",
		Salary:            decimal.NewFromInt(400000),
		EmploymentType:    EmploymentContract,
		ContractType:      "fixed-term",
		ContractStartDate: &start,
		ContractEndDate:   &end,
		ProbationMonths:   intPtr(3),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// 契約社員は試用期間指定があっても active で開始する。
	if created.Status != StatusActive {
		t.Errorf("status = %q, want %q", created.Status, StatusActive)
	}
	wantTypes := []string{"employee.created", "employee.contract.started"}
	if got := broker.types(); len(got) != 2 || got[0] != wantTypes[0] || got[1] != wantTypes[1] {
		t.Errorf("events = %v, want %v", got, wantTypes)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	t.Parallel()

	service, _, _, broker := newTestService(t)
	ctx := context.Background()

	in := CreateInput{
		FirstName: "Taro",
		LastName:  "Yamada",
		Email:     "taro@example.com",
		Salary:    decimal.NewFromInt(500000),
	}
	if _, err := service.Create(ctx, hrAdmin(), in); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	eventsAfterFirst := len(broker.events)

	if _, err := service.Create(ctx, hrAdmin(), in); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("second Create() error = %v, want ErrEmailAlreadyExists", err)
	}
	if len(broker.events) != eventsAfterFirst {
		t.Errorf("failed create published events: %v", broker.types())
	}
}

func TestCreate_Unauthorized(t *testing.T) {
	t.Parallel()

	service, _, _, _ := newTestService(t)
	actor := Actor{UserID: "5", Email: "emp@example.com", Roles: []string{"employee"}}

	_, err := service.Create(context.Background(), actor, CreateInput{
		FirstName: "Taro",
		LastName:  "Yamada",
		Email:     "taro@example.com",
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Create() error = %v, want ErrPermissionDenied", err)
	}
}

func TestSuspend_HRManagerCannotSuspendHRAdmin(t *testing.T) {
	t.Parallel()

	service, repo, _, broker := newTestService(t)
	admin := repo.seed(&Employee{
		FirstName: "Admin",
		LastName:  "Ichiro",
		Email:     "boss@example.com",
		Role:      "HR_Admin",
		Status:    StatusActive,
	})

	_, err := service.Suspend(context.Background(), hrManager(), admin.ID, "insubordination")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Suspend() error = %v, want ErrPermissionDenied", err)
	}
	if repo.byID[admin.ID].Status != StatusActive {
		t.Errorf("status = %q, want unchanged", repo.byID[admin.ID].Status)
	}
	if len(broker.events) != 0 {
		t.Errorf("denied operation published events: %v", broker.types())
	}
}

func TestActivate_HRManagerCanActivateHRAdmin(t *testing.T) {
	t.Parallel()

	service, repo, _, broker := newTestService(t)
	admin := repo.seed(&Employee{
		FirstName: "Admin",
		LastName:  "Ichiro",
		Email:     "boss@example.com",
		Role:      "HR_Admin",
		Status:    StatusSuspended,
	})

	updated, err := service.Activate(context.Background(), hrManager(), admin.ID)
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if updated.Status != StatusActive {
		t.Errorf("status = %q, want %q", updated.Status, StatusActive)
	}
	if got := broker.types(); len(got) != 1 || got[0] != "employee.activated" {
		t.Errorf("events = %v, want [employee.activated]", got)
	}
}

func TestTransfer_HRManagerCanTransferHRAdmin(t *testing.T) {
	t.Parallel()

	service, repo, _, broker := newTestService(t)
	admin := repo.seed(&Employee{
		FirstName:  "Admin",
		LastName:   "Ichiro",
		Email:      "boss@example.com",
		Role:       "HR_Admin",
		Status:     StatusActive,
		Department: strPtr("Platform"),
		Team:       strPtr("Core"),
	})

	updated, err := service.Transfer(context.Background(), hrManager(), admin.ID, TransferInput{
		NewDepartment: "People",
		NewTeam:       strPtr("Talent"),
	})
	if err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	if updated.Department == nil || *updated.Department != "People" {
		t.Errorf("department = %v, want People", updated.Department)
	}

	if got := broker.types(); len(got) != 1 || got[0] != "employee.transferred" {
		t.Fatalf("events = %v, want [employee.transferred]", got)
	}
	var data struct {
		OldDepartment *string `json:"old_department"`
		NewDepartment string  `json:"new_department"`
		OldTeam       *string `json:"old_team"`
		NewTeam       *string `json:"new_team"`
	}
	if err := json.Unmarshal(broker.events[0].data, &data); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if data.OldDepartment == nil || *data.OldDepartment != "Platform" || data.NewDepartment != "People" {
		t.Errorf("department delta = %v -> %q, want Platform -> People", data.OldDepartment, data.NewDepartment)
	}
	if data.OldTeam == nil || *data.OldTeam != "Core" || data.NewTeam == nil || *data.NewTeam != "Talent" {
		t.Errorf("team delta = %v -> %v, want Core -> Talent", data.OldTeam, data.NewTeam)
	}
}

func TestPromote_EmitsOldAndNewValues(t *testing.T) {
	t.Parallel()

	service, repo, _, broker := newTestService(t)
	e := repo.seed(&Employee{
		FirstName: "Taro",
		LastName:  "Yamada",
		Email:     "taro@example.com",
		Role:      "employee",
		Status:    StatusActive,
		Position:  "Engineer",
		JobTitle:  "Software Engineer",
		Salary:    decimal.NewFromInt(500000),
	})

	updated, err := service.Promote(context.Background(), hrAdmin(), e.ID, PromoteInput{
		NewPosition: "Senior Engineer",
		NewSalary:   decPtr(650000),
	})
	if err != nil {
		t.Fatalf("Promote() error = %v", err)
	}
	if updated.Position != "Senior Engineer" {
		t.Errorf("position = %q, want Senior Engineer", updated.Position)
	}
	if !updated.Salary.Equal(decimal.NewFromInt(650000)) {
		t.Errorf("salary = %s, want 650000", updated.Salary)
	}

	if got := broker.types(); len(got) != 1 || got[0] != "employee.promoted" {
		t.Fatalf("events = %v, want [employee.promoted]", got)
	}
	var data struct {
		OldPosition string           `json:"old_position"`
		NewPosition string           `json:"new_position"`
		OldSalary   *decimal.Decimal `json:"old_salary"`
		NewSalary   *decimal.Decimal `json:"new_salary"`
	}
	if err := json.Unmarshal(broker.events[0].data, &data); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if data.OldPosition != "Engineer" || data.NewPosition != "Senior Engineer" {
		t.Errorf("position delta = %q -> %q", data.OldPosition, data.NewPosition)
	}
	if data.OldSalary == nil || !data.OldSalary.Equal(decimal.NewFromInt(500000)) {
		t.Errorf("old_salary = %v, want 500000", data.OldSalary)
	}
	if data.NewSalary == nil || !data.NewSalary.Equal(decimal.NewFromInt(650000)) {
		t.Errorf("new_salary = %v, want 650000", data.NewSalary)
	}
}

func TestPromote_HRManagerCannotPromoteHRAdmin(t *testing.T) {
	t.Parallel()

	service, repo, _, broker := newTestService(t)
	admin := repo.seed(&Employee{
		FirstName: "Admin",
		LastName:  "Ichiro",
		Email:     "boss@example.com",
		Role:      "HR_Admin",
		Status:    StatusActive,
		Position:  "Director",
	})

	_, err := service.Promote(context.Background(), hrManager(), admin.ID, PromoteInput{NewPosition: "VP"})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Promote() error = %v, want ErrPermissionDenied", err)
	}
	if repo.byID[admin.ID].Position != "Director" {
		t.Errorf("position = %q, want unchanged", repo.byID[admin.ID].Position)
	}
	if len(broker.events) != 0 {
		t.Errorf("denied operation published events: %v", broker.types())
	}
}

func TestUpdateSalary_EmitsDelta(t *testing.T) {
	t.Parallel()

	service, repo, _, broker := newTestService(t)
	e := repo.seed(&Employee{
		FirstName:      "Taro",
		LastName:       "Yamada",
		Email:          "taro@example.com",
		Role:           "employee",
		Status:         StatusActive,
		Salary:         decimal.NewFromInt(500000),
		SalaryCurrency: "JPY",
	})

	updated, err := service.UpdateSalary(context.Background(), hrAdmin(), e.ID, SalaryInput{
		NewSalary: decimal.NewFromInt(550000),
		Reason:    "annual review",
	})
	if err != nil {
		t.Fatalf("UpdateSalary() error = %v", err)
	}
	if !updated.Salary.Equal(decimal.NewFromInt(550000)) {
		t.Errorf("salary = %s, want 550000", updated.Salary)
	}
	if updated.SalaryIncrementDate == nil || !updated.SalaryIncrementDate.Equal(testNow) {
		t.Errorf("salary_increment_date = %v, want %v", updated.SalaryIncrementDate, testNow)
	}

	if got := broker.types(); len(got) != 1 || got[0] != "employee.salary.updated" {
		t.Fatalf("events = %v, want [employee.salary.updated]", got)
	}
	var data struct {
		OldSalary decimal.Decimal `json:"old_salary"`
		NewSalary decimal.Decimal `json:"new_salary"`
		Currency  string          `json:"salary_currency"`
		Reason    string          `json:"reason"`
	}
	if err := json.Unmarshal(broker.events[0].data, &data); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !data.OldSalary.Equal(decimal.NewFromInt(500000)) || !data.NewSalary.Equal(decimal.NewFromInt(550000)) {
		t.Errorf("salary delta = %s -> %s, want 500000 -> 550000", data.OldSalary, data.NewSalary)
	}
	if data.Currency != "JPY" || data.Reason != "annual review" {
		t.Errorf("currency/reason = %q/%q", data.Currency, data.Reason)
	}
}

func TestUpdateSalary_HRManagerCannotAdjustPeer(t *testing.T) {
	t.Parallel()

	service, repo, _, broker := newTestService(t)
	peer := repo.seed(&Employee{
		FirstName: "Hana",
		LastName:  "Sato",
		Email:     "hana@example.com",
		Role:      "HR_Manager",
		Status:    StatusActive,
		Salary:    decimal.NewFromInt(700000),
	})

	_, err := service.UpdateSalary(context.Background(), hrManager(), peer.ID, SalaryInput{
		NewSalary: decimal.NewFromInt(1),
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("UpdateSalary() error = %v, want ErrPermissionDenied", err)
	}
	if len(broker.events) != 0 {
		t.Errorf("denied operation published events: %v", broker.types())
	}
}

func TestUpdateSalary_TerminatedRecordStillAdjustable(t *testing.T) {
	t.Parallel()

	service, repo, _, _ := newTestService(t)
	e := repo.seed(&Employee{
		FirstName: "Taro",
		LastName:  "Yamada",
		Email:     "taro@example.com",
		Role:      "employee",
		Status:    StatusTerminated,
		Salary:    decimal.NewFromInt(500000),
	})

	// 吸収状態が禁じるのはステータス遷移のみで、精算のための
	// 給与改定は通ります。
	updated, err := service.UpdateSalary(context.Background(), hrAdmin(), e.ID, SalaryInput{
		NewSalary: decimal.NewFromInt(0),
		Reason:    "final settlement",
	})
	if err != nil {
		t.Fatalf("UpdateSalary() error = %v", err)
	}
	if !updated.Salary.IsZero() {
		t.Errorf("salary = %s, want 0", updated.Salary)
	}
	if updated.Status != StatusTerminated {
		t.Errorf("status = %q, want unchanged", updated.Status)
	}
}

func TestUpdate_SelfUpdateDropsSalary(t *testing.T) {
	t.Parallel()

	service, repo, _, broker := newTestService(t)
	e := repo.seed(&Employee{
		FirstName: "Taro",
		LastName:  "Yamada",
		Email:     "taro@example.com",
		Role:      "employee",
		Status:    StatusActive,
		Salary:    decimal.NewFromInt(100),
	})
	actor := Actor{UserID: "5", Email: "taro@example.com", Roles: []string{"employee"}}

	updated, err := service.Update(context.Background(), actor, e.ID, UpdateInput{
		Phone:  strPtr("090-0000-0000"),
		Salary: decPtr(999999),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	stored := repo.byID[e.ID]
	if !stored.Salary.Equal(decimal.NewFromInt(100)) {
		t.Errorf("salary = %s, want unchanged 100", stored.Salary)
	}
	if stored.Phone == nil || *stored.Phone != "090-0000-0000" {
		t.Errorf("phone = %v, want applied", stored.Phone)
	}
	if updated.Phone == nil || *updated.Phone != "090-0000-0000" {
		t.Errorf("returned phone = %v", updated.Phone)
	}

	if got := broker.types(); len(got) != 1 || got[0] != "employee.updated" {
		t.Fatalf("events = %v, want [employee.updated]", got)
	}
	var data struct {
		UpdatedFields map[string]any `json:"updated_fields"`
	}
	if err := json.Unmarshal(broker.events[0].data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if _, ok := data.UpdatedFields["phone"]; !ok {
		t.Error("updated_fields missing phone")
	}
	if _, ok := data.UpdatedFields["salary"]; ok {
		t.Error("updated_fields must not contain salary")
	}
}

func TestUpdate_NoUpdatableFields(t *testing.T) {
	t.Parallel()

	service, repo, _, broker := newTestService(t)
	e := repo.seed(&Employee{
		FirstName: "Taro",
		LastName:  "Yamada",
		Email:     "taro@example.com",
		Role:      "employee",
		Status:    StatusActive,
		Salary:    decimal.NewFromInt(100),
	})
	actor := Actor{UserID: "5", Email: "taro@example.com", Roles: []string{"employee"}}

	_, err := service.Update(context.Background(), actor, e.ID, UpdateInput{
		Salary: decPtr(999999),
	})
	if !errors.Is(err, ErrNoUpdatableFields) {
		t.Fatalf("Update() error = %v, want ErrNoUpdatableFields", err)
	}
	if !repo.byID[e.ID].Salary.Equal(decimal.NewFromInt(100)) {
		t.Error("salary mutated on rejected update")
	}
	if len(broker.events) != 0 {
		t.Errorf("rejected update published events: %v", broker.types())
	}
}

func TestTerminate_AbsorbingState(t *testing.T) {
	t.Parallel()

	service, repo, _, broker := newTestService(t)
	e := repo.seed(&Employee{
		FirstName: "Taro",
		LastName:  "Yamada",
		Email:     "taro@example.com",
		Role:      "employee",
		Status:    StatusActive,
	})

	updated, err := service.Terminate(context.Background(), hrAdmin(), e.ID, TerminateInput{Reason: "restructuring"})
	if err != nil {
		t.Fatalf("Terminate() error = %v", err)
	}
	if updated.Status != StatusTerminated {
		t.Errorf("status = %q, want %q", updated.Status, StatusTerminated)
	}
	if updated.TerminatedAt == nil || !updated.TerminatedAt.Equal(testNow) {
		t.Errorf("terminated_at = %v, want %v", updated.TerminatedAt, testNow)
	}

	if got := broker.types(); len(got) != 1 || got[0] != "employee.terminated" {
		t.Fatalf("events = %v, want [employee.terminated]", got)
	}
	var data struct {
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(broker.events[0].data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data.Reason != "restructuring" {
		t.Errorf("reason = %q, want %q", data.Reason, "restructuring")
	}

	if _, err := service.Suspend(context.Background(), hrAdmin(), e.ID, "x"); !errors.Is(err, ErrEmployeeTerminated) {
		t.Errorf("Suspend() after terminate error = %v, want ErrEmployeeTerminated", err)
	}
	if len(broker.events) != 1 {
		t.Errorf("absorbing state still published events: %v", broker.types())
	}
}

func TestGet_Redaction(t *testing.T) {
	t.Parallel()

	service, repo, _, _ := newTestService(t)
	e := repo.seed(&Employee{
		FirstName:         "Taro",
		LastName:          "Yamada",
		Email:             "taro@example.com",
		Role:              "employee",
		Status:            StatusActive,
		Salary:            decimal.NewFromInt(500000),
		SalaryCurrency:    "JPY",
		BankName:          strPtr("Mizuho"),
		BankAccountNumber: strPtr("1234567"),
	})

	manager := Actor{UserID: "3", Email: "mgr@example.com", Roles: []string{"manager"}}
	view, err := service.Get(context.Background(), manager, e.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !view.Salary.IsZero() || view.SalaryCurrency != "" {
		t.Errorf("salary visible to manager: %s %s", view.Salary, view.SalaryCurrency)
	}
	if view.BankAccountNumber != nil {
		t.Error("bank account number visible to manager")
	}
	if view.BankName == nil {
		t.Error("bank name redacted; only account numbers are HR-only")
	}

	peer := Actor{UserID: "4", Email: "other@example.com", Roles: []string{"employee"}}
	if _, err := service.Get(context.Background(), peer, e.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("peer Get() error = %v, want ErrPermissionDenied", err)
	}

	own := Actor{UserID: "5", Email: "taro@example.com", Roles: []string{"employee"}}
	ownView, err := service.Get(context.Background(), own, e.ID)
	if err != nil {
		t.Fatalf("own Get() error = %v", err)
	}
	if !ownView.Salary.Equal(decimal.NewFromInt(500000)) {
		t.Errorf("own salary = %s, want visible", ownView.Salary)
	}
	if ownView.BankAccountNumber != nil {
		t.Error("bank account number is HR-only even on own record")
	}
}

func TestGet_ReadThroughCache(t *testing.T) {
	t.Parallel()

	service, repo, _, _ := newTestService(t)
	e := repo.seed(&Employee{
		FirstName: "Taro",
		LastName:  "Yamada",
		Email:     "taro@example.com",
		Role:      "employee",
		Status:    StatusActive,
	})

	ctx := context.Background()
	if _, err := service.Get(ctx, hrAdmin(), e.ID); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := service.Get(ctx, hrAdmin(), e.ID); err != nil {
		t.Fatalf("second Get() error = %v", err)
	}
	if repo.findByIDCalls != 1 {
		t.Errorf("FindByID calls = %d, want 1 (second read served from cache)", repo.findByIDCalls)
	}
}

func TestUpdate_InvalidatesCache(t *testing.T) {
	t.Parallel()

	service, repo, store, _ := newTestService(t)
	e := repo.seed(&Employee{
		FirstName: "Taro",
		LastName:  "Yamada",
		Email:     "taro@example.com",
		Role:      "employee",
		Status:    StatusActive,
	})

	ctx := context.Background()
	if _, err := service.Get(ctx, hrAdmin(), e.ID); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(store.entries) == 0 {
		t.Fatal("expected cache entry after read")
	}

	if _, err := service.Update(ctx, hrAdmin(), e.ID, UpdateInput{JobTitle: strPtr("Lead")}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if _, ok := store.entries["employee:1"]; ok {
		t.Error("record cache entry not invalidated")
	}
}

func TestList_HRManagerExcludesAdmins(t *testing.T) {
	t.Parallel()

	service, repo, _, _ := newTestService(t)
	repo.seed(&Employee{FirstName: "A", LastName: "B", Email: "a@example.com", Role: "HR_Admin", Status: StatusActive})
	repo.seed(&Employee{FirstName: "C", LastName: "D", Email: "c@example.com", Role: "employee", Status: StatusActive})

	result, err := service.List(context.Background(), hrManager(), ListInput{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, item := range result.Items {
		if item.Role == "HR_Admin" {
			t.Errorf("HR_Admin leaked into HR_Manager list: %q", item.Email)
		}
	}

	employeeActor := Actor{UserID: "9", Email: "c@example.com", Roles: []string{"employee"}}
	if _, err := service.List(context.Background(), employeeActor, ListInput{}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("employee List() error = %v, want ErrPermissionDenied", err)
	}
}
