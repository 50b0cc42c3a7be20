package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"
)

type fakeStore struct {
	deleted  []string
	patterns []string
	err      error
}

func (f *fakeStore) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (f *fakeStore) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (f *fakeStore) Delete(_ context.Context, keys ...string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, keys...)
	return nil
}

func (f *fakeStore) DeletePattern(_ context.Context, pattern string) error {
	if f.err != nil {
		return f.err
	}
	f.patterns = append(f.patterns, pattern)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInvalidator_Employee(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	invalidator := NewInvalidator(store, discardLogger())
	userID := int64(77)

	invalidator.Employee(context.Background(), 42, "taro@example.com", &userID)

	wantKeys := []string{"employee:42", "employee:email:taro@example.com", "employee:user:77"}
	if !slices.Equal(store.deleted, wantKeys) {
		t.Errorf("deleted = %v, want %v", store.deleted, wantKeys)
	}
	wantPatterns := []string{"employees:*", "dashboard:*"}
	if !slices.Equal(store.patterns, wantPatterns) {
		t.Errorf("patterns = %v, want %v", store.patterns, wantPatterns)
	}
}

func TestInvalidator_EmployeeWithoutOptionalKeys(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	invalidator := NewInvalidator(store, discardLogger())

	invalidator.Employee(context.Background(), 7, "", nil)

	wantKeys := []string{"employee:7"}
	if !slices.Equal(store.deleted, wantKeys) {
		t.Errorf("deleted = %v, want %v", store.deleted, wantKeys)
	}
}

func TestInvalidator_All(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	invalidator := NewInvalidator(store, discardLogger())

	invalidator.All(context.Background())

	wantPatterns := []string{"employee:*", "employees:*", "dashboard:*"}
	if !slices.Equal(store.patterns, wantPatterns) {
		t.Errorf("patterns = %v, want %v", store.patterns, wantPatterns)
	}
}

func TestInvalidator_SwallowsStoreErrors(t *testing.T) {
	t.Parallel()

	store := &fakeStore{err: errors.New("connection refused")}
	invalidator := NewInvalidator(store, discardLogger())

	// エラーが返らずパニックしないことのみを確認する。
	invalidator.Employee(context.Background(), 1, "taro@example.com", nil)
	invalidator.All(context.Background())
}
