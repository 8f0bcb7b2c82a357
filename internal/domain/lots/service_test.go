package lots

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory, CAS)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Lot
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Lot{}}
}

func (r *testRepo) Create(ctx context.Context, l Lot) error {
	if l.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[l.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[l.ID] = l
	return nil
}

func (r *testRepo) Update(ctx context.Context, l Lot, expectedVersion int) error {
	cur, ok := r.byID[l.ID]
	if !ok {
		return errRepoNotFound
	}
	if cur.Version != expectedVersion {
		return ErrVersionConflict
	}
	r.byID[l.ID] = l
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Lot, error) {
	l, ok := r.byID[id]
	if !ok {
		return Lot{}, errRepoNotFound
	}
	return l, nil
}

func (r *testRepo) ListByFarm(ctx context.Context, farmID string) ([]Lot, error) {
	out := make([]Lot, 0)
	for _, l := range r.byID {
		if l.FarmID == farmID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *testRepo) ListWithdrawalExpiring(ctx context.Context, farmID string, from, to time.Time) ([]Lot, error) {
	out := make([]Lot, 0)
	for _, l := range r.byID {
		if l.FarmID != farmID || l.Completed || l.WithdrawalEndDate == nil {
			continue
		}
		d := *l.WithdrawalEndDate
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// -------------------------
// Helpers
// -------------------------

var testNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func newTestService(repo *testRepo) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return testNow }
	return svc
}

func mustCreate(t *testing.T, svc *Service) Lot {
	t.Helper()
	l, err := svc.Create(context.Background(), "farm-1", CreateInput{Name: "engorde otoño"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	return l
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_StartsAtVersion1(t *testing.T) {
	svc := newTestService(newTestRepo())

	l := mustCreate(t, svc)
	if l.Version != 1 {
		t.Fatalf("expected version 1, got %d", l.Version)
	}
	if l.Completed {
		t.Fatalf("expected new lot not completed")
	}
	if l.WithdrawalEndDate != nil {
		t.Fatalf("expected no withdrawal window on a new lot")
	}
}

func TestService_SetWithdrawalEnd_SetsWindow(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	l := mustCreate(t, svc)

	end := testNow.AddDate(0, 0, 14)
	updated, err := svc.SetWithdrawalEnd(context.Background(), l.ID, l.Version, end)
	if err != nil {
		t.Fatalf("SetWithdrawalEnd error: %v", err)
	}
	if updated.WithdrawalEndDate == nil || !updated.WithdrawalEndDate.Equal(end) {
		t.Fatalf("expected window %v, got %v", end, updated.WithdrawalEndDate)
	}
	if updated.Version != l.Version+1 {
		t.Fatalf("expected version bump to %d, got %d", l.Version+1, updated.Version)
	}
}

func TestService_SetWithdrawalEnd_NeverShortens(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	l := mustCreate(t, svc)

	far := testNow.AddDate(0, 0, 28)
	l2, err := svc.SetWithdrawalEnd(context.Background(), l.ID, l.Version, far)
	if err != nil {
		t.Fatalf("SetWithdrawalEnd #1 error: %v", err)
	}

	// Una fecha anterior no reemplaza la ventana vigente.
	near := testNow.AddDate(0, 0, 7)
	l3, err := svc.SetWithdrawalEnd(context.Background(), l2.ID, l2.Version, near)
	if err != nil {
		t.Fatalf("SetWithdrawalEnd #2 error: %v", err)
	}
	if l3.WithdrawalEndDate == nil || !l3.WithdrawalEndDate.Equal(far) {
		t.Fatalf("expected window to stay at %v, got %v", far, l3.WithdrawalEndDate)
	}
	if l3.Version != l2.Version {
		t.Fatalf("expected no version bump when window is preserved, got %d vs %d", l3.Version, l2.Version)
	}
}

func TestService_SetWithdrawalEnd_StaleVersionConflicts(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	l := mustCreate(t, svc)

	end := testNow.AddDate(0, 0, 14)
	if _, err := svc.SetWithdrawalEnd(context.Background(), l.ID, l.Version, end); err != nil {
		t.Fatalf("SetWithdrawalEnd error: %v", err)
	}

	// Reintento con la versión vieja y una fecha más lejana: conflicto.
	_, err := svc.SetWithdrawalEnd(context.Background(), l.ID, l.Version, end.AddDate(0, 0, 7))
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestService_Complete_Idempotent_SetsEndDate(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	l := mustCreate(t, svc)

	done, err := svc.Complete(context.Background(), l.ID, l.Version)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if !done.Completed {
		t.Fatalf("expected completed")
	}
	if done.EndDate == nil || !done.EndDate.Equal(testNow) {
		t.Fatalf("expected EndDate set to now, got %v", done.EndDate)
	}

	// Segundo Complete no falla ni toca la versión.
	again, err := svc.Complete(context.Background(), l.ID, done.Version)
	if err != nil {
		t.Fatalf("Complete #2 error: %v", err)
	}
	if again.Version != done.Version {
		t.Fatalf("expected version unchanged on idempotent complete, got %d vs %d", again.Version, done.Version)
	}
}

func TestLot_WithdrawalActive(t *testing.T) {
	future := testNow.AddDate(0, 0, 2)
	past := testNow.AddDate(0, 0, -2)

	cases := []struct {
		name string
		lot  Lot
		want bool
	}{
		{"sin fecha", Lot{}, false},
		{"fecha futura", Lot{WithdrawalEndDate: &future}, true},
		{"fecha pasada", Lot{WithdrawalEndDate: &past}, false},
		{"completado", Lot{WithdrawalEndDate: &future, Completed: true}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.lot.WithdrawalActive(testNow); got != tc.want {
				t.Fatalf("WithdrawalActive = %v, want %v", got, tc.want)
			}
		})
	}
}
