package indications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Indication
	seq  map[string]int // orden de creación
	next int
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Indication{}, seq: map[string]int{}}
}

func (r *testRepo) Create(ctx context.Context, ind Indication) error {
	if ind.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[ind.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[ind.ID] = ind
	r.seq[ind.ID] = r.next
	r.next++
	return nil
}

func (r *testRepo) Update(ctx context.Context, ind Indication, expectedVersion int) error {
	cur, ok := r.byID[ind.ID]
	if !ok {
		return errRepoNotFound
	}
	if cur.Version != expectedVersion {
		return fmt.Errorf("%w: expected %d, got %d", ErrVersionConflict, expectedVersion, cur.Version)
	}
	r.byID[ind.ID] = ind
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Indication, error) {
	ind, ok := r.byID[id]
	if !ok {
		return Indication{}, errRepoNotFound
	}
	return ind, nil
}

func (r *testRepo) ListActive(ctx context.Context, productID, speciesID, routeID string) ([]Indication, error) {
	out := make([]Indication, 0)
	for _, ind := range r.byID {
		if ind.Status != StatusActive {
			continue
		}
		if ind.ProductID == productID && ind.SpeciesID == speciesID && ind.RouteID == routeID {
			out = append(out, ind)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.seq[out[i].ID] < r.seq[out[j].ID]
	})
	return out, nil
}

func (r *testRepo) ListByProduct(ctx context.Context, productID string) ([]Indication, error) {
	out := make([]Indication, 0)
	for _, ind := range r.byID {
		if ind.ProductID == productID {
			out = append(out, ind)
		}
	}
	return out, nil
}

func validCreate() CreateInput {
	return CreateInput{
		ProductID:          "prod-1",
		SpeciesID:          "sp-bovine",
		RouteID:            "rt-im",
		DoseMin:            1,
		DoseMax:            2,
		DoseUnit:           "ml/50kg",
		ProtocolDays:       3,
		WithdrawalMeatDays: 28,
		WithdrawalMilkDays: 7,
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_RejectsNegativeWithdrawal(t *testing.T) {
	svc := NewService(newTestRepo())

	in := validCreate()
	in.WithdrawalMeatDays = -1

	_, err := svc.Create(context.Background(), in)
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Create_RejectsDuplicateDimensions(t *testing.T) {
	svc := NewService(newTestRepo())

	in := validCreate()
	in.CountryCode = "dz" // se normaliza a DZ

	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("first create: %v", err)
	}

	in2 := validCreate()
	in2.CountryCode = "DZ"
	_, err := svc.Create(context.Background(), in2)
	if err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate for same 5-tuple, got %v", err)
	}

	// Distinta dimensión opcional => permitido
	in3 := validCreate()
	in3.CountryCode = "DZ"
	in3.AgeCategoryID = "ac-bov-calf"
	if _, err := svc.Create(context.Background(), in3); err != nil {
		t.Fatalf("different age category should be allowed: %v", err)
	}
}

func TestService_Update_VersionConflict(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	ind, err := svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Primer update con la versión leída: ok
	upd := UpdateInput{DoseMin: 1, DoseMax: 3, DoseUnit: "ml/50kg", WithdrawalMeatDays: 30}
	got, err := svc.Update(context.Background(), ind.ID, ind.Version, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Version != ind.Version+1 {
		t.Fatalf("expected version bump to %d, got %d", ind.Version+1, got.Version)
	}

	// Segundo update con la versión vieja: conflicto, no retry interno
	_, err = svc.Update(context.Background(), ind.ID, ind.Version, upd)
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestService_SoftDelete_RemovesFromResolution(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	ind, err := svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.SoftDelete(context.Background(), ind.ID, ind.Version); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	_, found, err := svc.Resolve(context.Background(), ResolveQuery{
		ProductID: "prod-1", SpeciesID: "sp-bovine", RouteID: "rt-im",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if found {
		t.Fatalf("deleted indication must not resolve")
	}

	// El registro sigue existiendo (histórico)
	got, err := svc.GetByID(context.Background(), ind.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got.Status != StatusDeleted {
		t.Fatalf("expected status deleted, got %s", got.Status)
	}
}

func TestService_Resolve_ZeroCandidates_NoError(t *testing.T) {
	svc := NewService(newTestRepo())

	res, found, err := svc.Resolve(context.Background(), ResolveQuery{
		ProductID: "prod-x", SpeciesID: "sp-bovine", RouteID: "rt-im",
	})
	if err != nil {
		t.Fatalf("expected nil error for empty candidate set, got %v", err)
	}
	if found {
		t.Fatalf("expected not found, got %+v", res)
	}
}

func TestService_Create_SetsTimestampsAndVersion(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ind, err := svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ind.CreatedAt != now || ind.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}
	if ind.Version != 1 {
		t.Fatalf("expected initial version 1, got %d", ind.Version)
	}
}
