package treatments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"livestock-health/internal/domain/indications"
	"livestock-health/internal/platform/logger"
)

// testRepo es un repo en memoria mínimo para tests del servicio.
type testRepo struct {
	mu    sync.Mutex
	items map[string]Treatment
}

func newTestRepo() *testRepo {
	return &testRepo{items: map[string]Treatment{}}
}

func (r *testRepo) Create(_ context.Context, t Treatment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[t.ID] = t
	return nil
}

func (r *testRepo) Update(_ context.Context, t Treatment, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[t.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != expectedVersion {
		return ErrVersionConflict
	}
	r.items[t.ID] = t
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Treatment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return Treatment{}, ErrNotFound
	}
	return t, nil
}

func (r *testRepo) ListByFarm(_ context.Context, farmID string, _ ListFilter) ([]Treatment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Treatment
	for _, t := range r.items {
		if t.FarmID == farmID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *testRepo) ListOverdue(_ context.Context, farmID string, now time.Time) ([]Treatment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Treatment
	for _, t := range r.items {
		if t.FarmID == farmID && t.Status == StatusActive && t.NextDueDate != nil && t.NextDueDate.Before(now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *testRepo) ListVaccinationsDue(_ context.Context, farmID string, from, to time.Time) ([]Treatment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Treatment
	for _, t := range r.items {
		if t.FarmID != farmID || t.Kind != KindVaccination || t.Status != StatusActive || t.NextDueDate == nil {
			continue
		}
		if !t.NextDueDate.Before(from) && !t.NextDueDate.After(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

// stubResolver devuelve una resolución fija (o nada).
type stubResolver struct {
	res   indications.Resolution
	found bool
	err   error
}

func (s stubResolver) Resolve(_ context.Context, _ indications.ResolveQuery) (indications.Resolution, bool, error) {
	return s.res, s.found, s.err
}

func testLogger() logger.Logger {
	return logger.New(logger.Options{Level: logger.Error})
}

func newTestService(resolver IndicationResolver) (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, resolver, testLogger())
	svc.now = func() time.Time { return time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func baseInput(date time.Time) CreateInput {
	return CreateInput{
		AnimalID:  "animal-1",
		ProductID: "prod-1",
		Kind:      KindTreatment,
		Date:      date,
		Dose:      5,
		DoseUnit:  "ml",
		SpeciesID: "sp-bovine",
		RouteID:   "rt-im",
	}
}

func TestCreate_AutoResolution_SetsMeatDateAndAutoSource(t *testing.T) {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	svc, _ := newTestService(stubResolver{
		res: indications.Resolution{
			Indication: indications.Indication{ID: "ind-1", WithdrawalMeatDays: 28, WithdrawalMilkDays: 4},
			Tier:       indications.TierCountry,
		},
		found: true,
	})

	in := baseInput(date)
	in.AutoCalculateWithdrawal = true

	tr, plan, err := svc.Create(context.Background(), "farm-1", in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if tr.WithdrawalSource != WithdrawalAuto {
		t.Fatalf("source = %q, quería auto", tr.WithdrawalSource)
	}
	if tr.IndicationID != "ind-1" {
		t.Fatalf("IndicationID = %q", tr.IndicationID)
	}
	wantMeat := date.AddDate(0, 0, 28)
	if tr.WithdrawalEndDate == nil || !tr.WithdrawalEndDate.Equal(wantMeat) {
		t.Fatalf("WithdrawalEndDate = %v, quería %s (convención: carne)", tr.WithdrawalEndDate, wantMeat)
	}
	if plan.MilkEndDate == nil || !plan.MilkEndDate.Equal(date.AddDate(0, 0, 4)) {
		t.Fatalf("el plan debe llevar la ventana de leche: %v", plan.MilkEndDate)
	}
	if plan.Tier != indications.TierCountry {
		t.Fatalf("Tier = %q", plan.Tier)
	}
}

func TestCreate_NoIndication_VisibleOmissionNeverZeroDays(t *testing.T) {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	svc, _ := newTestService(stubResolver{found: false})

	in := baseInput(date)
	in.AutoCalculateWithdrawal = true

	tr, plan, err := svc.Create(context.Background(), "farm-1", in)
	if err != nil {
		t.Fatalf("la ausencia de indicación no es un error: %v", err)
	}

	if tr.WithdrawalEndDate != nil {
		t.Fatalf("sin indicación no debe inventarse fecha, got %v", tr.WithdrawalEndDate)
	}
	if tr.WithdrawalSource != WithdrawalNone {
		t.Fatalf("source = %q, quería none (omisión visible)", tr.WithdrawalSource)
	}
	if plan.Indication != nil {
		t.Fatalf("plan debe quedar vacío, got %+v", plan.Indication)
	}
}

func TestCreate_ManualDate_UsedVerbatim(t *testing.T) {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	end := date.AddDate(0, 0, 14)
	svc, _ := newTestService(stubResolver{found: false})

	in := baseInput(date)
	in.WithdrawalEndDate = &end

	tr, _, err := svc.Create(context.Background(), "farm-1", in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tr.WithdrawalSource != WithdrawalManual {
		t.Fatalf("source = %q, quería manual", tr.WithdrawalSource)
	}
	if tr.WithdrawalEndDate == nil || !tr.WithdrawalEndDate.Equal(end) {
		t.Fatalf("la fecha manual se usa tal cual, got %v", tr.WithdrawalEndDate)
	}
}

func TestCreate_ManualDateBeforeTreatment_Rejected(t *testing.T) {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	end := date.AddDate(0, 0, -1)
	svc, _ := newTestService(stubResolver{found: false})

	in := baseInput(date)
	in.WithdrawalEndDate = &end

	if _, _, err := svc.Create(context.Background(), "farm-1", in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("fecha de fin anterior al tratamiento debe rechazarse, got %v", err)
	}
}

func TestCreate_RequiresAnimalOrLot(t *testing.T) {
	svc, _ := newTestService(stubResolver{found: false})

	in := baseInput(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	in.AnimalID = ""
	in.LotID = ""

	if _, _, err := svc.Create(context.Background(), "farm-1", in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("sin animal ni lote debe rechazarse, got %v", err)
	}
}

func TestCreate_ResolverError_Propagates(t *testing.T) {
	boom := errors.New("resolver down")
	svc, _ := newTestService(stubResolver{err: boom})

	in := baseInput(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	in.AutoCalculateWithdrawal = true

	if _, _, err := svc.Create(context.Background(), "farm-1", in); !errors.Is(err, boom) {
		t.Fatalf("el error del resolver debe propagarse, got %v", err)
	}
}

func TestComplete_IdempotentAndVersionConflict(t *testing.T) {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	svc, _ := newTestService(stubResolver{found: false})

	tr, _, err := svc.Create(context.Background(), "farm-1", baseInput(date))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	done, err := svc.Complete(context.Background(), tr.ID, tr.Version)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != StatusCompleted || done.Version != tr.Version+1 {
		t.Fatalf("Status=%q Version=%d", done.Status, done.Version)
	}

	// Segundo complete con la versión nueva: no-op.
	again, err := svc.Complete(context.Background(), tr.ID, done.Version)
	if err != nil {
		t.Fatalf("Complete idempotente: %v", err)
	}
	if again.Version != done.Version {
		t.Fatalf("el complete repetido no debe subir versión: %d", again.Version)
	}

	// Versión vieja sobre un registro aún activo: conflicto.
	tr2, _, err := svc.Create(context.Background(), "farm-1", baseInput(date))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Complete(context.Background(), tr2.ID, tr2.Version+5); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("versión desfasada debe dar conflicto, got %v", err)
	}
}
