package actions

import (
	"context"
	"errors"
	"testing"
	"time"

	"livestock-health/internal/domain/animals"
	"livestock-health/internal/domain/lots"
	"livestock-health/internal/domain/treatments"
	"livestock-health/internal/platform/logger"
)

type stubLots struct {
	lots []lots.Lot
	err  error
}

func (s stubLots) ListWithdrawalExpiring(_ context.Context, _ string, from, to time.Time) ([]lots.Lot, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []lots.Lot
	for _, l := range s.lots {
		if l.WithdrawalEndDate == nil {
			continue
		}
		if !l.WithdrawalEndDate.Before(from) && !l.WithdrawalEndDate.After(to) {
			out = append(out, l)
		}
	}
	return out, nil
}

type stubTreatments struct {
	overdue []treatments.Treatment
	vaccs   []treatments.Treatment
	err     error
}

func (s stubTreatments) ListOverdue(_ context.Context, _ string, _ time.Time) ([]treatments.Treatment, error) {
	return s.overdue, s.err
}

func (s stubTreatments) ListVaccinationsDue(_ context.Context, _ string, _, _ time.Time) ([]treatments.Treatment, error) {
	return s.vaccs, s.err
}

type stubAnimals struct {
	unweighed []animals.Animal
	saleReady []animals.Animal
	err       error
}

func (s stubAnimals) ListUnweighedSince(_ context.Context, _ string, _ time.Time) ([]animals.Animal, error) {
	return s.unweighed, s.err
}

func (s stubAnimals) ListSaleReady(_ context.Context, _ string, _ float64) ([]animals.Animal, error) {
	return s.saleReady, s.err
}

var testNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func newTestAggregator(l LotSource, t TreatmentSource, a AnimalSource) *Aggregator {
	agg := NewAggregator(l, t, a, DefaultConfig(), logger.New(logger.Options{Level: logger.Error}))
	agg.now = func() time.Time { return testNow }
	return agg
}

func datePtr(t time.Time) *time.Time { return &t }

func TestFeed_WithdrawalWithinWindowIsUrgent_OutsideIsNot(t *testing.T) {
	soon := testNow.AddDate(0, 0, 2)  // dentro de los 3 días
	later := testNow.AddDate(0, 0, 10) // fuera

	agg := newTestAggregator(
		stubLots{lots: []lots.Lot{
			{ID: "lot-soon", Name: "Engorde A", WithdrawalEndDate: &soon},
			{ID: "lot-later", Name: "Engorde B", WithdrawalEndDate: &later},
		}},
		stubTreatments{},
		stubAnimals{},
	)

	feed, err := agg.Feed(context.Background(), "farm-1", "")
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}

	if feed.Summary.Urgent != 1 {
		t.Fatalf("Urgent = %d, quería 1", feed.Summary.Urgent)
	}
	if len(feed.Actions) != 1 {
		t.Fatalf("acciones = %d, quería solo el lote que cierra en 2 días", len(feed.Actions))
	}
	act := feed.Actions[0]
	if act.ID != "withdrawal-expiry:lot-soon" || act.Priority != PriorityCritical || act.Category != CategoryUrgent {
		t.Fatalf("acción inesperada: %+v", act)
	}
}

func TestFeed_CompletedLotIsSkipped(t *testing.T) {
	soon := testNow.AddDate(0, 0, 1)
	agg := newTestAggregator(
		stubLots{lots: []lots.Lot{{ID: "lot-1", Completed: true, WithdrawalEndDate: &soon}}},
		stubTreatments{},
		stubAnimals{},
	)

	feed, err := agg.Feed(context.Background(), "farm-1", "")
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(feed.Actions) != 0 {
		t.Fatalf("un lote completado no genera acción, got %+v", feed.Actions)
	}
}

func fullFixture() (stubLots, stubTreatments, stubAnimals) {
	soon := testNow.AddDate(0, 0, 2)
	overdueAt := testNow.AddDate(0, 0, -3)
	vaccAt := testNow.AddDate(0, 0, 5)

	return stubLots{lots: []lots.Lot{{ID: "lot-1", Name: "Engorde A", WithdrawalEndDate: &soon}}},
		stubTreatments{
			overdue: []treatments.Treatment{{ID: "tr-over", NextDueDate: &overdueAt}},
			vaccs:   []treatments.Treatment{{ID: "tr-vacc", Kind: treatments.KindVaccination, NextDueDate: &vaccAt}},
		},
		stubAnimals{
			unweighed: []animals.Animal{{ID: "an-1"}, {ID: "an-2"}},
			saleReady: []animals.Animal{{ID: "an-3"}},
		}
}

func TestFeed_SummaryIsGlobalEvenWhenFiltered(t *testing.T) {
	l, tr, an := fullFixture()
	agg := newTestAggregator(l, tr, an)

	unfiltered, err := agg.Feed(context.Background(), "farm-1", "")
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	want := Summary{Urgent: 2, ThisWeek: 2, Opportunities: 1}
	if unfiltered.Summary != want {
		t.Fatalf("Summary = %+v, quería %+v", unfiltered.Summary, want)
	}
	if len(unfiltered.Actions) != 5 {
		t.Fatalf("acciones sin filtrar = %d, quería 5", len(unfiltered.Actions))
	}

	filtered, err := agg.Feed(context.Background(), "farm-1", CategoryUrgent)
	if err != nil {
		t.Fatalf("Feed filtrado: %v", err)
	}
	if filtered.Summary != want {
		t.Fatalf("el filtro no debe tocar el summary: %+v", filtered.Summary)
	}
	if len(filtered.Actions) != 2 {
		t.Fatalf("acciones filtradas = %d, quería 2", len(filtered.Actions))
	}
	for _, act := range filtered.Actions {
		if act.Category != CategoryUrgent {
			t.Fatalf("se coló una categoría ajena al filtro: %+v", act)
		}
	}
}

func TestFeed_OrderedByPriorityAndDeterministic(t *testing.T) {
	l, tr, an := fullFixture()
	agg := newTestAggregator(l, tr, an)

	first, err := agg.Feed(context.Background(), "farm-1", "")
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}

	for i := 1; i < len(first.Actions); i++ {
		if priorityRank(first.Actions[i-1].Priority) > priorityRank(first.Actions[i].Priority) {
			t.Fatalf("orden de prioridad roto en posición %d: %s tras %s",
				i, first.Actions[i].Priority, first.Actions[i-1].Priority)
		}
	}

	// El feed es determinístico: misma entrada, mismo orden, sin importar
	// qué goroutine terminó primero.
	for run := 0; run < 5; run++ {
		again, err := agg.Feed(context.Background(), "farm-1", "")
		if err != nil {
			t.Fatalf("Feed: %v", err)
		}
		for i := range first.Actions {
			if again.Actions[i].ID != first.Actions[i].ID {
				t.Fatalf("orden no determinístico en corrida %d, posición %d: %s vs %s",
					run, i, again.Actions[i].ID, first.Actions[i].ID)
			}
		}
	}

	// Desempate por orden de emisión: ambos críticos, el collector de
	// supresión emite antes que el de tratamientos atrasados.
	if first.Actions[0].Type != "withdrawal_expiry" || first.Actions[1].Type != "overdue_treatment" {
		t.Fatalf("desempate por orden de emisión roto: %s, %s", first.Actions[0].Type, first.Actions[1].Type)
	}
}

func TestFeed_CollectorFailureAbortsWholeFeed(t *testing.T) {
	l, _, an := fullFixture()
	boom := errors.New("db down")
	agg := newTestAggregator(l, stubTreatments{err: boom}, an)

	if _, err := agg.Feed(context.Background(), "farm-1", ""); !errors.Is(err, boom) {
		t.Fatalf("una consulta rota debe abortar el feed completo, got %v", err)
	}
}

func TestFeed_EmptyFarmIsNotAnError(t *testing.T) {
	agg := newTestAggregator(stubLots{}, stubTreatments{}, stubAnimals{})

	feed, err := agg.Feed(context.Background(), "farm-1", "")
	if err != nil {
		t.Fatalf("cero matches es normal, no un error: %v", err)
	}
	if len(feed.Actions) != 0 || feed.Summary != (Summary{}) {
		t.Fatalf("feed vacío esperado, got %+v", feed)
	}
}

func TestFeed_StaleWeighingsCollapseIntoOneAction(t *testing.T) {
	agg := newTestAggregator(
		stubLots{},
		stubTreatments{},
		stubAnimals{unweighed: []animals.Animal{{ID: "a"}, {ID: "b"}, {ID: "c"}}},
	)

	feed, err := agg.Feed(context.Background(), "farm-1", "")
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(feed.Actions) != 1 {
		t.Fatalf("las pesadas atrasadas van en una sola acción, got %d", len(feed.Actions))
	}
	if feed.Actions[0].AffectedCount != 3 || feed.Actions[0].Priority != PriorityMedium {
		t.Fatalf("acción agregada inesperada: %+v", feed.Actions[0])
	}
}
