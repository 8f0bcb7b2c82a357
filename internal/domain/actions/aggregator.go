package actions

import (
	"context"
	"sort"
	"time"

	"livestock-health/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

// Aggregator arma el feed de acciones de una explotación: dispara los
// cuatro collectors en paralelo, junta los resultados y los ordena por
// prioridad. No persiste nada: el feed se recalcula en cada request.
type Aggregator struct {
	lots       LotSource
	treatments TreatmentSource
	animals    AnimalSource

	cfg Config
	log logger.Logger
	now func() time.Time
}

func NewAggregator(lots LotSource, treatments TreatmentSource, animals AnimalSource, cfg Config, log logger.Logger) *Aggregator {
	return &Aggregator{
		lots:       lots,
		treatments: treatments,
		animals:    animals,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

// Feed ejecuta los collectors y devuelve {summary, actions}. Si filter
// no es vacío, la lista se limita a esa categoría, pero el summary se
// calcula SIEMPRE sobre el conjunto sin filtrar: los contadores del
// dashboard son globales.
//
// Si una consulta falla, falla todo el feed (fail-fast): mejor sin
// respuesta que con una respuesta que esconde obligaciones críticas.
func (a *Aggregator) Feed(ctx context.Context, farmID string, filter Category) (Feed, error) {
	now := a.now()

	// Slots fijos por collector: el orden de emisión queda determinístico
	// (desempate del sort estable) sin importar cuál goroutine termina
	// primero.
	var results [4][]Action

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		acts, err := collectWithdrawalExpiry(gctx, a.lots, farmID, now, a.cfg)
		results[0] = acts
		return err
	})
	g.Go(func() error {
		acts, err := collectOverdueTreatments(gctx, a.treatments, farmID, now)
		results[1] = acts
		return err
	})
	g.Go(func() error {
		acts, err := collectUpcomingCare(gctx, a.treatments, a.animals, farmID, now, a.cfg)
		results[2] = acts
		return err
	})
	g.Go(func() error {
		acts, err := collectOpportunities(gctx, a.animals, farmID, a.cfg)
		results[3] = acts
		return err
	})

	if err := g.Wait(); err != nil {
		a.log.Error("action feed aborted", map[string]any{
			"farm_id": farmID,
			"error":   err.Error(),
		})
		return Feed{}, err
	}

	var all []Action
	for _, r := range results {
		all = append(all, r...)
	}

	summary := summarize(all)

	list := all
	if filter != "" {
		list = make([]Action, 0, len(all))
		for _, act := range all {
			if act.Category == filter {
				list = append(list, act)
			}
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return priorityRank(list[i].Priority) < priorityRank(list[j].Priority)
	})

	return Feed{Summary: summary, Actions: list}, nil
}

func summarize(all []Action) Summary {
	var s Summary
	for _, act := range all {
		switch act.Category {
		case CategoryUrgent:
			s.Urgent++
		case CategoryThisWeek:
			s.ThisWeek++
		case CategoryPlanned:
			s.Planned++
		case CategoryOpportunities:
			s.Opportunities++
		}
	}
	return s
}
