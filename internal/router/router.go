package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "livestock-health/internal/adapters/storage/memory"
	pg "livestock-health/internal/adapters/storage/postgres"
	"livestock-health/internal/domain/accessgrants"
	"livestock-health/internal/domain/actions"
	"livestock-health/internal/domain/animals"
	"livestock-health/internal/domain/catalog"
	"livestock-health/internal/domain/farms"
	"livestock-health/internal/domain/indications"
	"livestock-health/internal/domain/lots"
	"livestock-health/internal/domain/treatments"
	"livestock-health/internal/middleware"
	"livestock-health/internal/platform/logger"
	"livestock-health/internal/ports/auth"

	_ "livestock-health/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger logger.Logger

	// Parámetros de los collectors del feed. Zero value => defaults.
	ActionsConfig actions.Config
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	var (
		farmRepo      farms.Repository
		grantsRepo    accessgrants.Repository
		catalogRepo   catalog.Repository
		indicationsRp indications.Repository
		animalRepo    animals.Repository
		treatmentRepo treatments.Repository
		lotRepo       lots.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		farmRepo = pg.NewFarmsRepo(db)
		grantsRepo = pg.NewAccessGrantsRepo(db)
		catalogRepo = pg.NewCatalogRepo(db)
		indicationsRp = pg.NewIndicationsRepo(db)
		animalRepo = pg.NewAnimalsRepo(db)
		treatmentRepo = pg.NewTreatmentsRepo(db)
		lotRepo = pg.NewLotsRepo(db)
	} else {
		farmRepo = mem.NewFarmRepo()
		grantsRepo = mem.NewGrantRepo()
		catalogRepo = mem.NewCatalogRepo()
		indicationsRp = mem.NewIndicationRepo()
		animalRepo = mem.NewAnimalRepo()
		treatmentRepo = mem.NewTreatmentRepo()
		lotRepo = mem.NewLotRepo()
	}

	// Services por módulo
	farmsSvc := farms.NewService(farmRepo)
	grantsSvc := accessgrants.NewService(grantsRepo)
	catalogSvc := catalog.NewService(catalogRepo)
	indicationsSvc := indications.NewService(indicationsRp)
	animalsSvc := animals.NewService(animalRepo)
	treatmentsSvc := treatments.NewService(treatmentRepo, indicationsSvc, log)
	lotsSvc := lots.NewService(lotRepo)

	cfg := opts.ActionsConfig
	if cfg == (actions.Config{}) {
		cfg = actions.DefaultConfig()
	}
	aggregator := actions.NewAggregator(lotsSvc, treatmentsSvc, animalsSvc, cfg, log)

	// Rutas por módulo
	farms.RegisterRoutes(r, farmsSvc, grantsSvc)
	accessgrants.RegisterRoutes(r, grantsSvc, farmsSvc)
	catalog.RegisterRoutes(r, catalogSvc)
	indications.RegisterRoutes(r, indicationsSvc)
	animals.RegisterRoutes(r, animalsSvc, farmsSvc, grantsSvc)
	treatments.RegisterRoutes(r, treatmentsSvc, farmsSvc, animalsSvc, grantsSvc)
	lots.RegisterRoutes(r, lotsSvc, farmsSvc, grantsSvc)
	actions.RegisterRoutes(r, aggregator, farmsSvc, grantsSvc)

	return r
}
