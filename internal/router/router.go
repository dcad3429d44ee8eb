package router

import (
	"database/sql"
	"net/http"

	"adoption-center/internal/adapters/notify/lognotify"
	"adoption-center/internal/adapters/notify/promnotify"
	mem "adoption-center/internal/adapters/storage/memory"
	pg "adoption-center/internal/adapters/storage/postgres"
	sq "adoption-center/internal/adapters/storage/sqlite"
	"adoption-center/internal/domain/adoptions"
	"adoption-center/internal/domain/followups"
	"adoption-center/internal/domain/medical"
	"adoption-center/internal/domain/pets"
	"adoption-center/internal/domain/reports"
	"adoption-center/internal/platform/config"
	"adoption-center/internal/platform/logger"
	"adoption-center/internal/platform/metrics"
	"adoption-center/internal/ports/notify"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	Config config.Config
	Log    logger.Logger

	// Opcional: si viene, usa Postgres directamente (tests la inyectan).
	DB *sql.DB
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	var (
		petRepo pets.Repository
		reqRepo adoptions.Repository
		fuRepo  followups.Repository
		medRepo medical.Repository
	)

	// Selección de storage: Postgres si hay DSN, SQLite si hay path,
	// in-memory para dev.
	db := opts.DB
	if db == nil && opts.Config.DBDSN != "" {
		opened, err := pg.Open(opts.Config.DBDSN)
		if err != nil {
			log.Error("postgres open failed, falling back", map[string]any{"error": err.Error()})
		} else {
			db = opened
		}
	}

	switch {
	case db != nil:
		petRepo = pg.NewPetsRepo(db)
		reqRepo = pg.NewAdoptionsRepo(db)
		fuRepo = pg.NewFollowUpsRepo(db)
		medRepo = pg.NewMedicalRepo(db)
	case opts.Config.SQLitePath != "":
		sdb, err := sq.Open(opts.Config.SQLitePath)
		if err != nil {
			log.Error("sqlite open failed, using in-memory store", map[string]any{"error": err.Error()})
			store := mem.NewStore()
			petRepo, reqRepo, fuRepo, medRepo = store.Pets(), store.Requests(), store.FollowUps(), store.Medical()
		} else {
			petRepo = sq.NewPetsRepo(sdb)
			reqRepo = sq.NewAdoptionsRepo(sdb)
			fuRepo = sq.NewFollowUpsRepo(sdb)
			medRepo = sq.NewMedicalRepo(sdb)
		}
	default:
		store := mem.NewStore()
		petRepo, reqRepo, fuRepo, medRepo = store.Pets(), store.Requests(), store.FollowUps(), store.Medical()
	}

	notifier := notify.Multi(lognotify.New(log), promnotify.New())

	// Services por módulo
	petsSvc := pets.NewService(petRepo)
	adoptionsSvc := adoptions.NewService(reqRepo, petRepo, fuRepo, notifier, log)
	followUpsSvc := followups.NewService(fuRepo, petRepo)
	medicalSvc := medical.NewService(medRepo, petRepo, log)
	reportsSvc := reports.NewService(petRepo, reqRepo, fuRepo)

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc)
	adoptions.RegisterRoutes(r, adoptionsSvc)
	followups.RegisterRoutes(r, followUpsSvc)
	medical.RegisterRoutes(r, medicalSvc)
	reports.RegisterRoutes(r, reportsSvc)

	return r
}
