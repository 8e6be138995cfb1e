package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/linesmerrill/video-screening-api/api"
	"github.com/linesmerrill/video-screening-api/api/scheduler"
	"github.com/linesmerrill/video-screening-api/config"
	"github.com/linesmerrill/video-screening-api/databases"
	"github.com/linesmerrill/video-screening-api/databases/memory"
	"github.com/linesmerrill/video-screening-api/databases/postgres"
	"github.com/linesmerrill/video-screening-api/models"
	"github.com/linesmerrill/video-screening-api/services"
	"github.com/linesmerrill/video-screening-api/storage"
	"github.com/linesmerrill/video-screening-api/storage/localfs"
	"github.com/linesmerrill/video-screening-api/storage/s3store"
)

// App stores the router and the backends, so they can be reused
type App struct {
	Router    *mux.Router
	Handler   http.Handler
	Config    config.Config
	Invites   databases.InviteDatabase
	Videos    databases.VideoDatabase
	Store     storage.ArtifactStore
	Scheduler *scheduler.Scheduler

	mongoClient databases.ClientHelper
	gormDB      *gorm.DB
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	inviteSvc := services.NewInviteService(a.Invites, a.Config.TokenTTL())
	videoSvc := services.NewVideoService(a.Invites, a.Videos, a.Store, services.DefaultUploadPolicy(a.Config.MaxUploadBytes()))

	i := Invite{Service: inviteSvc}
	v := Video{Service: videoSvc, MaxUploadBytes: a.Config.MaxUploadBytes()}

	r := mux.NewRouter()

	// healthchex
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/invites", http.HandlerFunc(i.CreateInviteHandler)).Methods("POST")
	apiCreate.Handle("/invites", http.HandlerFunc(i.InvitesHandler)).Methods("GET")
	apiCreate.Handle("/invites/{token}", http.HandlerFunc(i.ValidateTokenHandler)).Methods("GET")
	apiCreate.Handle("/invites/{invite_id}/videos", http.HandlerFunc(v.VideosByInviteIDHandler)).Methods("GET")

	apiCreate.Handle("/upload/{token}", http.HandlerFunc(v.UploadHandler)).Methods("POST")

	apiCreate.Handle("/videos/{video_id}", http.HandlerFunc(v.VideoByIDHandler)).Methods("GET")
	apiCreate.Handle("/videos/{video_id}/stream", http.HandlerFunc(v.StreamHandler)).Methods("GET")
	apiCreate.Handle("/videos/{video_id}/tag", http.HandlerFunc(v.TagHandler)).Methods("POST")

	return r
}

// Initialize is invoked by main to connect the backends and build the router
func (a *App) Initialize(ctx context.Context) error {
	if err := a.initializeDatabases(ctx); err != nil {
		return err
	}
	if err := a.initializeStorage(ctx); err != nil {
		return err
	}

	// initialize api router
	a.initializeRoutes()
	return nil
}

func (a *App) initializeDatabases(ctx context.Context) error {
	switch a.Config.DBBackend {
	case config.DBMongo:
		client, err := databases.NewClient(&a.Config)
		if err != nil {
			zap.S().With(err).Error("failed to create new client")
			return err
		}
		if err = client.Connect(ctx); err != nil {
			zap.S().With(err).Error("failed to connect to database")
			return err
		}
		a.mongoClient = client
		dbHelper := databases.NewDatabase(&a.Config, client)
		if err = databases.EnsureIndexes(ctx, dbHelper); err != nil {
			return err
		}
		a.Invites = databases.NewInviteDatabase(dbHelper)
		a.Videos = databases.NewVideoDatabase(dbHelper)
	case config.DBPostgres:
		db, err := postgres.Open(a.Config.PostgresDSN)
		if err != nil {
			zap.S().With(err).Error("failed to connect to postgres")
			return err
		}
		a.gormDB = db
		a.Invites = postgres.NewInviteDatabase(db)
		a.Videos = postgres.NewVideoDatabase(db)
	default:
		a.Invites = memory.NewInviteDatabase()
		a.Videos = memory.NewVideoDatabase()
	}
	zap.S().Infow("video-screening-api has connected to the database", "backend", a.Config.DBBackend)
	return nil
}

func (a *App) initializeStorage(ctx context.Context) error {
	switch a.Config.StorageBackend {
	case config.StorageS3:
		store, err := s3store.New(ctx, a.Config.S3Bucket, a.Config.AWSRegion)
		if err != nil {
			return err
		}
		a.Store = store
	default:
		store, err := localfs.New(a.Config.UploadDir)
		if err != nil {
			return err
		}
		a.Store = store
		a.Scheduler = scheduler.NewScheduler(store, a.Config.StagingMaxAge)
		if err := a.Scheduler.Start(a.Config.StagingSweepSchedule); err != nil {
			return err
		}
	}
	zap.S().Infow("artifact store ready", "backend", a.Config.StorageBackend)
	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
	var h http.Handler = a.Router
	h = api.TimeoutMiddleware(a.Config.RequestTimeout)(h)
	h = api.LoggingMiddleware(h)
	a.Handler = api.CORS(a.Config.CORSAllowOrigin, h)
}

// Close releases the backends opened by Initialize
func (a *App) Close(ctx context.Context) error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			return fmt.Errorf("disconnect mongo: %w", err)
		}
	}
	if a.gormDB != nil {
		sqlDB, err := a.gormDB.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("close postgres: %w", err)
		}
	}
	return nil
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}

// writeJSON marshals body and writes it with status
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	b, err := json.Marshal(body)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
