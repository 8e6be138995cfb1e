package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/linesmerrill/video-screening-api/models"
)

// Storage backends
const (
	StorageLocalFS = "localfs"
	StorageS3      = "s3"
)

// Database backends
const (
	DBInMemory = "inmemory"
	DBMongo    = "mongo"
	DBPostgres = "postgres"
)

// Config holds the project config values
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	BaseURL     string `env:"BASE_URL"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"localfs"`
	DBBackend      string `env:"DB_BACKEND" envDefault:"inmemory"`
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"./uploads"`

	TokenTTLMinutes int `env:"TOKEN_TTL_MIN" envDefault:"10080"`
	// MaxVideoSeconds is advertised to clients; the server never measures duration.
	MaxVideoSeconds int    `env:"MAX_VIDEO_SECONDS" envDefault:"120"`
	MaxUploadMB     int    `env:"MAX_UPLOAD_MB" envDefault:"50"`
	CORSAllowOrigin string `env:"CORS_ALLOW_ORIGIN" envDefault:"http://localhost:5173"`

	URL          string `env:"DB_URI" envDefault:"mongodb://localhost:27017"`
	DatabaseName string `env:"DB_NAME" envDefault:"aurio"`
	PostgresDSN  string `env:"POSTGRES_DSN"`

	S3Bucket  string `env:"S3_BUCKET_NAME"`
	AWSRegion string `env:"AWS_REGION"`

	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT" envDefault:"2m"`
	StagingSweepSchedule string        `env:"STAGING_SWEEP_SCHEDULE" envDefault:"@every 1h"`
	StagingMaxAge        time.Duration `env:"STAGING_MAX_AGE" envDefault:"6h"`
}

// New sets up all config related services. Values are read from the
// environment, falling back to a .env file in the working directory.
func New() (*Config, error) {
	// a missing .env is fine, real deployments set the environment directly
	_ = godotenv.Load()

	conf := &Config{}
	if err := env.Parse(conf); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	//setup zap logger and replace default logger
	logger, err := setLogger(conf.Environment)
	if err != nil {
		return nil, fmt.Errorf("set logger: %w", err)
	}
	_ = zap.ReplaceGlobals(logger)

	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case StorageLocalFS, StorageS3:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	switch c.DBBackend {
	case DBInMemory, DBMongo, DBPostgres:
	default:
		return fmt.Errorf("unknown database backend %q", c.DBBackend)
	}
	if c.TokenTTLMinutes <= 0 {
		return fmt.Errorf("TOKEN_TTL_MIN must be positive, got %d", c.TokenTTLMinutes)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}

// TokenTTL is how long a freshly created invite stays valid
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// MaxUploadBytes is the largest accepted video payload
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	zap.S().Errorw(message, "status", httpStatusCode, "error", errText)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: errText}})
	_, _ = w.Write(b)
}
