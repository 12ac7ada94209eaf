package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every configuration parameter, loaded from environment variables.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"3001"`

	JWTSecret  string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL     time.Duration `envconfig:"JWT_TTL" default:"4h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"12"`

	// Optional bootstrap super admin, created only when the admins table is empty.
	InitialAdminUser     string `envconfig:"INITIAL_ADMIN_USER"`
	InitialAdminPassword string `envconfig:"INITIAL_ADMIN_PASSWORD"`

	// Cadence of the draft-to-published promotion job. Minute granularity is
	// the tightest guarantee clients get for scheduled content going live.
	PublishSchedule string `envconfig:"PUBLISH_SCHEDULE" default:"@every 1m"`

	S3Key      string `envconfig:"S3_ACCESS_KEY" required:"true"`
	S3Secret   string `envconfig:"S3_SECRET_KEY" required:"true"`
	S3Endpoint string `envconfig:"S3_ENDPOINT"`
	S3Region   string `envconfig:"S3_REGION" required:"true"`
	S3Bucket   string `envconfig:"S3_BUCKET" required:"true"`

	// Upload limits in megabytes.
	MaxAudioUploadMB int64 `envconfig:"MAX_AUDIO_UPLOAD_MB" default:"100"`
	MaxVideoUploadMB int64 `envconfig:"MAX_VIDEO_UPLOAD_MB" default:"500"`
	MaxImageUploadMB int64 `envconfig:"MAX_IMAGE_UPLOAD_MB" default:"5"`
}

// DSN returns the Data Source Name for the PostgreSQL connection.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
