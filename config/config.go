package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the full runtime configuration for the service. Values are
// sourced from the environment, optionally seeded from a .env file.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string

	// MySQL catalog store connection settings.
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	// CDNBase is the base URL used to build gallery image links.
	CDNBase string

	// Cloudinary credentials.
	CloudinaryCloud  string
	CloudinaryKey    string
	CloudinarySecret string

	// CloudinaryFolder is the default destination folder for uploads.
	CloudinaryFolder string

	// DropboxToken authenticates against the Dropbox API.
	DropboxToken string

	// StateDir holds the run-history database.
	StateDir string

	// ExportDir is the staging area for export bundles.
	ExportDir string

	// MaxWorkers is the default upload concurrency when a request
	// doesn't specify one.
	MaxWorkers int
}

// Load reads configuration from the environment. If envFile is non-empty it
// is loaded first; a missing .env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Addr:             getenv("PIXPORT_ADDR", ":8080"),
		DBHost:           getenv("DB_HOST", "127.0.0.1"),
		DBPort:           getenvInt("DB_PORT", 3306),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           os.Getenv("DB_NAME"),
		CDNBase:          getenv("CDN_BASE", "https://cdn.bazarchic.com/i/tmp"),
		CloudinaryCloud:  os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinarySecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder: getenv("CLOUDINARY_FOLDER", "bazarchic_images"),
		DropboxToken:     os.Getenv("DROPBOX_TOKEN"),
		StateDir:         getenv("PIXPORT_STATE_DIR", "./.pixport-state"),
		ExportDir:        getenv("PIXPORT_EXPORT_DIR", "./exports"),
		MaxWorkers:       getenvInt("PIXPORT_MAX_WORKERS", 10),
	}

	if cfg.MaxWorkers < 1 {
		return nil, fmt.Errorf("PIXPORT_MAX_WORKERS must be at least 1, got %d", cfg.MaxWorkers)
	}

	return cfg, nil
}

// DSN builds the go-sql-driver connection string for the catalog store.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
