package environment

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Production defines the prod environment
const Production = "prod"

// Staging defines the staging environment
const Staging = "staging"

// Dev defines the dev environment
const Dev = "dev"

// Database backends
const (
	DatabaseMongo    = "mongo"
	DatabasePostgres = "postgres"
)

// Environment holds the process configuration
type Environment struct {
	Environment    string `mapstructure:"APP_ENV"`
	Port           string `mapstructure:"PORT"`
	Database       string `mapstructure:"DATABASE"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DatabaseName   string `mapstructure:"DATABASE_NAME"`
	Redis          string `mapstructure:"REDIS"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	GCPProject     string `mapstructure:"GCP_PROJECT"`
	CalendarConfig string `mapstructure:"CALENDAR_CONFIG"`
	RecalcCron     string `mapstructure:"RECALC_CRON"`
	Timezone       string `mapstructure:"TIMEZONE"`
}

// Global is the environment loaded at startup
var Global Environment

var keys = []string{
	"APP_ENV", "PORT", "DATABASE", "DATABASE_URL", "DATABASE_NAME", "REDIS", "REDIS_PASSWORD",
	"GCP_PROJECT", "CALENDAR_CONFIG", "RECALC_CRON", "TIMEZONE",
}

func defaults() map[string]string {
	return map[string]string{
		"APP_ENV":       Dev,
		"PORT":          "80",
		"DATABASE":      DatabaseMongo,
		"DATABASE_NAME": "planner",
		"RECALC_CRON":   "0 2 * * *",
	}
}

// Load reads the env file at path, process environment variables take precedence.
// A missing env file is not an error.
func Load(path string) (Environment, error) {
	data := defaults()

	if path != "" {
		file, err := godotenv.Read(path)
		if err != nil && !os.IsNotExist(errors.Cause(err)) {
			return Environment{}, errors.Wrap(err, "reading env file")
		}
		for key, value := range file {
			data[key] = value
		}
	}

	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			data[key] = value
		}
	}

	var env Environment
	err := mapstructure.Decode(data, &env)
	if err != nil {
		return Environment{}, err
	}

	env.Database = strings.ToLower(env.Database)
	if env.Database != DatabaseMongo && env.Database != DatabasePostgres {
		return Environment{}, errors.Errorf("unknown database backend %q", env.Database)
	}

	return env, nil
}

// IsProduction reports whether the process runs in production
func (e *Environment) IsProduction() bool {
	return e.Environment == Production
}
