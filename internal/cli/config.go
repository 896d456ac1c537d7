package cli

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pthm/sqltemplate/pkg/query"
)

const (
	maxWalkDepth = 25
)

// Config represents the sqltemplate configuration from sqltemplate.yaml.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" json:"database"`
	Compile  CompileConfig  `mapstructure:"compile" json:"compile"`
	Exec     ExecConfig     `mapstructure:"exec" json:"exec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" json:"driver"`
	URL      string `mapstructure:"url" json:"url,omitempty"`
	Host     string `mapstructure:"host" json:"host,omitempty"`
	Port     int    `mapstructure:"port" json:"port,omitempty"`
	Name     string `mapstructure:"name" json:"name,omitempty"`
	User     string `mapstructure:"user" json:"user,omitempty"`
	Password string `mapstructure:"password" json:"password,omitempty"`
	SSLMode  string `mapstructure:"sslmode" json:"sslmode,omitempty"`
}

// CompileConfig controls how trees are rendered.
type CompileConfig struct {
	// Placeholders is none, dollar, question or auto (derived from the driver).
	Placeholders string `mapstructure:"placeholders" json:"placeholders"`
	Escape       bool   `mapstructure:"escape" json:"escape"`
}

// ExecConfig holds statement execution settings.
type ExecConfig struct {
	SlowThreshold time.Duration `mapstructure:"slow_threshold" json:"slow_threshold"`
	Timeout       time.Duration `mapstructure:"timeout" json:"timeout"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults. A .env file in the working
// directory is loaded into the environment first; variables that are already
// set are not overridden.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, "", fmt.Errorf("loading .env: %w", err)
		}
	}

	v := viper.New()

	// 1. Set defaults first (lowest precedence)
	setDefaults(v)

	// 2. Set up environment variable binding
	v.SetEnvPrefix("SQLTEMPLATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 3. Find and load config file
	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	// 4. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "prefer")

	// Compile defaults
	v.SetDefault("compile.placeholders", "none")
	v.SetDefault("compile.escape", false)

	// Exec defaults
	v.SetDefault("exec.slow_threshold", time.Second)
	v.SetDefault("exec.timeout", 30*time.Second)
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for sqltemplate.yaml or sqltemplate.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range []string{"sqltemplate.yaml", "sqltemplate.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		// Stop at the repository root
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}

// DSN returns the connection string for the configured driver.
// If database.url is set, it's returned directly.
// Otherwise, builds a DSN from discrete fields.
func (c *Config) DSN() (string, error) {
	db := c.Database

	if db.URL != "" {
		return db.URL, nil
	}

	if db.Driver == DriverSQLite {
		if db.Name == "" {
			return "", fmt.Errorf("database.name is required for %s", DriverSQLite)
		}
		return db.Name, nil
	}

	if db.Host == "" {
		return "", fmt.Errorf("database.host is required when database.url is not set")
	}
	if db.Name == "" {
		return "", fmt.Errorf("database.name is required when database.url is not set")
	}
	if db.User == "" {
		return "", fmt.Errorf("database.user is required when database.url is not set")
	}

	port := db.Port
	if port == 0 {
		port = defaultPort(db.Driver)
	}
	addr := net.JoinHostPort(db.Host, strconv.Itoa(port))

	if db.Driver == DriverMySQL {
		mc := mysql.NewConfig()
		mc.User = db.User
		mc.Passwd = db.Password
		mc.Net = "tcp"
		mc.Addr = addr
		mc.DBName = db.Name
		return mc.FormatDSN(), nil
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   addr,
		Path:   "/" + db.Name,
	}

	if db.Password != "" {
		u.User = url.UserPassword(db.User, db.Password)
	} else {
		u.User = url.User(db.User)
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// Compiler returns the query compiler described by the compile section.
// The auto placeholder style follows the configured driver.
func (c *Config) Compiler() (*query.Compiler, error) {
	var opts []query.Option

	if strings.EqualFold(c.Compile.Placeholders, "auto") {
		style, err := PlaceholderStyle(c.Database.Driver)
		if err != nil {
			return nil, err
		}
		opts = append(opts, query.WithPlaceholders(style))
	} else {
		style, err := query.ParsePlaceholderStyle(c.Compile.Placeholders)
		if err != nil {
			return nil, fmt.Errorf("compile.placeholders: %w", err)
		}
		opts = append(opts, query.WithPlaceholders(style))
	}

	if c.Compile.Escape {
		opts = append(opts, query.WithEscapedLiterals())
	}
	return query.NewCompiler(opts...), nil
}
