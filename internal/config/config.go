package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	DB            DBConfig            `mapstructure:"db"`
	Data          DataConfig          `mapstructure:"data"`
	Simulation    SimulationConfig    `mapstructure:"simulation"`
	Qualification QualificationConfig `mapstructure:"qualification"`
	Permutations  PermutationsConfig  `mapstructure:"permutations"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// DBConfig selects the Postgres store. An empty DSN means the table is
// served from Data.TablePath instead.
type DBConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	// ResetOnStart drops saved simulations and reloads the standings from
	// Data.TablePath when the server starts.
	ResetOnStart bool   `mapstructure:"reset_on_start"`
}

type DataConfig struct {
	TablePath string `mapstructure:"table_path"`
}

type SimulationConfig struct {
	InningsBalls int  `mapstructure:"innings_balls"`
	StrictTeams  bool `mapstructure:"strict_teams"`
}

type QualificationConfig struct {
	Team   string `mapstructure:"team"`
	Cutoff int    `mapstructure:"cutoff"`
}

type PermutationsConfig struct {
	MaxFixtures      int `mapstructure:"max_fixtures"`
	FirstInningsRuns int `mapstructure:"first_innings_runs"`
	Margin           int `mapstructure:"margin"`
}

// Load reads the YAML file at path and overlays NRR_* environment variables.
// A missing file leaves the defaults in place; envOnly skips the file.
func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NRR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 2)
	v.SetDefault("db.reset_on_start", false)
	v.SetDefault("data.table_path", "current_table.csv")
	v.SetDefault("simulation.innings_balls", 120)
	v.SetDefault("simulation.strict_teams", false)
	v.SetDefault("qualification.team", "")
	v.SetDefault("qualification.cutoff", 4)
	v.SetDefault("permutations.max_fixtures", 10)
	v.SetDefault("permutations.first_innings_runs", 160)
	v.SetDefault("permutations.margin", 20)

	if !envOnly && path != "" {
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
