package configx

// Config - config interface.
type Config interface {
	GetServiceName() string
	GetVersion() string
	GetEnvironment() string
	GetServerConfig() *ServerConfig
	GetLoggingConfig() *LoggingConfig
	GetDataSourceConfig() *DataSourceConfig
	GetMetricsConfig() *MetricsConfig
	IsLocalEnvironment() bool
}

// BaseConfig - app config struct.
// This struct represents the base configuration for the application and is expected to be in the following YAML format:
/*
name: "TestApp"
environment: "development"
version: "1.0"
logging:
  level: "debug"
  file:
    path: "./logs/txscope.log"
    maxSizeMb: 50
    maxBackups: 5
    maxAgeDays: 30
    compress: true
server:
  port: "8080"
  concurrency: 10
  disableStartupMsg: false
datasource:
  lookup:
    name: "sql"
    properties:
      - name: driver
        value: sqlite
      - name: dsn
        value: ./txscope.db
metrics:
  enabled: true
  namespace: txscope
*/
type BaseConfig struct {
	Name        string            `mapstructure:"name" validate:"required"`
	Environment string            `mapstructure:"environment"`
	Version     string            `mapstructure:"version"`
	Logging     *LoggingConfig    `mapstructure:"logging"`
	Server      *ServerConfig     `mapstructure:"server"`
	DataSource  *DataSourceConfig `mapstructure:"datasource"`
	Metrics     *MetricsConfig    `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port                  string `mapstructure:"port" validate:"required"`
	Concurrency           int    `mapstructure:"concurrency" validate:"gte=0"`
	DisableStartupMessage bool   `mapstructure:"disableStartupMsg"`
}

type LoggingConfig struct {
	Level string         `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error"`
	File  *LogFileConfig `mapstructure:"file"`
}

// LogFileConfig - rotating log file, disabled when Path is empty.
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"maxSizeMb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"maxBackups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"maxAgeDays" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
}

// DataSourceConfig - declarative data source: a named lookup with an optional ordered property list.
// A data source without lookup is resolved to the factory configured directly in code.
type DataSourceConfig struct {
	Lookup *LookupConfig `mapstructure:"lookup"`
}

// LookupConfig - named lookup descriptor.
type LookupConfig struct {
	Name       string           `mapstructure:"name" validate:"required"`
	Properties []PropertyConfig `mapstructure:"properties" validate:"dive"`
}

// PropertyConfig - single name/value lookup property.
type PropertyConfig struct {
	Name  string `mapstructure:"name" validate:"required"`
	Value string `mapstructure:"value"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

func (cfg BaseConfig) GetServiceName() string {
	return cfg.Name
}

func (cfg BaseConfig) GetVersion() string {
	return cfg.Version
}

func (cfg BaseConfig) GetEnvironment() string {
	return cfg.Environment
}

func (cfg BaseConfig) IsLocalEnvironment() bool {
	return checkIfLocalEnv(cfg.Environment)
}

func (cfg BaseConfig) GetServerConfig() *ServerConfig {
	return cfg.Server
}

func (cfg BaseConfig) GetLoggingConfig() *LoggingConfig {
	return cfg.Logging
}

func (cfg BaseConfig) GetDataSourceConfig() *DataSourceConfig {
	return cfg.DataSource
}

func (cfg BaseConfig) GetMetricsConfig() *MetricsConfig {
	return cfg.Metrics
}
