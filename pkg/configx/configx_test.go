package configx_test

import (
	"os"
	"testing"

	"github.com/marcodd23/go-txscope/pkg/configx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Shared configuration content
var configContent = `
name: "TestApp"
environment: "development"
version: "latest"
logging:
  level: "debug"
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
        value: ./test.db
metrics:
  enabled: true
  namespace: txscope
`

type TestConfiguration struct {
	configx.BaseConfig `mapstructure:",squash"`
}

func createTestConfigFile(t *testing.T, content string) string {
	file, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}
	defer file.Close()

	_, err = file.WriteString(content)
	if err != nil {
		t.Fatalf("Failed to write to temp config file: %v", err)
	}

	return file.Name()
}

func TestLoadConfigFromFile(t *testing.T) {
	configFilePath := createTestConfigFile(t, configContent)
	defer os.Remove(configFilePath)

	var cfg TestConfiguration
	err := configx.ReadConfiguration(configFilePath, &cfg)
	assert.NoError(t, err)
	assert.Equal(t, "TestApp", cfg.GetServiceName())
	assert.Equal(t, "development", cfg.GetEnvironment())
	assert.True(t, cfg.IsLocalEnvironment())
	assert.NotNil(t, cfg.Logging)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Nil(t, cfg.Logging.File)
	assert.NotNil(t, cfg.Server)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.Concurrency)
	assert.Equal(t, false, cfg.Server.DisableStartupMessage)
	assert.True(t, cfg.GetMetricsConfig().Enabled)
	assert.Equal(t, "txscope", cfg.GetMetricsConfig().Namespace)
}

func TestLoadDataSourceLookupKeepsPropertyOrder(t *testing.T) {
	configFilePath := createTestConfigFile(t, configContent)
	defer os.Remove(configFilePath)

	var cfg TestConfiguration
	require.NoError(t, configx.ReadConfiguration(configFilePath, &cfg))

	ds := cfg.GetDataSourceConfig()
	require.NotNil(t, ds)
	require.NotNil(t, ds.Lookup)
	assert.Equal(t, "sql", ds.Lookup.Name)
	require.Len(t, ds.Lookup.Properties, 2)
	assert.Equal(t, configx.PropertyConfig{Name: "driver", Value: "sqlite"}, ds.Lookup.Properties[0])
	assert.Equal(t, configx.PropertyConfig{Name: "dsn", Value: "./test.db"}, ds.Lookup.Properties[1])
}

func TestEnvVariableOverridesConfig(t *testing.T) {
	configFilePath := createTestConfigFile(t, configContent)
	defer os.Remove(configFilePath)

	// Set environment variable to override server port
	t.Setenv("SERVER_PORT", "9090")

	var cfg TestConfiguration
	err := configx.ReadConfiguration(configFilePath, &cfg)
	assert.NoError(t, err)
	assert.Equal(t, "TestApp", cfg.GetServiceName())
	assert.NotNil(t, cfg.Server)
	assert.Equal(t, "9090", cfg.Server.Port) // Expecting overridden value
	assert.Equal(t, 10, cfg.Server.Concurrency)
}

func TestValidate(t *testing.T) {
	configFilePath := createTestConfigFile(t, configContent)
	defer os.Remove(configFilePath)

	var cfg TestConfiguration
	require.NoError(t, configx.ReadConfiguration(configFilePath, &cfg))
	assert.NoError(t, configx.Validate(&cfg))

	cfg.DataSource.Lookup.Properties = append(cfg.DataSource.Lookup.Properties, configx.PropertyConfig{Value: "orphan"})
	err := configx.Validate(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name")
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := TestConfiguration{BaseConfig: configx.BaseConfig{
		Name:    "TestApp",
		Logging: &configx.LoggingConfig{Level: "verbose"},
	}}

	err := configx.Validate(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")
}

func TestNonLocalEnvironments(t *testing.T) {
	for _, env := range []string{"dev", "STAGE", "Prod"} {
		cfg := configx.BaseConfig{Environment: env}
		assert.False(t, cfg.IsLocalEnvironment(), env)
	}
}
