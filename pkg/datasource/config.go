package datasource

import (
	"github.com/marcodd23/go-txscope/pkg/configx"
	"github.com/marcodd23/go-txscope/pkg/dbx"
)

// Property - single name/value entry of a lookup property bag.
type Property struct {
	Name  string `validate:"required"`
	Value string
}

// Properties - ordered property bag. Names may repeat, the last occurrence wins on Get and Map.
type Properties []Property

// Get returns the value of the last property called name.
func (p Properties) Get(name string) (string, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Name == name {
			return p[i].Value, true
		}
	}

	return "", false
}

// Map flattens the bag, later duplicates override earlier ones.
func (p Properties) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, prop := range p {
		m[prop.Name] = prop.Value
	}

	return m
}

// LookupDefinition - resolve a connection factory by name through a Directory.
type LookupDefinition struct {
	Name       string     `validate:"required"`
	Properties Properties `validate:"dive"`
}

// Config - declarative data source description.
//
// Either Factory is set directly, or Lookup names the factory to find in a Directory. When both are
// set the lookup wins. A Config with neither resolves to a nil factory.
type Config struct {
	Factory dbx.ConnectionFactory
	Lookup  *LookupDefinition
}

// FromConfig converts the YAML data source section, nil in gives nil out.
func FromConfig(cfg *configx.DataSourceConfig) *Config {
	if cfg == nil {
		return nil
	}

	ds := &Config{}
	if cfg.Lookup != nil {
		ds.Lookup = &LookupDefinition{Name: cfg.Lookup.Name}
		for _, prop := range cfg.Lookup.Properties {
			ds.Lookup.Properties = append(ds.Lookup.Properties, Property{Name: prop.Name, Value: prop.Value})
		}
	}

	return ds
}
