package cerebro

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/cerebro/internal/broker"
	"github.com/rxtech-lab/cerebro/internal/indicator"
	"github.com/rxtech-lab/cerebro/pkg/errors"
)

// Config describes one run: starting cash, the commission model, the
// evaluation mode and an optional time window over the feeds.
type Config struct {
	InitialCash      float64                    `yaml:"initial_cash" json:"initial_cash" validate:"gte=0" jsonschema:"title=Initial Cash,description=Starting cash for the run,minimum=0"`
	CommissionScheme broker.Scheme              `yaml:"commission_scheme" json:"commission_scheme" validate:"omitempty,oneof=zero rate per_share" jsonschema:"title=Commission Scheme,description=Commission model applied to fills"`
	CommissionRate   float64                    `yaml:"commission_rate" json:"commission_rate" validate:"gte=0" jsonschema:"title=Commission Rate,description=Rate or per-share fee for the chosen scheme,minimum=0"`
	Mode             string                     `yaml:"mode" json:"mode" validate:"omitempty,oneof=streaming batch" jsonschema:"title=Evaluation Mode,description=Indicator evaluation mode"`
	StartTime        optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional inclusive start of the replay window"`
	EndTime          optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional inclusive end of the replay window"`
}

// DefaultConfig returns a zero-commission streaming run with no cash.
func DefaultConfig() Config {
	return Config{
		CommissionScheme: broker.SchemeZero,
		Mode:             "streaming",
		StartTime:        optional.None[time.Time](),
		EndTime:          optional.None[time.Time](),
	}
}

// UnmarshalYAML maps optional pointer fields into Option values.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain struct {
		InitialCash      float64       `yaml:"initial_cash"`
		CommissionScheme broker.Scheme `yaml:"commission_scheme"`
		CommissionRate   float64       `yaml:"commission_rate"`
		Mode             string        `yaml:"mode"`
		StartTime        *time.Time    `yaml:"start_time"`
		EndTime          *time.Time    `yaml:"end_time"`
	}

	var parsed plain
	if err := unmarshal(&parsed); err != nil {
		return err
	}

	c.InitialCash = parsed.InitialCash
	c.CommissionScheme = parsed.CommissionScheme
	c.CommissionRate = parsed.CommissionRate
	c.Mode = parsed.Mode
	c.StartTime = optional.FromNillable(parsed.StartTime)
	c.EndTime = optional.FromNillable(parsed.EndTime)

	return nil
}

// ParseConfig reads and validates a YAML config.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeConfigParse, "parse config", err)
	}

	if config.Mode == "" {
		config.Mode = "streaming"
	}
	if config.CommissionScheme == "" {
		config.CommissionScheme = broker.SchemeZero
	}

	if err := validator.New().Struct(&config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, "validate config", err)
	}

	return config, nil
}

// EvaluationMode converts the configured mode string.
func (c Config) EvaluationMode() indicator.EvaluationMode {
	if c.Mode == "batch" {
		return indicator.Batch
	}

	return indicator.Streaming
}

// Commission builds the configured commission model.
func (c Config) Commission() broker.Commission {
	return broker.ForScheme(c.CommissionScheme, c.CommissionRate)
}

// GenerateSchema reflects the config into a JSON schema.
func (c *Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}
			if strings.Contains(t.String(), "broker.Scheme") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: []any{broker.SchemeZero, broker.SchemeRate, broker.SchemePerShare},
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "cerebro-config"
	schema.Description = "Configuration schema for a cerebro run"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON renders the config schema as indented JSON.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(c.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
