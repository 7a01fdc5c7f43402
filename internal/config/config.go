package config

import (
	"fmt"
	"os"
	"strings"

	"BatterySentinel/internal/battery"
	"BatterySentinel/internal/model"

	"gopkg.in/yaml.v3"
)

// Source types.
const (
	SourceSimulated = "simulated"
	SourceCSV       = "csv"
	SourceHTTP      = "http"
)

// Defaults for fields where zero is meaningful.
const (
	DefaultInitialSOC = 0.8
	DefaultLastCycle  = 1000
)

// OCVPoint is one row of a tabulated OCV curve.
type OCVPoint struct {
	SOC     float64 `yaml:"soc"`
	Voltage float64 `yaml:"voltage"`
}

// Config holds all application configuration.
type Config struct {
	Battery struct {
		NominalCapacity   float64 `yaml:"nominal_capacity_ah"`
		NominalResistance float64 `yaml:"nominal_resistance_ohm"`
		InitialSOC        float64 `yaml:"initial_soc"`
		SamplePeriod      float64 `yaml:"sample_period_s"`
		CycleLife         float64 `yaml:"cycle_life"`
		OCV               struct {
			// Coefficients a, b, c of V = a + b*s + c*s^2.
			Coefficients []float64  `yaml:"coefficients"`
			Table        []OCVPoint `yaml:"table"`
		} `yaml:"ocv"`
	} `yaml:"battery"`
	Simulation struct {
		Duration        float64 `yaml:"duration_s"`
		Current         float64 `yaml:"current_a"`
		CurrentNoise    float64 `yaml:"current_noise_a"`
		VoltageNoise    float64 `yaml:"voltage_noise_v"`
		LastCycle       int     `yaml:"last_cycle"`
		CapacityNoise   float64 `yaml:"capacity_noise_ah"`
		ResistanceNoise float64 `yaml:"resistance_noise_ohm"`
		Seed            uint64  `yaml:"seed"`
	} `yaml:"simulation"`
	Source struct {
		Type         string `yaml:"type"`
		DischargeCSV string `yaml:"discharge_csv"`
		AgingCSV     string `yaml:"aging_csv"`
		BaseURL      string `yaml:"base_url"`
		APIKey       string `yaml:"api_key"`
	} `yaml:"source"`
	Schedule struct {
		SOCCron string `yaml:"soc_cron"`
		SOHCron string `yaml:"soh_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Webhook struct {
		URL string `yaml:"url"`
	} `yaml:"webhook"`
	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Zero is valid for these, so they are defaulted before decoding.
	cfg.Battery.InitialSOC = DefaultInitialSOC
	cfg.Simulation.LastCycle = DefaultLastCycle

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SOURCE_TYPE"); v != "" {
		cfg.Source.Type = v
	}
	if v := os.Getenv("SOURCE_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("SOURCE_API_KEY"); v != "" {
		cfg.Source.APIKey = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_SOC"); v != "" {
		cfg.Schedule.SOCCron = v
	}
	if v := os.Getenv("CRON_SOH"); v != "" {
		cfg.Schedule.SOHCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("NOMINAL_CAPACITY_AH"); v != "" {
		var q float64
		if _, err := fmt.Sscanf(v, "%f", &q); err == nil {
			cfg.Battery.NominalCapacity = q
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	b := &c.Battery
	if b.NominalCapacity == 0 {
		b.NominalCapacity = 2.3
	}
	if b.NominalResistance == 0 {
		b.NominalResistance = 0.1
	}
	if b.SamplePeriod == 0 {
		b.SamplePeriod = 1
	}
	if b.CycleLife == 0 {
		b.CycleLife = 1000
	}
	if len(b.OCV.Coefficients) == 0 && len(b.OCV.Table) == 0 {
		ref := battery.ReferenceOCV
		b.OCV.Coefficients = []float64{ref.A, ref.B, ref.C}
	}

	s := &c.Simulation
	if s.Duration == 0 {
		s.Duration = 3600
	}
	if s.Current == 0 {
		s.Current = 1.0
	}
	if s.Seed == 0 {
		s.Seed = 42
	}

	if c.Source.Type == "" {
		c.Source.Type = SourceSimulated
	}
	c.Source.Type = strings.ToLower(c.Source.Type)
	if c.Schedule.SOCCron == "" {
		c.Schedule.SOCCron = "0 */5 * * * *"
	}
	if c.Schedule.SOHCron == "" {
		c.Schedule.SOHCron = "0 0 6 * * *"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/battery_sentinel.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, err := c.Parameters(); err != nil {
		return err
	}
	switch c.Source.Type {
	case SourceSimulated:
	case SourceCSV:
		if c.Source.DischargeCSV == "" && c.Source.AgingCSV == "" {
			return fmt.Errorf("source.discharge_csv or source.aging_csv is required for csv source")
		}
	case SourceHTTP:
		if c.Source.BaseURL == "" {
			return fmt.Errorf("source.base_url is required for http source")
		}
	default:
		return fmt.Errorf("unknown source.type %q", c.Source.Type)
	}
	if c.Simulation.Duration < 0 || c.Simulation.LastCycle < 0 {
		return fmt.Errorf("simulation duration and last_cycle must not be negative")
	}
	return nil
}

// Parameters builds the estimator parameters, including the OCV curve. A
// table takes precedence over coefficients.
func (c *Config) Parameters() (model.Parameters, error) {
	b := c.Battery
	p := model.Parameters{
		NominalCapacity:   b.NominalCapacity,
		NominalResistance: b.NominalResistance,
		InitialSOC:        b.InitialSOC,
		SamplePeriod:      b.SamplePeriod,
		CycleLife:         b.CycleLife,
	}

	switch {
	case len(b.OCV.Table) > 0:
		pts := make([]battery.OCVPoint, len(b.OCV.Table))
		for i, pt := range b.OCV.Table {
			pts[i] = battery.OCVPoint{SOC: pt.SOC, Voltage: pt.Voltage}
		}
		tbl, err := battery.NewTableOCV(pts)
		if err != nil {
			return model.Parameters{}, fmt.Errorf("battery.ocv.table: %w", err)
		}
		p.OCV, p.OCVSlope = tbl.Voltage, tbl.Slope
	case len(b.OCV.Coefficients) == 3:
		q := battery.QuadraticOCV{A: b.OCV.Coefficients[0], B: b.OCV.Coefficients[1], C: b.OCV.Coefficients[2]}
		p.OCV, p.OCVSlope = q.Voltage, q.Slope
	default:
		return model.Parameters{}, fmt.Errorf("battery.ocv.coefficients must have 3 values, got %d", len(b.OCV.Coefficients))
	}

	if err := p.ValidateSOC(); err != nil {
		return model.Parameters{}, fmt.Errorf("battery: %w", err)
	}
	return p, nil
}
