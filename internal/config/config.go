package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir  string
	WindPath string

	// Dataset selectors.
	RaceSource        string `validate:"oneof=DEC ACS"`
	ElectionParty     string `validate:"oneof=Democrat Republican Green Libertarian Other all"`
	EducationBand     string `validate:"oneof=18-24 25+ all"`
	SolarSize         string `validate:"oneof=all small_only medium_only large_only all_only"`
	ElectricDataset   string `validate:"oneof=NREL EIA"`
	ElectricClass     string `validate:"oneof=commercial residential both"`
	IncludeRuralUrban bool

	// Suitability zonal statistics.
	SuitabilityEnabled    bool
	SuitabilityBoundaries string
	SuitabilityLayers     []string
	SuitabilityRasterCRS  string
	NetCDFVariable        string

	// Sinks. Empty paths disable the file sinks.
	OutputCSV      string
	OutputXLSX     string
	OutputSQLite   string
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
	DatasetVersion string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	ExitOnComplete  bool
}

var validate = validator.New()

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	dataDir := sharedcfg.EnvOrDefault("DATA_DIR", "data")
	cfg := &Config{
		DataDir:  dataDir,
		WindPath: os.Getenv("WIND_PATH"),

		RaceSource:        sharedcfg.EnvOrDefault("RACE_SOURCE", string(domain.RaceDEC)),
		ElectionParty:     sharedcfg.EnvOrDefault("ELECTION_PARTY", string(domain.PartyDemocrat)),
		EducationBand:     sharedcfg.EnvOrDefault("EDUCATION_BAND", string(domain.Education18to24)),
		SolarSize:         sharedcfg.EnvOrDefault("SOLAR_SIZE", string(domain.SolarSelectAll)),
		ElectricDataset:   sharedcfg.EnvOrDefault("ELECTRIC_DATASET", string(domain.ElectricNREL)),
		ElectricClass:     sharedcfg.EnvOrDefault("ELECTRIC_CLASS", string(domain.ClassBoth)),
		IncludeRuralUrban: envBool("INCLUDE_RURAL_URBAN", true),

		SuitabilityEnabled:    envBool("SUITABILITY_ENABLED", false),
		SuitabilityBoundaries: sharedcfg.EnvOrDefault("SUITABILITY_BOUNDARIES", filepath.Join(dataDir, "county_clean", "county_bounding_boxes.gpkg")),
		SuitabilityLayers:     splitList(os.Getenv("SUITABILITY_LAYERS")),
		SuitabilityRasterCRS:  os.Getenv("SUITABILITY_RASTER_CRS"),
		NetCDFVariable:        sharedcfg.EnvOrDefault("NETCDF_VARIABLE", "data"),

		OutputCSV:      sharedcfg.EnvOrDefault("OUTPUT_CSV", "county_features.csv"),
		OutputXLSX:     os.Getenv("OUTPUT_XLSX"),
		OutputSQLite:   os.Getenv("OUTPUT_SQLITE"),
		KafkaEnabled:   envBool("KAFKA_ENABLED", false),
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "county-features"),
		DatasetVersion: sharedcfg.EnvOrDefault("DATASET_VERSION", "v1"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		ExitOnComplete:  envBool("EXIT_ON_COMPLETE", true),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSelector, err)
	}
	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	if cfg.SuitabilityEnabled && len(cfg.SuitabilityLayers) == 0 {
		return nil, errors.New("SUITABILITY_LAYERS is required when SUITABILITY_ENABLED is true")
	}

	return cfg, nil
}

// Options returns the dataset selectors of the build.
func (c *Config) Options() domain.Options {
	return domain.Options{
		Race:              domain.RaceSource(c.RaceSource),
		Party:             domain.Party(c.ElectionParty),
		Education:         domain.EducationBand(c.EducationBand),
		Solar:             domain.SolarSelection(c.SolarSize),
		ElectricDataset:   domain.ElectricDataset(c.ElectricDataset),
		ElectricClass:     domain.CustomerClass(c.ElectricClass),
		IncludeRuralUrban: c.IncludeRuralUrban,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envBool accepts "true" and "false"; anything else keeps the default.
func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "true":
		return true
	case "false":
		return false
	default:
		return def
	}
}
