// catalog-e2e/internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// DefaultPath is where the harness looks for its configuration when no path is given.
const DefaultPath = "resources/configuration.ini"

// EnvPrefix prefixes environment overrides, e.g. E2E_API_CATALOGURL.
const EnvPrefix = "E2E"

var (
	// ErrMissingRequiredField is returned when a required configuration key is empty
	ErrMissingRequiredField = errors.New("missing required configuration field")
	// ErrInvalidConfigValue is returned when a configuration value cannot be parsed
	ErrInvalidConfigValue = errors.New("invalid configuration value")
)

type Config struct {
	Assets   AssetsConfig
	Inputs   InputsConfig
	Expected ExpectedConfig
	API      APIConfig
	Storage  StorageConfig
	Logging  LoggingConfig
	Await    AwaitConfig
}

// AssetsConfig locates the manifest document.
type AssetsConfig struct {
	BucketName string
	BucketKey  string
}

// InputsConfig locates where sample catalogs are uploaded.
type InputsConfig struct {
	BucketName string
	BucketKey  string
	Prefix     string
}

// ExpectedConfig holds the catalog ids expected in each ingestion status.
type ExpectedConfig struct {
	Complete  []int
	Ingesting []int
	Failed    []int
}

type APIConfig struct {
	CatalogURL string
	ProductURL string
	Timeout    time.Duration
}

type StorageConfig struct {
	Driver    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	RootDir   string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type AwaitConfig struct {
	Timeout  time.Duration
	Interval time.Duration
}

// Load reads the ini file at path, applies defaults and E2E_* environment
// overrides, and validates the keys every suite depends on.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}

	v := viper.New()
	setDefaults(v)

	values, err := readINI(path)
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(values); err != nil {
		return nil, fmt.Errorf("merging %s: %w", path, err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return build(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", "s3")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.usessl", true)
	v.SetDefault("storage.rootdir", "./data/objects")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("api.timeout", 0)
	v.SetDefault("await.timeout", 600)
	v.SetDefault("await.interval", 10)

	// Registered so that environment overrides work without an ini entry.
	for _, key := range []string{
		"assets.bucketname", "assets.bucketkey",
		"inputs.bucketname", "inputs.bucketkey", "inputs.prefix",
		"expected.complete", "expected.ingesting", "expected.failed",
		"api.catalogurl", "api.producturl",
	} {
		v.SetDefault(key, "")
	}
}

// readINI flattens every section of the file into a nested map keyed by
// lower-cased section and key names.
func readINI(path string) (map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	file, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	values := make(map[string]any)
	for _, section := range file.Sections() {
		keys := section.Keys()
		if len(keys) == 0 {
			continue
		}
		entries := make(map[string]any, len(keys))
		for _, key := range keys {
			entries[strings.ToLower(key.Name())] = key.String()
		}
		values[strings.ToLower(section.Name())] = entries
	}
	return values, nil
}

func build(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Assets: AssetsConfig{
			BucketName: v.GetString("assets.bucketname"),
			BucketKey:  v.GetString("assets.bucketkey"),
		},
		Inputs: InputsConfig{
			BucketName: v.GetString("inputs.bucketname"),
			BucketKey:  v.GetString("inputs.bucketkey"),
			Prefix:     strings.TrimSuffix(v.GetString("inputs.prefix"), "/"),
		},
		API: APIConfig{
			CatalogURL: v.GetString("api.catalogurl"),
			ProductURL: v.GetString("api.producturl"),
			Timeout:    time.Duration(v.GetInt("api.timeout")) * time.Second,
		},
		Storage: StorageConfig{
			Driver:    strings.ToLower(v.GetString("storage.driver")),
			Endpoint:  v.GetString("storage.endpoint"),
			AccessKey: v.GetString("storage.accesskey"),
			SecretKey: v.GetString("storage.secretkey"),
			Region:    v.GetString("storage.region"),
			UseSSL:    v.GetBool("storage.usessl"),
			RootDir:   v.GetString("storage.rootdir"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Await: AwaitConfig{
			Timeout:  time.Duration(v.GetInt("await.timeout")) * time.Second,
			Interval: time.Duration(v.GetInt("await.interval")) * time.Second,
		},
	}

	var err error
	if cfg.Expected.Complete, err = ParseIDList(v.GetString("expected.complete")); err != nil {
		return nil, fmt.Errorf("parsing Expected.Complete: %w", err)
	}
	if cfg.Expected.Ingesting, err = ParseIDList(v.GetString("expected.ingesting")); err != nil {
		return nil, fmt.Errorf("parsing Expected.Ingesting: %w", err)
	}
	if cfg.Expected.Failed, err = ParseIDList(v.GetString("expected.failed")); err != nil {
		return nil, fmt.Errorf("parsing Expected.failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseIDList parses a comma-separated list of integers. An empty string
// yields an empty list.
func ParseIDList(raw string) ([]int, error) {
	ids := make([]int, 0)
	if strings.TrimSpace(raw) == "" {
		return ids, nil
	}
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		id, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidConfigValue, trimmed)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Validate reports the first required key that is empty.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"Assets.BucketName", c.Assets.BucketName},
		{"Assets.BucketKey", c.Assets.BucketKey},
		{"Inputs.BucketName", c.Inputs.BucketName},
		{"Inputs.Prefix", c.Inputs.Prefix},
		{"API.CatalogUrl", c.API.CatalogURL},
		{"API.ProductUrl", c.API.ProductURL},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingRequiredField, field.name)
		}
	}

	switch c.Storage.Driver {
	case "s3", "minio", "local":
	default:
		return fmt.Errorf("%w: Storage.Driver %q", ErrInvalidConfigValue, c.Storage.Driver)
	}
	return nil
}
