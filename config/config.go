package config

import (
	"bytes"
	"dealerops/report"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyStorageDBPath         = "storage.db_path"
	KeyServerPort            = "server.port"
	KeyMailURL               = "mail.url"
	KeyMailToken             = "mail.token"
	KeyMailFrom              = "mail.from"
	KeyBrands                = "brands"
	KeyReportsNameExclusions = "reports.name_exclusions"
	KeyReportsHeaderScanRows = "reports.header_scan_rows"

	DefaultDBPath                = "./dealerops.db"
	DefaultServerPort            = 8380
	DefaultReportsHeaderScanRows = 30
)

type Config struct {
	Storage StorageConfig `mapstructure:"storage" validate:"required"`
	Server  ServerConfig  `mapstructure:"server"`
	Mail    MailConfig    `mapstructure:"mail"`
	Brands  []Brand       `mapstructure:"brands"`
	Reports ReportsConfig `mapstructure:"reports"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path" validate:"required"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" validate:"gte=1,lte=65535"`
}

// MailConfig points at the mail relay. Delivery stays disabled while URL
// is empty.
type MailConfig struct {
	URL   string `mapstructure:"url" validate:"omitempty,url"`
	Token string `mapstructure:"token"`
	From  string `mapstructure:"from"`
}

// Enabled reports whether email delivery is configured.
func (m MailConfig) Enabled() bool {
	return strings.TrimSpace(m.URL) != ""
}

// Brand is the per-brand import policy. YTDSubMetrics marks brands whose
// statements carry year-to-date sub-metric values that imports must
// convert to monthly deltas.
type Brand struct {
	Name          string `mapstructure:"name"`
	YTDSubMetrics bool   `mapstructure:"ytd_submetrics"`
}

// ReportsConfig tunes the heuristic report parsers without code changes.
type ReportsConfig struct {
	NameExclusions []string `mapstructure:"name_exclusions"`
	HeaderScanRows int      `mapstructure:"header_scan_rows" validate:"gte=0"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# dealerops configuration
storage:
  db_path: "./dealerops.db"

server:
  port: 8380

# Email delivery stays disabled while mail.url is empty.
mail:
  url: ""
  token: ""
  from: ""

# Brands whose statements report sub-metrics as year-to-date totals need
# ytd_submetrics so imports convert them to monthly deltas.
brands:
  - name: "nissan"
    ytd_submetrics: true
  - name: "honda"
    ytd_submetrics: false

reports:
  name_exclusions: []
  header_scan_rows: 30
`
}

// BrandPolicy returns the configured policy for a brand, matched
// case-insensitively.
func (c *Config) BrandPolicy(name string) (Brand, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, brand := range c.Brands {
		if strings.ToLower(strings.TrimSpace(brand.Name)) == needle {
			return brand, true
		}
	}
	return Brand{}, false
}

// ProductivitySpec returns the advisor parser heuristics with the
// configured tuning applied.
func (c *Config) ProductivitySpec() report.ProductivitySpec {
	spec := report.DefaultProductivitySpec()
	if c.Reports.HeaderScanRows > 0 {
		spec.Header.MaxScanRows = c.Reports.HeaderScanRows
	}
	return spec
}

// TechHoursSpec returns the technician hours parser heuristics with the
// configured tuning applied. Configured exclusions extend the built-in
// list rather than replacing it.
func (c *Config) TechHoursSpec() report.TechHoursSpec {
	spec := report.DefaultTechHoursSpec()
	if c.Reports.HeaderScanRows > 0 {
		spec.DateScanRows = c.Reports.HeaderScanRows
	}
	spec.NameExclusions = append(spec.NameExclusions, c.Reports.NameExclusions...)
	return spec
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateBrands(cfg.Brands); err != nil {
		return nil, err
	}
	if cfg.Mail.Enabled() && strings.TrimSpace(cfg.Mail.From) == "" {
		return nil, fmt.Errorf("validation failed: mail.from is required when mail.url is set")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyStorageDBPath, DefaultDBPath)
	v.SetDefault(KeyServerPort, DefaultServerPort)
	v.SetDefault(KeyMailURL, "")
	v.SetDefault(KeyMailToken, "")
	v.SetDefault(KeyMailFrom, "")
	v.SetDefault(KeyBrands, []map[string]any{})
	v.SetDefault(KeyReportsNameExclusions, []string{})
	v.SetDefault(KeyReportsHeaderScanRows, DefaultReportsHeaderScanRows)
}

func validateBrands(brands []Brand) error {
	seen := make(map[string]struct{}, len(brands))
	for i, brand := range brands {
		name := strings.TrimSpace(brand.Name)
		if name == "" {
			return fmt.Errorf("validation failed: brands[%d].name is required", i)
		}
		key := strings.ToLower(name)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("validation failed: duplicate brand name %q", name)
		}
		seen[key] = struct{}{}
	}
	return nil
}
