package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/candidate-lens/internal/scoring"
)

const (
	app = "candidate-lens"

	providerHTTP   = "http"
	providerGemini = "gemini"
)

type Config struct {
	Provider     string           `mapstructure:"provider"`
	Mode         string           `mapstructure:"mode"`
	Model        string           `mapstructure:"model"`
	Models       []string         `mapstructure:"models"`
	MaxLogLength int              `mapstructure:"max-log-length"`
	Scoring      ScoringConfig    `mapstructure:"scoring"`
	Gemini       GeminiConfig     `mapstructure:"gemini"`
	Candidates   CandidatesConfig `mapstructure:"candidates"`
	Filter       FilterConfig     `mapstructure:"filter"`
}

type ScoringConfig struct {
	URL          string        `mapstructure:"url"`
	BasicPath    string        `mapstructure:"basic-path"`
	AdvancedPath string        `mapstructure:"advanced-path"`
	TokenFile    string        `mapstructure:"token-file"`
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user-agent"`
}

type GeminiConfig struct {
	APIKeyFile  string `mapstructure:"api-key-file"`
	MaxRetries  int    `mapstructure:"max-retries"`
	Parallelism int    `mapstructure:"parallelism"`
}

type CandidatesConfig struct {
	File string `mapstructure:"file"`
}

type FilterConfig struct {
	Statuses      []string `mapstructure:"statuses"`
	MinConfidence float64  `mapstructure:"min-confidence"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "candidate-lens submits a job description for AI screening and lets you browse the evaluated candidates",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is candidate-lens.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", providerHTTP)
	v.SetDefault("mode", "advanced")
	v.SetDefault("max-log-length", 200)
	v.SetDefault("scoring.url", scoring.DefaultURL)
	v.SetDefault("scoring.basic-path", scoring.DefaultBasicPath)
	v.SetDefault("scoring.advanced-path", scoring.DefaultAdvancedPath)
	v.SetDefault("scoring.timeout", 10*time.Minute)
	v.SetDefault("gemini.max-retries", 3)
	v.SetDefault("gemini.parallelism", 4)
	v.SetDefault("candidates.file", "candidates.csv")
}

func initConfig() {
	// A missing .env is the normal case.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if err := bindEnv(viper.GetViper()); err != nil {
		log.Fatal(err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every setting has a default, so the file is only required when given explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix("CANDIDATE_LENS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("scoring.token-file", "CANDIDATE_LENS_SCORING_TOKEN_FILE"); err != nil {
		return err
	}
	return v.BindEnv("gemini.api-key-file", "GEMINI_API_KEY_FILE")
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return config, err
	}
	if config == nil {
		return nil, errors.New("config is required")
	}

	if err := normalizeProvider(config); err != nil {
		return nil, err
	}

	return config, nil
}

// normalizeProvider lower-cases the provider, defaults it to http and
// rejects unknown ones.
func normalizeProvider(config *Config) error {
	config.Provider = strings.ToLower(strings.TrimSpace(config.Provider))
	switch config.Provider {
	case "":
		config.Provider = providerHTTP
	case providerHTTP, providerGemini:
	default:
		return errors.New("unsupported provider " + config.Provider + ": expected http or gemini")
	}
	return nil
}
