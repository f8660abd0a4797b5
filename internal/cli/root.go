package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/aletheia/internal/logging"
	"github.com/ppiankov/aletheia/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "aletheia",
	Short: "Aletheia - Triplet-level fact checking of generated answers",
	Long: `Aletheia fact-checks a generated answer against reference documents.

Both the answer and the references are reduced to subject-predicate-object
triplets by a generative model; the model is then asked, triplet by triplet,
whether each answer fact is supported by the reference facts.

Aletheia reports support, not truth: a fact the references do not cover is
"unsupported", which is a statement about the references as much as about
the answer.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Aletheia.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("aletheia v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.aletheia/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.aletheia")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match ALETHEIA_*
	viper.SetEnvPrefix("ALETHEIA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds the effective configuration: built-in defaults, then the
// config file, then flags. The process logger is installed as a side effect
// so every component constructed afterwards logs at the requested level.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	// earlier releases named this key logger_level; keep accepting it
	if !viper.IsSet("logging.level") && viper.IsSet("logger_level") {
		cfg.Logging.Level = viper.GetString("logger_level")
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if verbose {
		cfg.Output.Verbose = true
		if logLevel == "" {
			cfg.Logging.Level = "debug"
		}
	}

	logging.Setup(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	return cfg, nil
}

// configureLLM applies the shared provider/model flag overrides and resolves
// API keys from the environment. Key material never travels through flags.
func configureLLM(cfg *model.Config) error {
	if llmProvider != "" {
		cfg.Model.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.Model.LLM.GeneratorModel = llmModel
	}

	switch strings.ToLower(cfg.Model.LLM.Provider) {
	case "openai":
		if cfg.Model.LLM.APIKey == "" {
			cfg.Model.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.Model.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.Model.LLM.APIKey == "" {
			cfg.Model.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if cfg.Model.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.Model.LLM.BaseURL == "" {
			cfg.Model.LLM.BaseURL = baseURL
		}
	}

	return nil
}
