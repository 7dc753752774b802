package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/gigscope/gigscope/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	       _
	  __ _(_) __ _ ___  ___ ___  _ __   ___
	 / _' | |/ _' / __|/ __/ _ \| '_ \ / _ \
	| (_| | | (_| \__ \ (_| (_) | |_) |  __/
	 \__, |_|\__, |___/\___\___/| .__/ \___|
	 |___/   |___/              |_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gigscope",
	Short: "Browse live events and competitions from the command line.",
	Long: LOGO + `gigscope fetches events and competitions from your backend, lets you filter
and sort them, and hands tickets and entries over to your cart.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gigscope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().StringP("output", "o", "itdp", "Output flags. Supported: i (id), k (kind), t (title), c (category), l (location), d (date), p (price), r (remaining), s (status), e (excerpt)")
	rootCmd.PersistentFlags().StringP("delimiter", "d", " ", "Delimiter character to use for output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	_ = godotenv.Load(".env")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".gigscope")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("gigscope")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.gigscope.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	if err := utils.SetLogLevel(levelString); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func setDefaults() {
	viper.SetDefault("source.events_url", "")
	viper.SetDefault("source.competitions_url", "")
	viper.SetDefault("source.token", "")
	viper.SetDefault("source.rate_per_minute", 0)
	viper.SetDefault("cart.url", "")
	viper.SetDefault("cart.dbpath", "")
	viper.SetDefault("session.token", "")
	viper.SetDefault("notify.webhook_url", "")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.refresh", "@every 15m")
	viper.SetDefault("server.cors_origins", "")
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")
}
