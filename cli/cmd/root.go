/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	prompt "github.com/c-bata/go-prompt"
	"github.com/mattn/go-shellwords"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hayoon/aptchat/chat/api"
	"github.com/hayoon/aptchat/chat/domain"
	"github.com/hayoon/aptchat/chat/session"
	"github.com/hayoon/aptchat/chat/stomp"
)

var (
	cfgFile     string
	sess        *session.Session
	roomAPI     session.RoomAPI
	metricsOnce sync.Once
)

const (
	apiBaseURLKey  = "api_base_url"
	userIDKey      = "user_id"
	displayNameKey = "display_name"
	apartmentKey   = "apartment"
	buildingKey    = "building"
	unitKey        = "unit"
	adminKey       = "admin"
	logLevelKey    = "log_level"
	metricsAddrKey = "metrics_addr"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aptchat",
	Short: "Chat client for the apartment community backend",
	Long: `aptchat talks to the apartment community chat backend: room listing
and membership over its REST endpoints, live messages over STOMP on
a WebSocket. Run a subcommand directly or start without arguments
for an interactive prompt.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		user := domain.User{
			ID:        viper.GetInt(userIDKey),
			Name:      viper.GetString(displayNameKey),
			Apartment: viper.GetString(apartmentKey),
			Building:  viper.GetString(buildingKey),
			Unit:      viper.GetString(unitKey),
		}
		base := viper.GetString(apiBaseURLKey)
		if base == "" {
			return fmt.Errorf("%s is not set", apiBaseURLKey)
		}

		if viper.GetBool(adminKey) {
			roomAPI = api.NewAdmin(base, user)
		} else {
			roomAPI = api.NewResident(base, user)
		}

		// sess is assigned after NewClient returns, so the state callback
		// closes over the variable rather than the value.
		tr := stomp.NewClient(stomp.EndpointURL(base), func(state domain.ConnectionState) {
			if sess != nil {
				sess.NotifyState(state)
			}
		})
		sess = session.New(roomAPI, tr, user)

		if addr := viper.GetString(metricsAddrKey); addr != "" {
			metricsOnce.Do(func() {
				go func() {
					if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
						log.Warn().Err(err).Str("addr", addr).Msg("metrics listener stopped")
					}
				}()
			})
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if sess != nil {
			sess.Disconnect()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// one‑shot
	if len(os.Args) > 1 {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
			return
		}
		return
	}

	// REPL
	fmt.Println("entering interactive mode, type 'exit' to quit")
	for {
		line := prompt.Input("❯❯❯ ", replCompleter)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}
		args, err := shellwords.Parse(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "parse error:", err)
			continue
		}
		rootCmd.SetArgs(args)
		if err := rootCmd.Execute(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func replCompleter(d prompt.Document) []prompt.Suggest {
	suggests := []prompt.Suggest{
		{Text: "rooms", Description: "List chat rooms"},
		{Text: "join", Description: "Open a room"},
		{Text: "tail", Description: "Print a room's recent messages"},
		{Text: "send", Description: "Send one message to a room"},
		{Text: "create", Description: "Create a room"},
		{Text: "leave", Description: "Leave a room"},
		{Text: "close", Description: "Close a room (admin)"},
		{Text: "whoami", Description: "Print the configured identity"},
		{Text: "exit", Description: "Quit"},
	}
	return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), true)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.aptchat.yaml)")
	rootCmd.PersistentFlags().String("api-base-url", "", "Base URL of the chat backend (e.g., https://apt.example.com/api)")
	rootCmd.PersistentFlags().Int("user-id", 0, "Numeric user id for publishing messages")
	rootCmd.PersistentFlags().String("name", "", "Display name shown on own messages")
	rootCmd.PersistentFlags().Bool("admin", false, "Use the admin endpoint set")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (trace, debug, info, warn, error)")

	viper.BindPFlag(apiBaseURLKey, rootCmd.PersistentFlags().Lookup("api-base-url"))
	viper.BindPFlag(userIDKey, rootCmd.PersistentFlags().Lookup("user-id"))
	viper.BindPFlag(displayNameKey, rootCmd.PersistentFlags().Lookup("name"))
	viper.BindPFlag(adminKey, rootCmd.PersistentFlags().Lookup("admin"))
	viper.BindPFlag(logLevelKey, rootCmd.PersistentFlags().Lookup("log-level"))
	viper.SetDefault(logLevelKey, "warn")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".aptchat" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".aptchat")
	}

	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}

	level, err := zerolog.ParseLevel(viper.GetString(logLevelKey))
	if err != nil {
		level = zerolog.WarnLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
