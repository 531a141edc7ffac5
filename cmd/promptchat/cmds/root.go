package cmds

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zhouzirui/prompt-chat/backend/internal/config"
	"github.com/zhouzirui/prompt-chat/backend/internal/logging"
	"github.com/zhouzirui/prompt-chat/backend/internal/service/webhook"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	v   *viper.Viper
	cfg *config.Config
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:           "promptchat",
		Short:         "Chat with the prompt generator webhook",
		Long:          "promptchat forwards chat input to the prompt generator webhook and renders its replies, either through the browser widget (serve) or in the terminal (chat, send).",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("webhook-url", "", "webhook endpoint (env WEBHOOK_URL)")
	flags.String("webhook-timeout", "", "upper bound per webhook call, 0 for none (env WEBHOOK_TIMEOUT)")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (env LOG_LEVEL)")
	flags.String("log-format", "", "log format: auto, json, console (env LOG_FORMAT)")
	flags.String("env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(
		newServeCmd(a),
		newChatCmd(a),
		newSendCmd(a),
	)
	return rootCmd
}

var flagKeys = map[string]string{
	"webhook-url":     config.KeyWebhookURL,
	"webhook-timeout": config.KeyWebhookTimeout,
	"log-level":       config.KeyLogLevel,
	"log-format":      config.KeyLogFormat,
	"port":            config.KeyPort,
	"cors-origins":    config.KeyCORSOrigins,
}

func (a *app) init(cmd *cobra.Command) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(errors.Cause(err)) {
			return errors.Wrapf(err, "load %s", envFile)
		}
	}

	for name, key := range flagKeys {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := a.v.BindPFlag(key, flag); err != nil {
				return errors.Wrapf(err, "bind flag %s", name)
			}
		}
	}

	// Interactive commands stay quiet unless asked otherwise.
	if cmd.Name() != "serve" && !cmd.Flags().Changed("log-level") && os.Getenv("LOG_LEVEL") == "" {
		a.v.SetDefault(config.KeyLogLevel, "warn")
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logging.Setup(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	log.Debug().Str("webhook", cfg.Webhook.URL).Dur("timeout", cfg.Webhook.Timeout).Msg("configuration loaded")
	return nil
}

func (a *app) webhookClient() *webhook.Client {
	return webhook.NewClient(a.cfg.Webhook.URL, webhook.WithTimeout(a.cfg.Webhook.Timeout))
}
