package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bz888/digest/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var errorColor = color.New(color.FgRed, color.Bold)

// exitCode lets a command pick its process exit status without printing
// anything further.
type exitCode int

func (e exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

type options struct {
	configPath string
	host       string
	model      string
	webhook    string
	timeout    time.Duration
	dev        bool
	logPath    string
}

func (o *options) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.configPath, "config", "", "Path to the YAML config file (default "+config.DefaultPath()+")")
	flags.StringVar(&o.host, "host", "", "Ollama server address (default "+config.DefaultHost+")")
	flags.StringVar(&o.model, "model", "", "Model to use (default "+config.DefaultModel+")")
	flags.BoolVar(&o.dev, "dev", false, "Development mode")
	flags.StringVar(&o.logPath, "log-path", "", "Directory for the log file")
}

// resolve layers flags over the file and environment configuration.
func (o *options) resolve(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	path := o.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, flags.Changed("config"))
	if err != nil {
		return cfg, err
	}

	if flags.Changed("host") {
		cfg.Host = o.host
	}
	if flags.Changed("model") {
		cfg.Model = o.model
	}
	if flags.Changed("discord-webhook") {
		cfg.DiscordWebhook = o.webhook
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if flags.Changed("dev") {
		cfg.Dev = o.dev
	}
	if flags.Changed("log-path") {
		cfg.LogPath = o.logPath
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func execute(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	var code exitCode
	if errors.As(err, &code) {
		os.Exit(int(code))
	}
	errorColor.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
