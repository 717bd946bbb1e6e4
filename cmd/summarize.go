package cmd

import (
	"io"
	"os"

	"github.com/bz888/digest/internal/discord"
	"github.com/bz888/digest/internal/llm"
	"github.com/bz888/digest/internal/logger"
	"github.com/bz888/digest/internal/summary"
	"github.com/spf13/cobra"
)

func NewSummarizeCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:     "summarize",
		Short:   "Summarize newline-delimited chat messages read from stdin",
		Version: version,
		Long: `Reads one JSON message per line from standard input, for example

  {"author":"ana","content":"release is out","timestamp":1700000000}

sends them to a local Ollama model in a single request and prints the summary.`,
		Example: `  # Summarize an export with the default model
  $ digest-summarize < messages.jsonl

  # Use another model and post the result to Discord
  $ digest-summarize --model llama3:latest --discord-webhook "$WEBHOOK" < messages.jsonl`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.resolve(cmd)
			if err != nil {
				return err
			}

			if err := logger.InitLogger(cfg.Dev, cfg.LogPath, nil); err != nil {
				return err
			}
			defer logger.Close()

			client, err := llm.NewOllamaClient(cfg.Host)
			if err != nil {
				return err
			}

			var deliver summary.Deliverer
			if cfg.DiscordWebhook != "" {
				webhook, err := discord.NewWebhook(cfg.DiscordWebhook, "digest")
				if err != nil {
					return err
				}
				deliver = webhook
			}

			s := summary.New(client, cfg.Model,
				summary.WithPrompt(cfg.Prompt),
				summary.WithTimeout(cfg.Timeout),
			)
			if code := summary.Run(cmd.Context(), stdin, stdout, s, deliver); code != 0 {
				return exitCode(code)
			}
			return nil
		},
	}

	o.addFlags(cmd)
	cmd.Flags().StringVar(&o.webhook, "discord-webhook", "", "Discord webhook URL to post the summary to")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "Timeout for the generation request (0 means none)")
	return cmd
}

// ExecuteSummarize runs the summarize binary.
func ExecuteSummarize() {
	execute(NewSummarizeCmd(os.Stdin, os.Stdout))
}
