package cmd

import (
	"github.com/bz888/digest/internal/llm"
	"github.com/bz888/digest/internal/logger"
	"github.com/bz888/digest/internal/ui"
	"github.com/spf13/cobra"
)

func NewChatCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:     "chat",
		Short:   "Chat with a local Ollama model in the terminal",
		Version: version,
		Long: `Opens a terminal chat window. Replies stream in as the model writes them.
Type /help inside the window for the available commands.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.resolve(cmd)
			if err != nil {
				return err
			}

			client, err := llm.NewOllamaClient(cfg.Host)
			if err != nil {
				return err
			}

			view := ui.New(client, cfg.Model, cfg.Dev)
			if err := logger.InitLogger(cfg.Dev, cfg.LogPath, view.DebugConsole()); err != nil {
				return err
			}
			defer logger.Close()

			localLogger := logger.NewLogger("chat")
			if err := client.Ping(cmd.Context()); err != nil {
				localLogger.Warn(err)
			} else {
				localLogger.Info("Ollama server available at ", client.Host())
			}

			return view.Run(cmd.Context())
		},
	}

	o.addFlags(cmd)
	return cmd
}

// ExecuteChat runs the chat binary.
func ExecuteChat() {
	execute(NewChatCmd())
}
