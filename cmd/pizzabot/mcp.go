package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/pizzabot"
	"github.com/aretw0/pizzabot/internal/bootstrap"
	"github.com/aretw0/pizzabot/internal/cli"
	"github.com/aretw0/pizzabot/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the dialog to AI agents as MCP tools (send_message,
get_conversation, list_conversations, get_graph) and the pizzabot://graph resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		logger := bootstrap.Logger(cfg.Log)
		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		storage, err := bootstrap.NewStorage(ctx, cfg.Store, logger)
		if err != nil {
			return err
		}
		defer storage.Close()

		vocabulary, err := bootstrap.Classifier(cfg.Vocabulary)
		if err != nil {
			return err
		}
		bot := pizzabot.New(bootstrap.BotOptions(storage, vocabulary, logger)...)
		srv := mcp.NewServer(bot, bot, pizzabot.Version, logger)

		switch transport {
		case "stdio":
			// Keep stray log output off the JSON-RPC stream.
			log.SetOutput(os.Stderr)
			logger.Info("Starting pizzabot MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting pizzabot MCP Server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
