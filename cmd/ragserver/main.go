// Ragserver is a knowledge-base question answering server.
//
// It ingests documents into a vector store and answers questions grounded
// in retrieved context, exposed over HTTP and as MCP tools on stdio.
//
// Usage:
//
//	# Start the HTTP server
//	ragserver serve
//
//	# Start the MCP server on stdio
//	ragserver mcp
//
//	# Load the knowledge base (or a specific file or directory) and exit
//	ragserver ingest
//	ragserver ingest ./docs/manual.pdf
//
//	# Configure via file or environment
//	ragserver serve --config config.yaml
//	SERVER_HTTP_PORT=9090 ragserver serve
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ragserver",
	Short: "Knowledge-base question answering server",
	Long: `ragserver ingests documents into a vector store and answers questions
grounded in retrieved context. It serves an HTTP API for chat, RAG and
document loading, and can expose the same operations as MCP tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return runServe(ctx)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return runMCP(ctx)
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Load documents into the vector store and exit",
	Long: `Load documents into the vector store. Without arguments the configured
knowledge base directory is loaded; with a path argument that file or
directory is loaded instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		return runIngest(ctx, path)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ragserver\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(versionCmd)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
