package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "viewport",
		Short: "Browse the movie catalog from your terminal",
		Long: "ViewPort browses the TMDb movie catalog: popular, top rated and upcoming\n" +
			"listings, genre pages, search, trailers and credits. It also runs as a\n" +
			"Telegram bot and as an MCP tool server.",
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (optional)")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(
		newVersionCmd(),
		newListCmd(),
		newGenreCmd(),
		newSearchCmd(),
		newMovieCmd(),
		newGenresCmd(),
		newShelvesCmd(),
		newBrowseCmd(),
		newBotCmd(),
		newMCPServeCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ViewPort v%s\n", version)
		},
	}
}
