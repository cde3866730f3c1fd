package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	port       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	// a missing .env is fine; real environment variables still apply
	_ = godotenv.Load()
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:           "eduquiz",
		Short:         "Timed quizzes, attempt history and achievements for students",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on (overrides config)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewLoginCmd(&configPath))
	cmd.AddCommand(NewRegisterCmd(&configPath))
	cmd.AddCommand(NewLogoutCmd(&configPath))
	cmd.AddCommand(NewWhoamiCmd(&configPath))
	cmd.AddCommand(NewQuizzesCmd(&configPath))
	cmd.AddCommand(NewTakeCmd(&configPath))
	cmd.AddCommand(NewStatsCmd(&configPath))
	return cmd
}
