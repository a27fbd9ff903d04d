package cli

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"

	"study-quiz-service/internal/config"
	"study-quiz-service/internal/domain"
	"study-quiz-service/internal/infra/postgres"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the built-in quizzes, skipping ones already present",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cfg.Postgres.URL == "" {
			return errors.New("postgres url is not configured")
		}

		ctx := cmd.Context()
		store, err := postgres.NewQuizStore(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SeedPredefined(ctx, domain.PredefinedQuizzes(time.Now().UTC())); err != nil {
			return err
		}
		log.Println("predefined quizzes seeded")
		return nil
	},
}
