package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/app/repository"
	"github.com/clawsite/clawsite/internal/pkg/database"
	"github.com/clawsite/clawsite/internal/pkg/env"
	"github.com/clawsite/clawsite/internal/pkg/pricing"
)

var pricingFile string

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load initial data into the database",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		env.SetupEnvFile()
		database.SetupDatabase()
	},
}

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Upsert pricing groups and plans from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := pricing.LoadSeed(pricingFile)
		if err != nil {
			return err
		}
		repo := repository.NewPricingRepository(database.GetDB())
		if err := pricing.NewService(repo, pricing.Environment()).Seed(cmd.Context(), f); err != nil {
			return err
		}
		log.Printf("Seeded %d groups and %d plans from %s", len(f.Groups), len(f.Plans), pricingFile)
		return nil
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin <email>",
	Short: "Create or promote an admin user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return promoteAdmin(cmd.Context(), repository.NewUserRepository(database.GetDB()), args[0])
	},
}

func promoteAdmin(ctx context.Context, repo repository.UserRepository, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := repo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &models.User{
			Name:          strings.SplitN(email, "@", 2)[0],
			Email:         email,
			EmailVerified: true,
			Role:          models.ROLE_ADMIN,
		}
		if err := repo.Create(ctx, user); err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		log.Printf("Created admin %s (%s)", email, user.ID)
		return nil
	}
	if err != nil {
		return err
	}
	user.Role = models.ROLE_ADMIN
	if err := repo.Update(ctx, user); err != nil {
		return fmt.Errorf("promote admin: %w", err)
	}
	log.Printf("Promoted %s (%s) to admin", email, user.ID)
	return nil
}

func init() {
	pricingCmd.Flags().StringVarP(&pricingFile, "file", "f", "config/pricing.yaml", "seed file")
	rootCmd.AddCommand(pricingCmd, adminCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
