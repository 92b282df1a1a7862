package main

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/clawsite/clawsite/internal/pkg/database"
	"github.com/clawsite/clawsite/internal/pkg/env"
)

var migrationsDir string

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply SQL migrations for the configured DB_DRIVER",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		env.SetupEnvFile()
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			err := m.Up()
			if errors.Is(err, migrate.ErrNoChange) {
				log.Println("No changes: database is up to date")
				return nil
			}
			if err == nil {
				log.Println("Migrations applied")
			}
			return err
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			if err := m.Steps(-1); err != nil {
				return err
			}
			log.Println("Rolled back the last migration")
			return nil
		})
	},
}

var gotoCmd = &cobra.Command{
	Use:   "goto <version>",
	Short: "Migrate up or down to a specific version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version: %w", err)
		}
		return withMigrator(func(m *migrate.Migrate) error {
			err := m.Migrate(uint(version))
			if errors.Is(err, migrate.ErrNoChange) {
				log.Printf("No changes: database is already at version %d", version)
				return nil
			}
			if err == nil {
				log.Printf("Migrated to version %d", version)
			}
			return err
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current migration version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				log.Println("No migrations have been applied yet")
				return nil
			}
			if err != nil {
				return err
			}
			suffix := ""
			if dirty {
				suffix = " (dirty)"
			}
			log.Printf("Current version: %d%s", version, suffix)
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "root directory holding one folder per driver")
	rootCmd.AddCommand(upCmd, downCmd, gotoCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

// databaseURL builds the golang-migrate URL for the configured driver.
func databaseURL() string {
	user := url.QueryEscape(env.GetEnv("DB_USER", ""))
	pass := url.QueryEscape(env.GetEnv("DB_PASSWORD", ""))
	name := env.GetEnv("DB_NAME", "")
	host := env.GetEnv("DB_HOST", "127.0.0.1")

	if database.Driver() == database.DriverMySQL {
		return fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
			user, pass, host, env.GetEnv("DB_PORT", "3306"), name)
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, pass, host, env.GetEnv("DB_PORT", "5432"), name, env.GetEnv("DB_SSLMODE", "disable"))
}

func withMigrator(fn func(m *migrate.Migrate) error) error {
	driver := database.Driver()
	log.Printf("Connecting to %s database %s@%s/%s", driver,
		env.GetEnv("DB_USER", ""), env.GetEnv("DB_HOST", "127.0.0.1"), env.GetEnv("DB_NAME", ""))

	m, err := migrate.New("file://"+migrationsDir+"/"+driver, databaseURL())
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Printf("closing migrate resources: %v, %v", sourceErr, dbErr)
		}
	}()
	return fn(m)
}
