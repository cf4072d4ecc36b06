package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/marketplace/config"
	"github.com/shashiranjanraj/marketplace/database/seeders"
	"github.com/shashiranjanraj/marketplace/pkg/database"
	"github.com/shashiranjanraj/marketplace/pkg/migration"
)

// withDB loads config, opens the database for the duration of fn and
// closes it afterwards.
func withDB(fn func(db *gorm.DB) error) error {
	if err := config.Load(); err != nil {
		return err
	}
	db, err := database.Open(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(db)
}

// marketplace migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			fmt.Println("Running migrations…")
			return migration.New(db).Run()
		})
	},
}

// marketplace migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			fmt.Println("Rolling back last batch…")
			return migration.New(db).Rollback()
		})
	},
}

// marketplace migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			return migration.New(db).Status()
		})
	},
}

// marketplace seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo accounts, categories and products",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			fmt.Println("Running seeders…")
			if err := seeders.RunAll(db); err != nil {
				return err
			}
			fmt.Printf("Demo accounts use the password %q.\n", seeders.DemoPassword)
			return nil
		})
	},
}
