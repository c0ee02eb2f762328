package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/qs3c/workshop_server/config"
	"github.com/qs3c/workshop_server/internal/database"
	"github.com/qs3c/workshop_server/internal/pkg/logger"
	"github.com/qs3c/workshop_server/internal/pkg/oss"
	"github.com/qs3c/workshop_server/internal/repository"
	"github.com/qs3c/workshop_server/internal/service"
)

var (
	purgeDays  int
	exportPath string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute every user's cached credit from the credit history",
	RunE: func(cmd *cobra.Command, args []string) error {
		maintenance, _, err := setup(false)
		if err != nil {
			return err
		}
		corrected, err := maintenance.Reconcile(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("reconciled, %d balance(s) corrected\n", corrected)
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Permanently remove trashed records older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		maintenance, cfg, err := setup(false)
		if err != nil {
			return err
		}
		days := purgeDays
		if !cmd.Flags().Changed("days") {
			days = cfg.Ledger.TrashRetentionDay
		}
		if days <= 0 {
			return fmt.Errorf("retention days must be positive, got %d", days)
		}

		report, err := maintenance.PurgeExpired(cmd.Context(), days)
		if err != nil {
			return err
		}
		fmt.Printf("purged subscriptions=%d gifts=%d credit_transactions=%d skipped=%d\n",
			report.Subscriptions, report.PendingGifts, report.CreditTransactions, report.Skipped)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a JSON snapshot of the ledger to OSS or a local file",
	RunE: func(cmd *cobra.Command, args []string) error {
		maintenance, _, err := setup(exportPath == "")
		if err != nil {
			return err
		}

		if exportPath != "" {
			data, err := maintenance.BuildSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			if err := os.WriteFile(exportPath, data, 0o644); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			fmt.Printf("snapshot written to %s (%d bytes)\n", exportPath, len(data))
			return nil
		}

		key, err := maintenance.ExportSnapshot(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("snapshot uploaded: %s\n", key)
		return nil
	},
}

func init() {
	purgeCmd.Flags().IntVar(&purgeDays, "days", 30, "retention window in days (defaults to ledger.trash_retention_days)")
	exportCmd.Flags().StringVarP(&exportPath, "out", "o", "", "write the snapshot to a local file instead of OSS")
}

// setup 加载配置并构建维护服务；withOSS 为 true 时要求 OSS 可用
func setup(withOSS bool) (*service.MaintenanceService, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log, "ledgerctl")

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	var uploader service.SnapshotUploader
	if withOSS {
		client, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			return nil, nil, fmt.Errorf("init OSS client: %w", err)
		}
		uploader = client
	}

	store := repository.NewStore(db)
	credits := service.NewCreditService(store, nil)
	log.Debug().Str("driver", cfg.Database.Driver).Msg("ledgerctl ready")
	return service.NewMaintenanceService(store, credits, uploader), cfg, nil
}
