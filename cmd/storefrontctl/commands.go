package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storefront-backend/internal/database"
	"storefront-backend/internal/repository"
	"storefront-backend/internal/services"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			step(cmd.OutOrStdout(), "applying migrations from %s", e.cfg.MigrationsDir)
			if err := database.RunMigrations(ctx, e.pool, e.cfg.MigrationsDir, e.log); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fetch the seed catalog and upsert it into products",
		Long: `Seed downloads the product feed from SEED_SOURCE_URL and upserts every
product by id. Running it twice leaves the catalog unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			redisClients, err := database.NewRedisClients(e.cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("connect redis: %w", err)
			}
			defer redisClients.Close()

			productRepo := repository.NewProductRepo(e.pool)
			catalog := services.NewCatalogService(productRepo, services.NewRedisCache(redisClients.Cmd), e.cfg.CategoryCacheTTL, e.log)
			events := services.NewCatalogEvents(redisClients.Cmd, e.log)

			step(cmd.OutOrStdout(), "fetching %s", e.cfg.SeedSourceURL)
			res, err := services.NewSeedService(productRepo, e.cfg.SeedSourceURL, catalog, events, e.log).Seed(ctx)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%s (%d products)", res.Message, res.Inserted)
			return nil
		},
	}
}

func newRewriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rewrite <product-id>",
		Short: "Regenerate one product description with the language model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := services.ParseProductID(json.RawMessage(strconv.Quote(args[0])))
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			redisClients, err := database.NewRedisClients(e.cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("connect redis: %w", err)
			}
			defer redisClients.Close()

			llm, err := services.NewLLM(e.cfg)
			if err != nil {
				return fmt.Errorf("init llm: %w", err)
			}
			defer llm.Close()

			desc := services.NewDescriptionService(repository.NewProductRepo(e.pool), llm, services.NewCatalogEvents(redisClients.Cmd, e.log), e.log)
			res, err := desc.Rewrite(ctx, id)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "product %d rewritten", res.ProductID)
			fmt.Fprintln(cmd.OutOrStdout(), res.Description)
			return nil
		},
	}
}
