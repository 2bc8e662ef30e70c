package cli

import (
	"fmt"

	"product-api/internal/app"
	"product-api/internal/seed"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const fileFlag = "file"

var seedFlags = map[string]cobraflags.Flag{
	fileFlag: &cobraflags.StringFlag{
		Name:  fileFlag,
		Value: "",
		Usage: "Seed file name, .gz for gzip (defaults to the configured seed source)",
	},
}

func newSeedCommand(configPath *string) *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Import products from a newline-delimited JSON file",
		Long: `Import products from a newline-delimited JSON file.

The file is read from S3 when S3 is enabled, falling back to the local file
system. Every product goes through the regular create rules, so rows carrying
an id are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(*configPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			name := seedFlags[fileFlag].GetString()
			if name == "" {
				name = cfg.Seed.Source
			}
			if name == "" {
				return fmt.Errorf("no seed file given: use --%s or SEED_SOURCE", fileFlag)
			}

			ctx := cmd.Context()

			deps, err := app.Open(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer deps.Close()

			loader := app.NewSeedLoader(ctx, cfg.Seed, logger)
			result, err := seed.NewImporter(loader, deps.ProductService, logger).Import(ctx, name)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %d products, skipped %d\n", result.Created, result.Skipped)
			return nil
		},
	}

	cobraflags.RegisterMap(seedCmd, seedFlags)
	return seedCmd
}
