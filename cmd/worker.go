package cmd

import (
	"sync"

	"lendfi/worker"
	"lendfi/worker/priceoracle"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "lendfi job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		workers := []worker.Worker{
			priceoracle.New(
				cfg.App.Location,
				cfg.Oracle.EndPoint,
				database,
				provideAssetStore(database),
				providePriceStore(database),
				provideOracleService(database),
			),
		}

		wg := sync.WaitGroup{}
		for _, w := range workers {
			wg.Add(1)

			go func(worker worker.Worker) {
				defer wg.Done()
				worker.Run(ctx)
			}(w)
		}

		wg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
