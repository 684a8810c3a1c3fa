package cmd

import (
	"context"
	"fmt"
	"log"

	"riseup/config"
	"riseup/storage"

	"github.com/spf13/cobra"
)

var minioPrefix string

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Inspect the media bucket",
	Long:  `Connect to MinIO and list the objects under the media bucket. Useful to verify uploads landed where the track URLs point.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("MinIO: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		store, err := storage.NewMinioStore(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
		fmt.Println("MinIO connection established.")

		objects, err := store.ListObjects(context.Background(), minioPrefix)
		if err != nil {
			log.Fatalf("Failed to list objects: %v", err)
		}
		for _, obj := range objects {
			fmt.Printf("%10d  %s\n", obj.Size, obj.Key)
		}
		fmt.Printf("%d objects.\n", len(objects))
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "filter objects by key prefix")
	minioCmd.Example = `  # List every object in the media bucket
  riseup_server minio

  # Only admin track audio
  riseup_server minio -p "admin-tracks/audio/"`
}
