package main

import (
	"fmt"

	"github.com/spf13/cobra"

	platformobjectstore "github.com/animus-labs/expense-tracker/internal/platform/objectstore"
	"github.com/animus-labs/expense-tracker/internal/report"
	"github.com/animus-labs/expense-tracker/internal/storage/objectstore"
)

func newPublishCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Upload the latest report and snapshot to object storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			storeCfg, err := platformobjectstore.ConfigFromEnv()
			if err != nil {
				return fmt.Errorf("object store config: %w", err)
			}
			client, err := platformobjectstore.NewMinIOClient(storeCfg)
			if err != nil {
				return err
			}
			if err := platformobjectstore.EnsureReportsBucket(ctx, client, storeCfg); err != nil {
				return err
			}
			store, err := objectstore.NewMinioStoreWithClient(client)
			if err != nil {
				return err
			}
			publisher, err := report.NewPublisher(store, storeCfg.BucketReports)
			if err != nil {
				return err
			}

			pub, err := publisher.Publish(ctx, a.cfg.Layout.ReportPath(), a.cfg.Layout.SnapshotPath())
			if err != nil {
				return err
			}
			a.logger.Info("report published", "publication_id", pub.ID, "bucket", pub.Bucket, "objects", len(pub.Objects))
			for _, obj := range pub.Objects {
				fmt.Fprintf(a.stdout, "%s/%s\n", pub.Bucket, obj.Key)
			}
			return nil
		},
	}
}
