package publish

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/compat-todo/compat-todo/internal/publish"
)

const defaultRegion = "us-east-1"

func NewCmdPublish() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish DIR",
		Short: "Upload a generated site to an S3 bucket.",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := run(cmd, args[0]); err != nil {
				log.Error(errors.Wrapf(err, "could not publish %s", args[0]))
				os.Exit(1)
			}
		},
	}

	cmd.Flags().String("bucket", "", "Destination bucket name")
	cmd.Flags().String("region", defaultRegion, "Bucket region")
	cmd.Flags().String("prefix", "", "Object key prefix. Example: --prefix site/")
	cmd.Flags().Bool("dry-run", false, "Log the uploads without sending them")

	return cmd
}

func run(cmd *cobra.Command, dir string) error {
	p, err := publish.NewPublisher(publish.Config{
		Bucket: viper.GetString("bucket"),
		Region: viper.GetString("region"),
		Prefix: viper.GetString("prefix"),
		DryRun: viper.GetBool("dry-run"),
	})
	if err != nil {
		return err
	}
	keys, err := p.Publish(cmd.Context(), dir)
	if err != nil {
		return err
	}
	cmd.Printf("Published %d files.\n", len(keys))
	return nil
}
