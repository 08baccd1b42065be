package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var healthWait time.Duration

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the server is serving",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := dial(cmd)
		if err != nil {
			return err
		}
		defer c.Close()
		if healthWait > 0 {
			if err := c.WaitForReady(cmd.Context(), healthWait); err != nil {
				return fmt.Errorf("server at %s not ready: %w", c.Location(), err)
			}
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		status, err := c.Health(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", c.Location(), status)
		if status != healthpb.HealthCheckResponse_SERVING {
			return fmt.Errorf("server at %s is %s", c.Location(), status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().DurationVarP(&healthWait, "wait", "w", 0, "Retry until the server is ready or this much time passes")
}
