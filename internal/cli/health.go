package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long: `Check server health and report the number of live session rooms.

With --wait the check is retried until the server answers or the
duration elapses, which suits scripts that start the server first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := checkHealth(wait, 200*time.Millisecond)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "Keep retrying for up to this long")

	return cmd
}

func checkHealth(wait, interval time.Duration) (HealthResult, error) {
	deadline := time.Now().Add(wait)

	for {
		var result HealthResult
		err := client.Get(apiPath("health"), &result)
		if err == nil && result.Status == "ok" {
			return result, nil
		}
		if err == nil {
			err = fmt.Errorf("server reported status %q", result.Status)
		}
		if !time.Now().Before(deadline) {
			return result, err
		}
		time.Sleep(interval)
	}
}
