package cli

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
)

func watchCmd(sess *session) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the task list every time it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("invalid interval %s", interval)
			}

			ctx := cmd.Context()
			st, err := sess.open(ctx)
			if err != nil {
				return err
			}

			snapshots, unsubscribe := st.Subscribe()
			defer unsubscribe()

			// At most one refresh runs at a time, and it finishes before
			// the command returns.
			var (
				refreshes  sync.WaitGroup
				refreshing atomic.Bool
			)
			defer refreshes.Wait()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			out := cmd.OutOrStdout()
			var printed string
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if !refreshing.CompareAndSwap(false, true) {
						continue
					}
					refreshes.Add(1)
					go func() {
						defer refreshes.Done()
						defer refreshing.Store(false)
						st.Refresh(ctx)
					}()
				case snap := <-snapshots:
					if snap.Loading {
						continue
					}
					if snap.Error != "" {
						fmt.Fprintf(out, "Error: %s\n", snap.Error)
						continue
					}
					current := fmt.Sprint(snap.Tasks)
					if current == printed {
						continue
					}
					printed = current
					fmt.Fprintf(out, "--- %s\n", time.Now().Format(time.TimeOnly))
					err := printTasks(out, snap.Tasks)
					if err != nil {
						return err
					}
				}
			}
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", 2*time.Second, "Refresh interval")

	return cmd
}
