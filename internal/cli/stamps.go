package cli

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/tourcompanion/internal/model"
	"github.com/mcoot/tourcompanion/internal/services/stamps"
)

// claimInput is the scanner input line that claims the pending reward
const claimInput = "claim"

func newStampsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stamps",
		Short: "Stamp collection quest commands",
	}

	cmd.AddCommand(newStampsScanCmd())
	cmd.AddCommand(newStampsProgressCmd())

	return cmd
}

func newStampsScanCmd() *cobra.Command {
	var autoClaim, wait bool

	cmd := &cobra.Command{
		Use:   "scan [code...]",
		Short: "Feed scanned codes to the stamp tracker",
		Long: `Feed scanned codes to the stamp tracker, one per argument or, with no
arguments, one per line of standard input. The line "claim" opens the reward
waiting after an accepted scan.

Scans during the cooldown or while a reward waits are ignored. --wait sleeps
out the cooldown before each scan instead.

Press Ctrl+C to stop reading.`,
		Example: `  tourcompanion stamps scan --auto-claim QUEST-STAMP-001 https://quest-stamp-002
  printf 'QUEST-STAMP-003\nclaim\n' | tourcompanion stamps scan`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := output(cmd)
			handle := func(input string) error {
				if wait {
					if err := sleepContext(ctx, app.Stamps.Progress().CooldownRemaining); err != nil {
						return err
					}
				}
				for _, view := range processScanInput(input, autoClaim) {
					out.Print(view)
				}
				return nil
			}

			if len(args) > 0 {
				for _, arg := range args {
					if err := handle(arg); err != nil {
						return ignoreCanceled(err)
					}
				}
				return nil
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				if ctx.Err() != nil {
					return nil
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if err := handle(line); err != nil {
					return ignoreCanceled(err)
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().BoolVar(&autoClaim, "auto-claim", false, "Claim each reward as soon as its scan is accepted")
	cmd.Flags().BoolVar(&wait, "wait", true, "Wait out the cooldown before each scan")

	return cmd
}

func newStampsProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show stamp progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			output(cmd).Print(progressView(app.Stamps.Progress()))
			return nil
		},
	}
}

// processScanInput runs one line of scanner input through the tracker
func processScanInput(input string, autoClaim bool) []ScanView {
	if strings.EqualFold(input, claimInput) {
		return []ScanView{claimView(input)}
	}

	result := app.Stamps.OnScan(input)
	view := ScanView{
		Input:    input,
		Outcome:  string(result.Outcome),
		Code:     result.Code,
		Progress: progressView(app.Stamps.Progress()),
	}
	if result.Outcome == stamps.Accepted {
		slot := result.Slot
		view.Slot = &slot
	}

	views := []ScanView{view}
	if autoClaim && result.Outcome == stamps.Accepted {
		views = append(views, claimView(claimInput))
	}
	return views
}

func claimView(input string) ScanView {
	slot, err := app.Stamps.OpenReward()
	if errors.Is(err, model.ErrNoPendingReward) {
		return ScanView{
			Input:    input,
			Outcome:  "no_pending_reward",
			Progress: progressView(app.Stamps.Progress()),
		}
	}
	return ScanView{
		Input:    input,
		Outcome:  "claimed",
		Slot:     &slot,
		Progress: progressView(app.Stamps.Progress()),
	}
}

// ignoreCanceled treats an interrupt as a normal end of input
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
