package dashboard

import (
	"errors"
	"fmt"
	"os"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/dashboard"
	"nathanbeddoewebdev/cfdash/internal/tui"
	"nathanbeddoewebdev/cfdash/internal/tui/components"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

// defaultWidth is used when stdout is not a terminal.
const defaultWidth = 100

func ShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render the analytics dashboard",
		Long: `Render the analytics dashboard for the configured zone.

In a terminal with no flags this opens the interactive dashboard, where t
cycles the time range and m cycles the metric. Otherwise the view is
rendered once in the requested output format.

Examples:
  # Interactive dashboard
  cfdash dashboard show

  # Pick the view from a form, then render it
  cfdash dashboard show --select

  # Last 24 hours of bandwidth as a plain table
  cfdash dashboard show --range -1440 --metric bandwidth -o table

  # JSON view-model for scripting
  cfdash dashboard show -o json`,
		RunE:         runShow,
		SilenceUsage: true,
	}

	cmd.Flags().String("range", "", "Time range: -1440, -10080, -43200 (or day, week, month)")
	cmd.Flags().String("metric", "", "Metric: requests, pageviews, uniques, bandwidth")
	cmd.Flags().String("user", "", "User whose view preference is read and saved (default from config)")
	cmd.Flags().Bool("select", false, "Choose the range and metric from an interactive form")
	cmd.Flags().StringP("output", "o", "chart", "Output format: chart, table or json")

	return cmd
}

func runShow(cmd *cobra.Command, _ []string) error {
	output, _ := cmd.Flags().GetString("output")
	switch output {
	case "chart", "table", "json":
	default:
		return fmt.Errorf("unknown output format %q (use chart, table or json)", output)
	}

	rangeFlag, _ := cmd.Flags().GetString("range")
	metricFlag, _ := cmd.Flags().GetString("metric")
	if rangeFlag != "" {
		if _, err := domain.ParseTimeRange(rangeFlag); err != nil {
			return err
		}
	}
	if metricFlag != "" {
		if _, err := domain.ParseMetricKind(metricFlag); err != nil {
			return err
		}
	}

	cfg, a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	userFlag, _ := cmd.Flags().GetString("user")
	req := dashboard.Request{
		CurrentUserID:  cfg.User(),
		UserOverride:   userFlag,
		RangeOverride:  rangeFlag,
		MetricOverride: metricFlag,
	}
	user := req.EffectiveUser()

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if sel, _ := cmd.Flags().GetBool("select"); sel {
		pref, _ := a.Prefs.Get(user)
		choice, err := tui.SelectView(tui.ViewSelection{Range: pref.Range, Metric: pref.Metric}, cfg.Labels())
		if err != nil {
			if errors.Is(err, tui.ErrAborted) {
				return nil
			}
			return err
		}
		req.RangeOverride = choice.Range.String()
		req.MetricOverride = string(choice.Metric)
	} else if interactive && !cmd.Flags().Changed("output") && rangeFlag == "" && metricFlag == "" {
		return tui.RunDashboard(cmd.Context(), a.Controller, user)
	}

	var vm *dashboard.ViewModel
	if interactive {
		vm, err = tui.RenderWithSpinner(cmd.Context(), a.Controller, req)
		if errors.Is(err, tui.ErrAborted) {
			return nil
		}
	} else {
		vm, err = a.Controller.Render(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	switch output {
	case "json":
		printViewJSON(cmd, vm)
	case "table":
		printViewTable(cmd, vm)
	default:
		fmt.Fprintln(cmd.OutOrStdout(), components.Dashboard(vm, terminalWidth()))
	}

	if vm.Failed() {
		return fmt.Errorf("unable to connect to %s: %s", vm.Provider, vm.Failure.Message)
	}
	return nil
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}
