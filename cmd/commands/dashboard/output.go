package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/bytefmt"
	"nathanbeddoewebdev/cfdash/internal/charts"
	"nathanbeddoewebdev/cfdash/internal/dashboard"

	"github.com/spf13/cobra"
)

// topN is how many content types and countries the table lists.
const topN = 10

// printViewJSON encodes the view-model as indented JSON to stdout.
func printViewJSON(cmd *cobra.Command, vm *dashboard.ViewModel) {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.Encode(vm)
}

// printViewTable prints the totals, breakdowns and interval series as
// aligned plain text.
func printViewTable(cmd *cobra.Command, vm *dashboard.ViewModel) {
	out := cmd.OutOrStdout()

	if vm.Failed() {
		fmt.Fprintf(out, "Unable to connect to %s\n", vm.Provider)
		fmt.Fprintln(out, vm.Failure.Message)
		fmt.Fprintln(out, vm.Failure.SettingsHint)
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	source := "live"
	if vm.Cached {
		source = "cached"
	}
	t := vm.Analytics.Totals
	fmt.Fprintf(w, "View:\t%s, %s (%s)\n", vm.MetricLabel(), vm.RangeLabel(), source)
	fmt.Fprintf(w, "Requests:\t%d\t(cached %d, uncached %d)\n", t.Requests.All, t.Requests.Cached, t.Requests.Uncached)
	fmt.Fprintf(w, "Bandwidth:\t%s\t(cached %s, uncached %s)\n",
		bytefmt.Bytes(t.Bandwidth.All), bytefmt.Bytes(t.Bandwidth.Cached), bytefmt.Bytes(t.Bandwidth.Uncached))
	fmt.Fprintf(w, "Pageviews:\t%d\n", t.Pageviews.All)
	fmt.Fprintf(w, "Unique visitors:\t%d\n", t.Uniques.All)
	fmt.Fprintf(w, "SSL:\t%d encrypted, %d unencrypted\n", t.Requests.SSL.Encrypted, t.Requests.SSL.Unencrypted)
	w.Flush()

	printBars(cmd, "CONTENT TYPE", vm.Charts.ContentTypes)
	printBars(cmd, "COUNTRY", vm.Charts.Countries)
	printInterval(cmd, vm.Charts.Interval, vm.CurrentMetric == domain.MetricBandwidth)
}

func printBars(cmd *cobra.Command, heading string, bars []charts.Bar) {
	if len(bars) == 0 {
		return
	}
	fmt.Fprintln(cmd.OutOrStdout())

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "%s\tREQUESTS\n", heading)
	for i, b := range bars {
		if i == topN {
			fmt.Fprintf(w, "(%d more)\t\n", len(bars)-topN)
			break
		}
		fmt.Fprintf(w, "%s\t%d\n", b.Label, b.Value)
	}
	w.Flush()
}

func printInterval(cmd *cobra.Command, chart charts.LineChart, bytes bool) {
	fmt.Fprintln(cmd.OutOrStdout())
	if len(chart.Labels) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No interval data.")
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	headings := []string{"INTERVAL"}
	for _, ds := range chart.Datasets {
		headings = append(headings, strings.ToUpper(ds.Label))
	}
	fmt.Fprintln(w, strings.Join(headings, "\t"))

	for i, label := range chart.Labels {
		row := []string{label}
		for _, ds := range chart.Datasets {
			if bytes {
				row = append(row, bytefmt.Bytes(ds.Data[i]))
			} else {
				row = append(row, fmt.Sprintf("%d", ds.Data[i]))
			}
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}
