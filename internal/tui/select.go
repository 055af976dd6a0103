// Package tui holds the interactive terminal flows of cfdash: the view
// selector form, the full-window dashboard, and the auth screens.
package tui

import (
	"context"
	"errors"
	"os"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
	"nathanbeddoewebdev/cfdash/internal/dashboard"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// ErrAborted is returned when a user cancels an interactive flow.
var ErrAborted = errors.New("aborted by user")

// ViewSelection is the range and metric picked in SelectView.
type ViewSelection struct {
	Range  domain.TimeRange
	Metric domain.MetricKind
}

// SelectView asks the user for a time range and metric, starting from
// current. metricLabels overrides the metric option labels.
func SelectView(current ViewSelection, metricLabels map[domain.MetricKind]string) (ViewSelection, error) {
	accessible := os.Getenv("ACCESSIBLE") != ""

	rangeValue := current.Range.String()
	metricValue := string(current.Metric)

	rangeField := huh.NewSelect[string]().
		Title("Time range").
		Options(rangeOptions()...).
		Value(&rangeValue)

	metricField := huh.NewSelect[string]().
		Title("Metric").
		Options(metricSelectOptions(metricLabels)...).
		Value(&metricValue)

	if err := runForm(accessible, huh.NewGroup(rangeField, metricField)); err != nil {
		return ViewSelection{}, err
	}

	r, err := domain.ParseTimeRange(rangeValue)
	if err != nil {
		return ViewSelection{}, err
	}
	m, err := domain.ParseMetricKind(metricValue)
	if err != nil {
		return ViewSelection{}, err
	}
	return ViewSelection{Range: r, Metric: m}, nil
}

// RenderWithSpinner runs a render behind a spinner on stderr.
func RenderWithSpinner(ctx context.Context, renderer Renderer, req dashboard.Request) (*dashboard.ViewModel, error) {
	var vm *dashboard.ViewModel
	err := spinner.New().
		Title("Loading analytics...").
		Accessible(os.Getenv("ACCESSIBLE") != "").
		Output(os.Stderr).
		Context(ctx).
		ActionWithErr(func(ctx context.Context) error {
			var err error
			vm, err = renderer.Render(ctx, req)
			return err
		}).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
			return nil, ErrAborted
		}
		return nil, err
	}
	return vm, nil
}

func rangeOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(domain.TimeRanges))
	for _, r := range domain.TimeRanges {
		opts = append(opts, huh.NewOption(r.Label(), r.String()))
	}
	return opts
}

func metricSelectOptions(labels map[domain.MetricKind]string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(domain.MetricKinds))
	for _, m := range domain.MetricKinds {
		label := m.Label()
		if l, ok := labels[m]; ok && l != "" {
			label = l
		}
		opts = append(opts, huh.NewOption(label, string(m)))
	}
	return opts
}

func runForm(accessible bool, groups ...*huh.Group) error {
	err := huh.NewForm(groups...).WithAccessible(accessible).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}
