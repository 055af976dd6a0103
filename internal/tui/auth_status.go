package tui

import (
	"errors"
	"fmt"
	"strings"

	"nathanbeddoewebdev/cfdash/internal/services/auth"
	"nathanbeddoewebdev/cfdash/internal/tui/styles"
)

// ProviderStatus is the credential state of one analytics provider.
type ProviderStatus struct {
	Name   string
	Status string
	OK     bool
}

// CheckAuth looks up a token for every provider in names.
func CheckAuth(store auth.Store, names []string) []ProviderStatus {
	statuses := make([]ProviderStatus, 0, len(names))
	for _, name := range names {
		_, err := store.GetToken(name)
		switch {
		case err == nil:
			statuses = append(statuses, ProviderStatus{Name: name, Status: "authenticated", OK: true})
		case errors.Is(err, auth.ErrTokenNotFound):
			statuses = append(statuses, ProviderStatus{Name: name, Status: "not authenticated"})
		default:
			statuses = append(statuses, ProviderStatus{Name: name, Status: fmt.Sprintf("error: %v", err)})
		}
	}
	return statuses
}

// RenderAuthStatus renders statuses as a card.
func RenderAuthStatus(statuses []ProviderStatus) string {
	if len(statuses) == 0 {
		return styles.MutedText.Render("No providers registered.")
	}

	labelWidth := 16
	rows := make([]string, 0, len(statuses))
	for _, ps := range statuses {
		name := styles.Label.Width(labelWidth).Render(ps.Name)
		if ps.OK {
			rows = append(rows, name+styles.SuccessText.Render(ps.Status))
		} else {
			rows = append(rows, name+styles.MutedText.Render(ps.Status))
		}
	}

	return styles.Title.Render("Provider Authentication") + "\n" +
		styles.Card.Width(48).Render(strings.Join(rows, "\n"))
}
