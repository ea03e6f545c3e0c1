package dashboard

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/duolink/duolink/internal/catalogue"
	"github.com/duolink/duolink/internal/transport/blelink"
)

// Run starts the live status dashboard.
func Run(manager *blelink.Manager, cat *catalogue.Catalogue) error {
	m := NewModel(manager, cat)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		return err
	}
	return nil
}
