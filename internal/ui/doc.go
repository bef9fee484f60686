// Package ui renders terminal output for klfctl.
//
// Most commands follow a "run once and exit" pattern: a Header naming the
// command, then tables or a Result box. Results keep their details in the
// order they were added, and failure boxes carry troubleshooting tips
// derived from session error hints.
//
// The one interactive component is Monitor, a Bubble Tea model used by
// "klfctl monitor --tui" that follows gateway notifications live:
//
//	events := make(chan ui.EventMsg, 64)
//	p := tea.NewProgram(ui.NewMonitor("Monitor", events))
//	go func() {
//	    // connect, then:
//	    p.Send(ui.ConnectedMsg{Host: host})
//	}()
//	_, err := p.Run()
package ui
