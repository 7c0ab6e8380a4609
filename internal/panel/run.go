package panel

import (
	"context"
	"errors"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the panel for src until the user quits or ctx is done.
func Run(ctx context.Context, src Source, opts ModelOptions, progOpts ...tea.ProgramOption) error {
	var prog atomic.Pointer[tea.Program]

	// Notifications can arrive on the program's own goroutine (a clear from
	// inside Update), and Send blocks until the loop reads it.
	mirror := Attach(src, OnChange(func() {
		if p := prog.Load(); p != nil {
			go p.Send(ChangedMsg{})
		}
	}))
	defer mirror.Detach()

	all := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, progOpts...)
	p := tea.NewProgram(NewModel(mirror, opts), all...)
	prog.Store(p)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
