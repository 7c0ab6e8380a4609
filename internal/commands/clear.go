package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotcommander/faultlog/internal/panel"
)

func NewClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded fault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			return withSession(cmd, func(s *session) error {
				mirror := panel.Attach(s.Store)
				defer mirror.Detach()

				n := mirror.Len()
				type resp struct {
					Cleared   int  `json:"cleared"`
					Cancelled bool `json:"cancelled,omitempty"`
				}
				ok := mirror.Clear(func() bool {
					if yes {
						return true
					}
					return confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Clear all %d fault records? [y/N] ", n))
				})
				if !ok {
					return printSuccess(cmd, resp{Cancelled: true})
				}
				return printSuccess(cmd, resp{Cleared: n})
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// confirm writes prompt to w and reports whether the next line read from r is
// a yes.
func confirm(r io.Reader, w io.Writer, prompt string) bool {
	_, _ = io.WriteString(w, prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
