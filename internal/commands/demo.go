package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dotcommander/faultlog/pkg/faultlog"
)

func NewDemoCmd() *cobra.Command {
	kind := newKindValue()
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Raise sample faults through the capture entry points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				c := faultlog.NewCapturer(s.Store)
				raised := make([]faultlog.Kind, 0, len(kind.Kinds()))
				for _, k := range kind.Kinds() {
					raiseDemo(c, k)
					raised = append(raised, k)
				}

				type resp struct {
					Raised []faultlog.Kind `json:"raised"`
					Total  int             `json:"total"`
				}
				return printSuccess(cmd, resp{Raised: raised, Total: len(s.Store.Load())})
			})
		},
	}
	cmd.Flags().Var(kind, "kind", "Fault to raise: runtime, rejection, boundary or all")
	return cmd
}

func raiseDemo(c *faultlog.Capturer, k faultlog.Kind) {
	switch k {
	case faultlog.KindRuntimeException:
		func() {
			defer c.Recover()
			panic(errors.New("Test error for DebugComponent check"))
		}()
	case faultlog.KindRejectedOperation:
		c.Go(func() error { return errors.New("Test promise error") })
		c.Wait()
	case faultlog.KindBoundaryException:
		_ = c.Boundary("App").Child("DemoPage").Child("BuggyComponent").Guard(func() error {
			panic(errors.New("Test ErrorBoundary error"))
		})
	}
}
