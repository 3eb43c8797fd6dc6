package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/tourcompanion/internal/model"
	"github.com/mcoot/tourcompanion/internal/services/routeguard"
)

func newRouteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <path>...",
		Short: "Show where the route guard sends each location",
		Long: `Evaluate the route guard for each path against the current session,
for example "tourcompanion route /login /tabs/map".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Nothing to navigate in a terminal; the decision is the output
			watcher := app.NewWatcher(routeguard.NavigatorFunc(func(routeguard.Action, model.Location) {}))
			defer watcher.Stop()

			views := make([]RouteView, 0, len(args))
			for _, path := range args {
				loc := model.ParseLocation(path)
				view := RouteView{Location: loc.String(), Action: watcher.SetLocation(loc)}
				if view.Action != routeguard.ActionNone {
					view.Target = app.Rules.Target(view.Action).String()
				}
				views = append(views, view)
			}

			out := output(cmd)
			if cfg.Output == "json" {
				out.Print(views)
				return nil
			}
			for _, v := range views {
				out.Print(v)
			}
			return nil
		},
	}
}
