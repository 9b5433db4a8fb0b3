package utils

import "github.com/spf13/cobra"

// PropagatePersistentPreRun runs the parent's PersistentPreRun, so subcommands that declare their own keep the
// global option parsing done by the root command.
var PropagatePersistentPreRun = func(cmd *cobra.Command, args []string) {
	if cmd.Parent() != nil && cmd.Parent().PersistentPreRun != nil {
		cmd.Parent().PersistentPreRun(cmd.Parent(), args)
	}
}
