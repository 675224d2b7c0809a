package version

import "github.com/spf13/cobra"

// AttachCobraVersionCommand adds a "version" subcommand to root that prints
// Full().
func AttachCobraVersionCommand(root *cobra.Command) {
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(Full())
		},
	})
}
