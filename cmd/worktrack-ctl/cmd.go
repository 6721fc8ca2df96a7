package main

import (
	"github.com/spf13/cobra"
)

// SetupCommands builds the command tree. load is called lazily so that
// --help never touches the data file.
func SetupCommands(load func(cmd *cobra.Command) (*App, error)) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "worktrack-ctl",
		Short:         "Inspect and edit the work hours data from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var year, month int
	addMonthFlags := func(c *cobra.Command) {
		c.Flags().IntVar(&year, "year", 0, "year to show (default current)")
		c.Flags().IntVar(&month, "month", 0, "month to show, 1-12 (default current)")
	}

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show month and all-time totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			return a.Summary(year, month)
		},
	}
	addMonthFlags(summaryCmd)

	daysCmd := &cobra.Command{
		Use:   "days",
		Short: "List every day of a month with its hours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			return a.Days(year, month)
		},
	}
	addMonthFlags(daysCmd)

	putCmd := &cobra.Command{
		Use:   "put DATE HOURS [NOTES]",
		Short: "Save hours for a day (DATE is YYYY-MM-DD)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var notes string
			if len(args) > 2 {
				notes = args[2]
			}
			a, err := load(cmd)
			if err != nil {
				return err
			}
			return a.Put(cmd.Context(), args[0], args[1], notes)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete DATE",
		Short: "Delete the entry for a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			return a.Delete(cmd.Context(), args[0])
		},
	}

	var output string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of all entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			return a.Export(output)
		},
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "-", "file to write, - for stdout")

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all entries with a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			return a.Import(cmd.Context(), args[0])
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			return a.Clear(cmd.Context(), yes)
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm removal of all data")

	rootCmd.AddCommand(summaryCmd, daysCmd, putCmd, deleteCmd, exportCmd, importCmd, clearCmd)
	return rootCmd
}
