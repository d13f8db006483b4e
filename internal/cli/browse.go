package cli

import (
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"datefilter/internal/sheet"
	"datefilter/internal/tui"
)

func newBrowseCommand(root *rootOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "browse FILE",
		Short: "Filter a spreadsheet in the terminal",
		Long: `Open FILE in a full-screen table with a filter box. Every keystroke
re-filters the rows. With --watch the file is reloaded whenever it changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			// the terminal belongs to the UI, so logs only go to a file
			log, closeLog, err := newLogger(cfg, io.Discard)
			if err != nil {
				return err
			}
			defer closeLog()

			ingestor := sheet.NewIngestor(sheet.Options{MaxRows: cfg.Upload.MaxRows}, log)

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt)
			defer stop()
			return tui.Run(ctx, args[0], ingestor, tui.Options{Watch: watch, Log: log})
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the file when it changes")
	return cmd
}
