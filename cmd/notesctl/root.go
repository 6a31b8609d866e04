package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/debemdeboas/the-notes/internal/config"
	"github.com/debemdeboas/the-notes/internal/db"
	"github.com/debemdeboas/the-notes/internal/logger"
	"github.com/debemdeboas/the-notes/internal/notes"
	"github.com/debemdeboas/the-notes/internal/store"
)

// storeOpener connects to the note store. The returned func releases it.
type storeOpener func(ctx context.Context) (store.NoteStore, func(), error)

// openConfiguredStore connects to the store named by NOTES_STORE_URL and
// NOTES_STORE_KEY, the same way the server does.
func openConfiguredStore(ctx context.Context) (store.NoteStore, func(), error) {
	config.LoadEnv()
	if err := config.LoadConfig(config.ConfigPath()); err != nil {
		return nil, nil, fmt.Errorf(config.ErrLoadConfigFmt, err)
	}
	creds, err := config.LoadStoreCredentials()
	if err != nil {
		return nil, nil, err
	}

	s, err := store.New(ctx, creds, config.AppConfig.Store)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if c, ok := s.(store.Closer); ok {
			c.Close()
		}
	}
	return s, release, nil
}

// cli carries what every subcommand needs.
type cli struct {
	open    storeOpener
	in      io.Reader
	out     io.Writer
	verbose bool
}

// controller opens the store and loads the full note list.
func (c *cli) controller(ctx context.Context) (*notes.Controller, func(), error) {
	s, release, err := c.open(ctx)
	if err != nil {
		return nil, nil, err
	}
	ctrl := notes.New(s)
	if err := ctrl.Refresh(ctx, ""); err != nil {
		release()
		return nil, nil, err
	}
	return ctrl, release, nil
}

func newRootCmd(open storeOpener, in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{open: open, in: in, out: out}

	rootCmd := &cobra.Command{
		Use:   "notesctl",
		Short: "Manage notes from the terminal",
		Long: `notesctl lists, shows, adds, edits and removes notes in the same
note store the web client uses. The store is picked from NOTES_STORE_URL
and NOTES_STORE_KEY (an .env file in the working directory is read too).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if c.verbose {
				level = "debug"
			}
			l := logger.NewWithFormat(level, logger.FormatConsole, cmd.ErrOrStderr())
			config.SetLogger(l)
			db.SetLogger(l)
			store.SetLogger(l)
			notes.SetLogger(l)
		},
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		newListCmd(c),
		newShowCmd(c),
		newAddCmd(c),
		newEditCmd(c),
		newRmCmd(c),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd(openConfiguredStore, os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
