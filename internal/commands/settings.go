package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/db"
)

func newMuteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mute",
		Short: "Toggle the sound played when a task is finished",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			muted, err := a.store.ToggleMute(cmd.Context())
			if err != nil {
				return err
			}
			if muted {
				fmt.Fprintln(cmd.OutOrStdout(), "🔇 Finish sound muted")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "🔊 Finish sound on")
			}
			return nil
		}),
	}
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import tasks from a saved state file",
		Long: `Import tasks from a JSON state file, such as a browser storage dump.

Older file versions are migrated on the fly. Tasks whose id already exists
are skipped, so importing the same file twice is harmless.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			st, migrated, err := db.DecodeState(data, a.store.Now())
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if migrated {
				fmt.Fprintln(cmd.OutOrStdout(), "🔄 Migrated file from an older format")
			}

			added, err := a.store.Import(cmd.Context(), st)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "📥 Imported %d task(s), skipped %d already present\n", added, len(st.Tasks)-added)
			return nil
		}),
	}
}
