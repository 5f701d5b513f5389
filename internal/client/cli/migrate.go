package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the local database",
		Long: `Open the local database, applying any pending schema migrations.

Other commands migrate on first use as well; this one only reports the
resulting schema version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.store.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s is at schema version %d\n", a.store.Path(), v)
			return nil
		},
	}
}
