package command

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamavenir/imsgexport/internal/db"
)

func writeCommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())

	if isSchemaError(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Hint: the database does not look like a message store. Expected tables and columns:")
		fmt.Fprint(cmd.ErrOrStderr(), db.LayoutDescription())
	}

	return err
}

// isSchemaError checks if an error comes from a table or column the store
// is missing.
func isSchemaError(err error) bool {
	return err != nil && errors.Is(err, db.ErrSchema)
}
