package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/wpx/internal/legacy"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/urfave/cli/v3"
)

// TestConnection reports whether the legacy database is reachable and complete.
//
// A warning (missing tables) is printed but is not an error; an unreachable database is.
func (r *Runner) TestConnection(ctx context.Context, cmd *cli.Command) error {
	status := r.connector().TestConnection(ctx)

	if cmd.Bool("json") {
		if err := r.writeJSON(status, cmd.Bool("pretty")); err != nil {
			return err
		}
	} else {
		mark := map[legacy.ConnectionState]string{legacy.StateOK: "✓", legacy.StateWarning: "!", legacy.StateError: "✗"}[status.Status]
		r.writePlain("%s %s\n", mark, status.Message)
		if status.Stats != nil {
			r.writePlain("%s\n", renderTable(r.output,
				[]string{"Published posts", "Users"},
				[][]string{{strconv.Itoa(status.Stats.Posts), strconv.Itoa(status.Stats.Users)}},
				[]columnAlignment{alignRight, alignRight}))
		}
	}

	if status.Status == legacy.StateError {
		return fmt.Errorf("%w: %s", shared.ErrConnection, status.Message)
	}
	return nil
}
