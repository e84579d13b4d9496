package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/itaplanner/planner-backend/pkg/environment"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newRecalcCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "recalc [employeeID...]",
		Short: "Recalculate the queues of the given employees once",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return errors.New("name at least one employee or pass --all")
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			app, err := newApplication(ctx, environment.Global)
			if err != nil {
				return err
			}
			defer app.close()

			employeeIDs := args
			if all {
				employeeIDs, err = app.repository.FindEmployeesWithQueue(ctx)
				if err != nil {
					return err
				}
			}

			results, recalcErr := app.recalculator.RecalculateMany(ctx, employeeIDs)

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(results); err != nil {
				return err
			}

			return recalcErr
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "recalculate every employee with a non empty queue")

	return cmd
}
