package main

import (
	"github.com/itaplanner/planner-backend/pkg/environment"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "planner",
		Short:         "Plans the work queues of employees along the business calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			env, err := environment.Load(envFile)
			if err != nil {
				return err
			}
			environment.Global = env
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path of the env file")
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newRecalcCmd())

	return cmd
}
