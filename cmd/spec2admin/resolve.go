package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [source] <navigation-path>",
		Short: "Resolve a navigation path to the resource that produced it",
		Example: `  spec2admin resolve openapi.yaml /posts/5/read
  spec2admin resolve /posts/list`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			navPath := args[len(args)-1]
			env, err := setup(args[:len(args)-1])
			if err != nil {
				return err
			}

			res, err := env.compile(cmd.Context(), nil)
			if err != nil {
				return err
			}

			d := res.Registry.CurrentResource(navPath)
			if d == nil {
				return fmt.Errorf("no resource matches %s", navPath)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "group:      %s\n", d.GroupName)
			fmt.Fprintf(out, "action:     %s\n", d.Type)
			fmt.Fprintf(out, "operation:  %s %s\n", d.Method, d.WirePath)
			fmt.Fprintf(out, "navigation: %s\n", d.NavigationPath)
			return nil
		},
	}
}
