package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdwit/spec2admin/internal/annotation"
	"github.com/mdwit/spec2admin/internal/parser"
)

func newAdjustCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Edit x-admin annotations outside the document",
	}
	cmd.AddCommand(newAdjustExportCmd(), newAdjustCommitCmd())
	return cmd
}

func newAdjustExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <source>",
		Short: "Write the annotations of every operation to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(args)
			if err != nil {
				return err
			}
			data, err := env.document(cmd.Context())
			if err != nil {
				return err
			}
			doc, err := parser.Decode(data)
			if err != nil {
				return err
			}

			adj, err := annotation.Extract(doc)
			if err != nil {
				return err
			}
			if err := adj.Save(out); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d annotated paths to %s\n", len(adj), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "adjustments.yaml", "adjustments file")
	return cmd
}

func newAdjustCommitCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "commit <source> <adjustments>",
		Short: "Write edited annotations back into the document",
		Long: `commit moves every block from the adjustments file into the matching
operation, removes the document-level x-admin block and writes the result
as JSON. Blocks for operations missing from the document are reported.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(args[:1])
			if err != nil {
				return err
			}
			data, err := env.document(cmd.Context())
			if err != nil {
				return err
			}
			doc, err := parser.Decode(data)
			if err != nil {
				return err
			}

			adj, err := annotation.LoadAdjustments(args[1])
			if err != nil {
				return err
			}
			if err := annotation.Commit(doc, adj); err != nil {
				env.logger.Warn("some adjustments were not applied", "error", err)
			}

			// Проверяем, что документ по-прежнему компилируется
			committed, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode document: %w", err)
			}
			opts, err := env.parseOptions(nil)
			if err != nil {
				return err
			}
			res, err := parser.ParseData(committed, opts)
			if err != nil {
				return err
			}

			if err := os.WriteFile(out, committed, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Committed %d resources to %s\n", len(res.Registry.Resources()), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "openapi.admin.json", "output document")
	return cmd
}
