package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdwit/spec2admin/internal/session"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the saved document and presentation preferences",
	}
	cmd.AddCommand(newSessionSaveCmd(), newSessionShowCmd(), newSessionResetCmd())
	return cmd
}

func newSessionSaveCmd() *cobra.Command {
	var (
		primaryColor string
		theme        string
		background   string
		darkMode     bool
	)

	cmd := &cobra.Command{
		Use:   "save [source]",
		Short: "Compile a document and save it with preferences",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			s, err := session.Load(ctx, env.store)
			if err != nil {
				return err
			}

			if len(args) > 0 {
				data, err := env.document(ctx)
				if err != nil {
					return err
				}
				s.Document = data
				s.Source = env.cfg.Source
			}

			flags := cmd.Flags()
			if flags.Changed("primary-color") {
				s.Preferences.PrimaryColor = primaryColor
			}
			if flags.Changed("theme") {
				s.Preferences.ThemeVariant = theme
			}
			if flags.Changed("background") {
				s.Preferences.BackgroundImage = background
			}
			if flags.Changed("dark-mode") {
				s.Preferences.DarkMode = darkMode
			}

			// Документ сохраняется, только если он компилируется
			if len(s.Document) > 0 {
				opts, err := env.parseOptions(nil)
				if err != nil {
					return err
				}
				if _, err := s.Registry(opts); err != nil {
					return err
				}
			}

			if err := s.Save(ctx, env.store); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s saved in %s\n", s.ID, env.store.Dir())
			return nil
		},
	}

	cmd.Flags().StringVar(&primaryColor, "primary-color", "", "primary color, e.g. #1976d2")
	cmd.Flags().StringVar(&theme, "theme", "", "theme variant (light, dark, system)")
	cmd.Flags().StringVar(&background, "background", "", "background image URL")
	cmd.Flags().BoolVar(&darkMode, "dark-mode", false, "enable dark mode")
	return cmd
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(nil)
			if err != nil {
				return err
			}
			s, err := session.Load(cmd.Context(), env.store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:            %s\n", s.ID)
			if !s.UpdatedAt.IsZero() {
				fmt.Fprintf(out, "updated:       %s\n", s.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintf(out, "source:        %s\n", s.Source)
			fmt.Fprintf(out, "document:      %d bytes\n", len(s.Document))
			fmt.Fprintf(out, "primary color: %s\n", s.Preferences.PrimaryColor)
			fmt.Fprintf(out, "theme:         %s\n", s.Preferences.ThemeVariant)
			fmt.Fprintf(out, "background:    %s\n", s.Preferences.BackgroundImage)
			fmt.Fprintf(out, "dark mode:     %t\n", s.Preferences.DarkMode)

			if len(s.Document) > 0 {
				opts, err := env.parseOptions(nil)
				if err != nil {
					return err
				}
				res, err := s.Registry(opts)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "groups:        %v\n", res.Registry.GroupNames())
			}
			return nil
		},
	}
}

func newSessionResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(nil)
			if err != nil {
				return err
			}
			if err := session.Reset(cmd.Context(), env.store); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session reset")
			return nil
		},
	}
}
