// Package cli is the calc command line: one-shot evaluation, history and
// theme management against the same store the server uses, and an MCP
// server over stdio.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"calc-server/internal/app"
	"calc-server/internal/calculator"
	"calc-server/internal/config"
	"calc-server/internal/expr"
	"calc-server/internal/history"
	"calc-server/internal/mcptools"
	"calc-server/internal/observability"
)

// Opener builds the application the commands run against.
type Opener func(ctx context.Context) (*app.App, error)

// OpenFromEnv loads .env and the CALC_* variables and opens the configured
// store.
func OpenFromEnv(ctx context.Context) (*app.App, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	return app.Open(ctx, cfg)
}

var (
	resultColor = color.New(color.FgGreen, color.Bold)
	idColor     = color.New(color.Faint)
	noteColor   = color.New(color.FgCyan)
)

// NewRootCommand creates the calc command tree.
func NewRootCommand(version string, open Opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "calc",
		Short:         "Four-function calculator with saved history",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				return observability.InitLogger(true)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Log to stderr")

	rootCmd.AddCommand(newEvalCmd(open))
	rootCmd.AddCommand(newHistoryCmd(open))
	rootCmd.AddCommand(newThemeCmd(open))
	rootCmd.AddCommand(newMCPCmd(version, open))

	return rootCmd
}

// withApp opens the application for the duration of fn.
func withApp(cmd *cobra.Command, open Opener, fn func(a *app.App) error) (err error) {
	a, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()

	return fn(a)
}

func newEvalCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval EXPRESSION",
		Short: "Evaluate an expression",
		Long: `Evaluate an arithmetic expression with + - * and /. Multiplication and
division bind tighter than addition and subtraction.
Example: calc eval "2+3*4"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expression := strings.Join(args, " ")
			record, _ := cmd.Flags().GetBool("record")

			value, err := expr.Evaluate(expression)
			if err != nil {
				return errors.New(calculator.UserMessage(err))
			}
			result := calculator.FormatResult(value)

			if !record {
				resultColor.Fprintln(cmd.OutOrStdout(), result)
				return nil
			}

			return withApp(cmd, open, func(a *app.App) error {
				entry, err := calculator.Record(cmd.Context(), a.History, expression, value)
				if err != nil {
					return fmt.Errorf("saving history: %w", err)
				}
				resultColor.Fprintln(cmd.OutOrStdout(), result)
				idColor.Fprintf(cmd.OutOrStdout(), "saved #%d\n", entry.ID)
				return nil
			})
		},
	}

	cmd.Flags().Bool("record", false, "Add the calculation to the saved history")

	return cmd
}

func newHistoryCmd(open Opener) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved calculations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")
			return withApp(cmd, open, func(a *app.App) error {
				printPage(cmd.OutOrStdout(), a.History.PageAt(page))
				return nil
			})
		},
	}

	historyCmd.Flags().Int("page", 1, "Page to show")

	historyCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every saved calculation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				if err := a.History.Clear(cmd.Context()); err != nil {
					return err
				}
				noteColor.Fprintln(cmd.OutOrStdout(), "History cleared")
				return nil
			})
		},
	})

	historyCmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Remove one saved calculation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			return withApp(cmd, open, func(a *app.App) error {
				if err := a.History.Delete(cmd.Context(), id); err != nil {
					return err
				}
				noteColor.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
				return nil
			})
		},
	})

	return historyCmd
}

func printPage(w io.Writer, p history.Page) {
	if p.Total == 0 {
		noteColor.Fprintln(w, "No history yet")
		return
	}

	for _, e := range p.Entries {
		idColor.Fprintf(w, "#%d ", e.ID)
		fmt.Fprintf(w, "%s = ", e.Expression)
		resultColor.Fprintln(w, e.Result)
	}
	noteColor.Fprintf(w, "page %d of %d\n", p.Number, p.TotalPages)
}

func newThemeCmd(open Opener) *cobra.Command {
	themeCmd := &cobra.Command{
		Use:   "theme",
		Short: "Show the saved theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				fmt.Fprintln(cmd.OutOrStdout(), a.Theme.Current())
				return nil
			})
		},
	}

	themeCmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				next, err := a.Theme.Toggle(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), next)
				return nil
			})
		},
	})

	return themeCmd
}

func newMCPCmd(version string, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the calculator as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				return mcptools.ServeStdio(mcptools.NewServer(version, a.History))
			})
		},
	}
}
