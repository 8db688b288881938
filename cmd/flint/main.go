// Package main contains the cli implementation of the tool. It uses
// cobra package for cli tool implementation.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"flint"
	"flint/internal/config"
	"flint/internal/output"
)

type execFlags struct {
	format string
}

type replFlags struct {
	format string
}

// configPath is bound to the root command's --config persistent flag.
var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "flint",
		Short: "Embeddable in-memory SQL engine",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "flint.toml", "Path to an engine config file; defaults apply when absent")

	rootCmd.AddCommand(execCmd())
	rootCmd.AddCommand(replCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newEngine loads the session config from configPath and builds an
// Engine that runs under it.
func newEngine() (*flint.Engine, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	return flint.NewWithConfig(cfg), nil
}

func execCmd() *cobra.Command {
	flags := &execFlags{}
	cmd := &cobra.Command{
		Use:   "exec <statement-or-file.sql>",
		Short: "Execute one statement or a .sql file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runExec(args[0], flags)
		},
	}
	cmd.Flags().StringVarP(&flags.format, "format", "f", "table", "Output format: table, json, or summary")
	return cmd
}

func runExec(arg string, flags *execFlags) error {
	formatter, err := output.NewFormatter(flags.format)
	if err != nil {
		return err
	}

	statements, err := loadStatements(arg)
	if err != nil {
		return err
	}

	e, err := newEngine()
	if err != nil {
		return err
	}
	ctx := context.Background()
	for _, stmt := range statements {
		result := e.Execute(ctx, stmt)
		rendered, err := formatter.Format(result)
		if err != nil {
			return fmt.Errorf("statement %q: %w", stmt, err)
		}
		fmt.Print(rendered)
	}
	return nil
}

// loadStatements treats arg as a path to a .sql file when it has that
// suffix, and returns an error when that file cannot be read; otherwise
// arg itself is the one statement to run.
func loadStatements(arg string) ([]string, error) {
	if !strings.HasSuffix(arg, ".sql") {
		return []string{arg}, nil
	}
	content, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement file: %w", err)
	}
	return splitStatements(string(content)), nil
}

func splitStatements(content string) []string {
	raw := strings.Split(content, ";")
	statements := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			statements = append(statements, s)
		}
	}
	return statements
}

func replCmd() *cobra.Command {
	flags := &replFlags{}
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Read statements from stdin, one engine for the whole session",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runRepl(os.Stdin, os.Stdout, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.format, "format", "f", "table", "Output format: table, json, or summary")
	return cmd
}

func runRepl(in io.Reader, out io.Writer, flags *replFlags) error {
	formatter, err := output.NewFormatter(flags.format)
	if err != nil {
		return err
	}

	e, err := newEngine()
	if err != nil {
		return err
	}
	ctx := context.Background()
	scanner := bufio.NewScanner(in)

	var pending strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		pending.WriteString(line)
		pending.WriteString(" ")

		if !strings.HasSuffix(strings.TrimSpace(line), ";") {
			continue
		}

		stmt := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(pending.String()), ";"))
		pending.Reset()
		if stmt == "" {
			continue
		}

		result := e.Execute(ctx, stmt)
		rendered, err := formatter.Format(result)
		if err != nil {
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		_, _ = fmt.Fprint(out, rendered)
	}
	return scanner.Err()
}
