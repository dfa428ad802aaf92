package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/njchilds90/gonewton"
	"github.com/njchilds90/gonewton/server"
	"github.com/spf13/cobra"
)

// Exit codes reported by solve.
const (
	exitInputError    = 2
	exitMethodFailure = 3
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "gonewton",
		Short:         "Newton-Raphson root finding with symbolic derivatives",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(
		newServeCmd(),
		newSolveCmd(),
		newDiffCmd(),
		newVersionCmd(),
	)
	return root
}

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		staticDir  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and serve the front-end build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("static-dir") {
				cfg.StaticDir = staticDir
			}

			logger := server.NewLogger(cmd.ErrOrStderr(), cfg)
			srv, err := server.New(cfg, logger, version)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().IntVarP(&port, "port", "p", 5000, "Port to listen on (overrides config)")
	cmd.Flags().StringVar(&staticDir, "static-dir", "", "Directory holding the front-end build (overrides config)")
	return cmd
}

func newSolveCmd() *cobra.Command {
	var (
		x0, epsilon string
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "solve <function>",
		Short: "Find a root of f(x) starting from x0",
		Example: `  gonewton solve "x^2 - 2" --x0 1
  gonewton solve "e^x - 3x" --x0 0 --epsilon 1e-8 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := gonewton.Request{Function: args[0], X0: gonewton.Text(x0)}
			if epsilon != "" {
				req.Epsilon = gonewton.Text(epsilon)
			}
			resp, err := gonewton.Calculate(req)
			out := cmd.OutOrStdout()

			var failure *gonewton.Failure
			switch {
			case err == nil:
				if asJSON {
					return writeJSON(out, resp)
				}
				newPrinter(out).result(args[0], resp)
				return nil
			case gonewton.IsInputError(err):
				return &exitError{code: exitInputError, err: err}
			case errors.As(err, &failure):
				if asJSON {
					if jerr := writeJSON(out, map[string]string{
						"error":  failure.Reason,
						"status": failure.Status().String(),
					}); jerr != nil {
						return jerr
					}
				} else {
					newPrinter(out).failure(failure)
				}
				return &exitError{code: exitMethodFailure, err: err}
			default:
				return err
			}
		},
	}
	cmd.Flags().StringVar(&x0, "x0", "", "Initial guess (required)")
	cmd.Flags().StringVarP(&epsilon, "epsilon", "e", "", "Tolerance on |f(x)| (default 0.001)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full response as JSON")
	_ = cmd.MarkFlagRequired("x0")
	return cmd
}

func newDiffCmd() *cobra.Command {
	var latex bool
	cmd := &cobra.Command{
		Use:   "diff <function>",
		Short: "Print f(x) and its derivative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := gonewton.Compile(args[0])
			if err != nil {
				return &exitError{code: exitInputError, err: err}
			}
			p := newPrinter(cmd.OutOrStdout())
			if latex {
				p.println("f(x)  = " + fn.LaTeX)
				p.println("f'(x) = " + fn.DerivativeLaTeX)
				return nil
			}
			p.println("f(x)  = " + gonewton.String(fn.Expr))
			p.println("f'(x) = " + p.style(styles.Title, gonewton.String(fn.Derivative)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&latex, "latex", false, "Print LaTeX instead of plain text")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "gonewton", version)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
