package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbolis/poll-creator/app"
	"github.com/mbolis/poll-creator/config"
	"github.com/mbolis/poll-creator/database"
	"github.com/mbolis/poll-creator/log"
	"github.com/mbolis/poll-creator/routes"
	"github.com/mbolis/poll-creator/survey"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error("main:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfg config.Config

	root := &cobra.Command{
		Use:           "poll-creator",
		Short:         "Validate survey definitions and create them as LeanIX polls",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err = config.Load(v)
			if err != nil {
				return err
			}
			if cfg.Debug {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}
	if err := config.BindFlags(root.PersistentFlags(), v); err != nil {
		log.Fatal("main.config:", err)
	}

	root.AddCommand(
		newServeCmd(&cfg),
		newValidateCmd(&cfg),
		newUserCmd(&cfg),
	)
	return root
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireServer(); err != nil {
				return err
			}

			app, err := app.Open(*cfg)
			if err != nil {
				log.Error("main.app.open:", err)
				return err
			}
			defer app.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runServer(ctx, *cfg, routes.Wire(app))
		},
	}
}

func runServer(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.APITimeout + 30*time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("Listening on " + cfg.Url())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		log.Error("main.server:", err)
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("main.server.shutdown:", err)
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("Server stopped")
	return nil
}

func newValidateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Validate a survey definition and print the report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			raw, err := io.ReadAll(in)
			if err != nil {
				return err
			}

			report, err := survey.Validate(raw,
				survey.WithMaxNestingDepth(cfg.MaxNestingDepth),
				survey.WithMaxChainDepth(cfg.MaxChainDepth),
			)
			return printReport(cmd.OutOrStdout(), report, err)
		},
	}
}

func printReport(w io.Writer, report *survey.Report, err error) error {
	out := struct {
		Valid    bool             `json:"valid"`
		Details  *survey.Details  `json:"details,omitempty"`
		Errors   []*survey.Issue  `json:"errors,omitempty"`
		Warnings []survey.Warning `json:"warnings,omitempty"`
	}{
		Valid:    err == nil,
		Details:  report.Details,
		Errors:   survey.Issues(err),
		Warnings: report.Warnings,
	}

	data, jerr := json.MarshalIndent(out, "", "  ")
	if jerr != nil {
		return jerr
	}
	fmt.Fprintln(w, string(data))
	if err != nil {
		return fmt.Errorf("invalid survey: %d error(s)", len(out.Errors))
	}
	return nil
}

func newUserCmd(cfg *config.Config) *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage operator accounts",
	}

	var password string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an operator account; the password is read from stdin unless --password is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				password = strings.TrimRight(line, "\r\n")
			}

			db, err := database.Open(*cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.AddUser(cmd.Context(), db, args[0], password); err != nil {
				return err
			}
			log.Infof("User %q created", args[0])
			return nil
		},
	}
	add.Flags().StringVar(&password, "password", "", "password of the new user")

	user.AddCommand(add)
	return user
}
