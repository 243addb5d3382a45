package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stealthcompany.com/wardconsole/internal/orchestrator"
	"stealthcompany.com/wardconsole/internal/view"
	"stealthcompany.com/wardconsole/internal/viewserver"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the views as JSON on a local port",
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetString("port")
			if port == "" {
				port = a.cfg.ViewPort
			}

			deps := a.deps
			deps.Notifier = view.LogNotifier{Logger: log.Logger}
			router := viewserver.New(deps, a.holder).Routes()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			signals := orchestrator.NewSignalHandler()
			defer signals.Stop()
			signals.HandleSignals(cancel)

			log.Info().
				Str("port", port).
				Str("api", a.cfg.APIBaseURL).
				Msg("Starting wardconsole view server")

			return orchestrator.NewServiceManager(":"+port, router).Run(ctx)
		},
	}
	cmd.Flags().String("port", "", "listen port (overrides VIEW_PORT)")
	return cmd
}
