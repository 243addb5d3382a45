package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stealthcompany.com/wardconsole/internal/apiclient"
	"stealthcompany.com/wardconsole/internal/config"
	"stealthcompany.com/wardconsole/internal/couchbase"
	"stealthcompany.com/wardconsole/internal/metrics"
	"stealthcompany.com/wardconsole/internal/pages"
	"stealthcompany.com/wardconsole/internal/resources"
	"stealthcompany.com/wardconsole/internal/session"
	"stealthcompany.com/wardconsole/internal/view"
	"stealthcompany.com/wardconsole/pkg/zerolog_config"
)

// app carries everything a command needs once the persistent flags are parsed.
type app struct {
	cfg     *config.Config
	holder  *session.StoreHolder
	service *resources.Service
	deps    pages.Deps
	json    bool
	out     io.Writer
	closers []func() error
}

func main() {
	a := &app{out: os.Stdout}

	rootCmd := &cobra.Command{
		Use:           "wardconsole",
		Short:         "Nurse and pharmacist ward console",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			a.close()
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to a KEY=VALUE config file")
	flags.String("api", "", "hospital API base URL (overrides API_BASE_URL)")
	flags.String("profile", "", "session profile name (overrides SESSION_PROFILE)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.Bool("json", false, "print view models as JSON")

	rootCmd.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.patientsCmd(),
		a.workflowCmd(),
		a.bedsCmd(),
		a.medsCmd(),
		a.pharmacyCmd(),
		a.admissionsCmd(),
		a.dischargeCmd(),
		a.chartCmd(),
		a.serveCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		a.close()
		fmt.Fprintln(os.Stderr, "Error:", apiclient.Message(err))
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("api"); v != "" {
		cfg.APIBaseURL = v
	}
	if v, _ := cmd.Flags().GetString("profile"); v != "" {
		cfg.SessionProfile = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	a.json, _ = cmd.Flags().GetBool("json")

	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	zerolog_config.SetAppName("wardconsole")
	if err := zerolog_config.Startup(zerolog_config.Options{
		ElasticsearchURL: cfg.ElasticsearchURL,
		Index:            cfg.LogIndex,
		Level:            cfg.LogLevel,
		Out:              os.Stderr,
	}); err != nil {
		return err
	}
	metrics.Configure(cfg.EnableBusinessMetrics, cfg.EnableSystemMetrics)

	store, err := a.openStore()
	if err != nil {
		return err
	}
	a.holder = session.NewHolder(store)

	client := apiclient.NewClient(cfg.APIBaseURL, a.holder)
	a.service = resources.NewService(client)
	a.deps = pages.Deps{
		Service:         a.service,
		Notifier:        cliNotifier(os.Stderr),
		ReasonMinLength: cfg.ReasonMinLength,
	}

	log.Debug().
		Str("api", cfg.APIBaseURL).
		Str("sessionStore", cfg.SessionStore).
		Str("profile", cfg.SessionProfile).
		Msg("Console configured")
	return nil
}

func (a *app) openStore() (session.Store, error) {
	switch a.cfg.SessionStore {
	case config.StoreMemory:
		return session.NewMemoryStore(), nil
	case config.StoreCouchbase:
		cb, err := couchbase.NewClient(a.cfg.CouchbaseURL, a.cfg.CouchbaseUsername, a.cfg.CouchbasePassword, a.cfg.CouchbaseBucket)
		if err != nil {
			return nil, fmt.Errorf("failed to open couchbase session store: %w", err)
		}
		a.closers = append(a.closers, cb.Close)
		return session.NewCouchbaseStore(cb, a.cfg.SessionProfile), nil
	default:
		return session.NewFileStore(a.cfg.SessionFile, a.cfg.SessionProfile), nil
	}
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Warn().Err(err).Msg("Failed to close resource")
		}
	}
	a.closers = nil
}

func cliNotifier(w io.Writer) view.Notifier {
	return view.NotifierFunc{
		OnSuccess: func(msg string) { fmt.Fprintln(w, "ok:", msg) },
		OnFailure: func(msg string) { fmt.Fprintln(w, "failed:", msg) },
	}
}
