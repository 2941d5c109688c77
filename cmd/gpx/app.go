package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/h0rv/gpx/internal/auth"
	"github.com/h0rv/gpx/internal/config"
	"github.com/h0rv/gpx/internal/emoji"
	"github.com/h0rv/gpx/internal/gh"
	"github.com/h0rv/gpx/internal/logging"
	"github.com/h0rv/gpx/internal/server"
	"github.com/h0rv/gpx/internal/session"
	"github.com/h0rv/gpx/internal/term"
	"github.com/h0rv/gpx/internal/view"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	client    *gh.Client
	classic   *gh.ClassicClient
	projector *view.Projector
}

// newApp loads configuration and wires the GitHub clients.
func newApp() (*app, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	if debugFlag {
		cfg.Debug = true
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	hc := newHTTPClient(cfg.GitHub)
	classic, err := gh.NewClassicClient(cfg.GitHub.APIURL, hc, logger.Named("classic"))
	if err != nil {
		return nil, err
	}
	fetcher, err := emoji.NewGitHubFetcher(cfg.GitHub.APIURL, hc)
	if err != nil {
		return nil, err
	}

	logger.Debug("configuration loaded",
		zap.String("graphql_url", cfg.GitHub.GraphQLURL),
		zap.String("token", logging.Mask(cfg.GitHub.Token)),
		zap.Duration("timeout", cfg.GitHub.Timeout),
		zap.Int("rate_limit", cfg.GitHub.RateLimit))

	return &app{
		cfg:    cfg,
		logger: logger,
		client: gh.New(
			gh.WithEndpoint(cfg.GitHub.GraphQLURL),
			gh.WithHTTPClient(hc),
			gh.WithLogger(logger.Named("graphql")),
		),
		classic:   classic,
		projector: view.New(emoji.NewCache(fetcher, logger.Named("emoji"))),
	}, nil
}

// newHTTPClient builds the client for every outbound GitHub call.
func newHTTPClient(cfg config.GitHubConfig) *http.Client {
	var rt http.RoundTripper = http.DefaultTransport
	if cfg.RateLimit > 0 {
		rt = gh.NewRateLimitTransport(rt, cfg.RateLimit)
	}
	return &http.Client{Transport: rt, Timeout: cfg.Timeout}
}

// cliIdentity returns the configured token as the caller's identity.
func (a *app) cliIdentity() (auth.Identity, error) {
	if err := a.cfg.ValidateCLI(); err != nil {
		return auth.Identity{}, err
	}
	return auth.Resolve(nil, a.cfg.GitHub.Token)
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.cfg.ValidateServer(); err != nil {
		return err
	}
	addr := a.cfg.Server.Addr
	if addrFlag != "" {
		addr = addrFlag
	}

	oauth := auth.NewOAuth(a.cfg.GitHub.ClientID, a.cfg.GitHub.ClientSecret,
		auth.WithHTTPClient(newHTTPClient(a.cfg.GitHub)))

	srv, err := server.New(server.Config{
		AppURL:        a.cfg.Server.AppURL,
		CookieName:    a.cfg.Session.CookieName,
		SecureCookie:  a.cfg.Session.SecureCookie,
		TokenOverride: a.cfg.GitHub.Token,
	}, server.Deps{
		Sessions:  session.New(a.cfg.Session.SecretKey, session.WithIdleTimeout(a.cfg.Session.IdleTimeout)),
		OAuth:     oauth,
		Projects:  a.client,
		Columns:   a.classic,
		Projector: a.projector,
		Logger:    a.logger.Named("http"),
	})
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	url := "http://" + ln.Addr().String() + "/"
	a.logger.Info("serving", zap.String("url", url))
	if a.cfg.GitHub.Token != "" {
		a.logger.Warn("GITHUB_TOKEN is set: every request uses it instead of the session identity")
	}
	if openFlag {
		if err := browser.OpenURL(url); err != nil {
			a.logger.Warn("failed to open browser", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Serve(ctx, ln)
}

func runProjects(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	id, err := a.cliIdentity()
	if err != nil {
		return err
	}

	data, err := a.client.ListProjects(cmd.Context(), id)
	if err != nil {
		return err
	}
	projects := a.projector.ProjectList(data.Projects)
	if len(projects) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No projects found")
		return nil
	}
	return term.NewRenderer(cmd.OutOrStdout(), widthFlag).Projects(data.Viewer.Login, projects, data.Projects.TotalCount)
}

func runItems(cmd *cobra.Command, args []string) error {
	number, err := strconv.Atoi(args[0])
	if err != nil || number <= 0 {
		return fmt.Errorf("invalid project number %q", args[0])
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	id, err := a.cliIdentity()
	if err != nil {
		return err
	}

	details, err := a.client.GetProjectDetails(cmd.Context(), id, number)
	if err != nil {
		return err
	}
	return term.NewRenderer(cmd.OutOrStdout(), widthFlag).ProjectDetails(a.projector.ItemEditor(cmd.Context(), *details))
}

func runColumns(cmd *cobra.Command, args []string) error {
	projectID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || projectID <= 0 {
		return fmt.Errorf("invalid project id %q", args[0])
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	id, err := a.cliIdentity()
	if err != nil {
		return err
	}

	columns, err := a.classic.ListColumns(cmd.Context(), id, projectID)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return errors.New("project has no readable columns")
	}
	return term.NewRenderer(cmd.OutOrStdout(), widthFlag).Columns(a.projector.Columns(cmd.Context(), columns))
}
