package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/fmuoria/veriskill/internal/analysis"
	"github.com/fmuoria/veriskill/internal/config"
	"github.com/fmuoria/veriskill/internal/document"
	"github.com/fmuoria/veriskill/internal/googleauth"
	"github.com/fmuoria/veriskill/internal/gui"
	"github.com/fmuoria/veriskill/internal/identity"
	"github.com/fmuoria/veriskill/internal/ingestion"
	"github.com/fmuoria/veriskill/internal/llm"
	"github.com/fmuoria/veriskill/internal/logging"
	"github.com/fmuoria/veriskill/internal/session"
	"github.com/fmuoria/veriskill/internal/terminal"
	"github.com/fmuoria/veriskill/internal/web"
	"golang.org/x/oauth2"
)

func main() {
	mode := flag.String("mode", "web", "front-end to run: web, desktop or terminal")
	configPath := flag.String("config", "", "path to config.json (default: user config directory)")
	flag.Parse()

	if *configPath == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to locate config: %v\n", err)
			os.Exit(1)
		}
		*configPath = p
	}

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(os.Stderr, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "path", *configPath, "err", err)
		os.Exit(1)
	}
	if cfg.GeminiAPIKey == "" && strings.EqualFold(cfg.Backend, llm.BackendGemini) {
		log.Warn("no Gemini API key configured; every analysis will fail until one is set")
	}

	generator, err := llm.New(cfg)
	if err != nil {
		log.Error("failed to create model client", "err", err)
		os.Exit(1)
	}
	analyzer := analysis.NewClient(generator, log)
	encoder := document.Encoder{MaxBytes: cfg.MaxDocumentBytes()}

	// desktop mode needs the fyne app early so the consent page opens through it
	var fyneApp fyne.App
	openURL := func(string) error { return fmt.Errorf("no browser available") }
	if *mode == "desktop" {
		fyneApp = app.NewWithID("com.fmuoria.veriskill")
		openURL = func(raw string) error {
			u, err := url.Parse(raw)
			if err != nil {
				return err
			}
			return fyneApp.OpenURL(u)
		}
	}

	var oauthConfig *oauth2.Config
	if cfg.OAuthCredentialsPath != "" {
		oauthConfig, err = googleauth.ConfigFromFile(cfg.OAuthCredentialsPath, googleauth.Scopes...)
		if err != nil {
			log.Error("failed to load oauth credentials", "err", err)
			os.Exit(1)
		}
	}

	// newProvider returns a sign-in provider with its own token holder, so
	// callers that serve several users never share a Google token
	newProvider := func() (identity.Provider, *googleauth.Flow) {
		if oauthConfig == nil {
			return identity.Simulated{}, nil
		}
		flow := googleauth.NewFlow(oauthConfig, openURL, log)
		if strings.EqualFold(cfg.IdentityProvider, "google") {
			return identity.NewGoogle(flow, log), flow
		}
		return identity.Simulated{}, flow
	}
	provider, flow := newProvider()

	switch *mode {
	case "web":
		server := web.NewServer(func() identity.Provider {
			p, _ := newProvider()
			return p
		}, encoder, analyzer, cfg.MaxDocumentBytes(), log)

		log.Info("starting VeriSkill", "addr", cfg.ListenAddr, "backend", cfg.Backend, "identity", cfg.IdentityProvider)
		if err := http.ListenAndServe(cfg.ListenAddr, server.Router()); err != nil {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}

	case "desktop":
		var gmail gui.GmailOpener
		if flow != nil {
			gmail = func(ctx context.Context) (*ingestion.GmailSource, error) {
				client, err := flow.Client(ctx)
				if err != nil {
					return nil, err
				}
				return ingestion.NewGmailSource(ctx, client, log)
			}
		}

		gui.NewApp(gui.Options{
			App:        fyneApp,
			Controller: session.New(encoder, analyzer, log),
			Identity:   provider,
			Gmail:      gmail,
			Config:     cfg,
			ConfigPath: *configPath,
			Log:        log,
		}).Run()

	case "terminal":
		term := terminal.New(os.Stdin, os.Stdout, session.New(encoder, analyzer, log), provider, cfg.MaxDocumentBytes(), log)
		if err := term.Run(context.Background()); err != nil {
			log.Error("terminal session ended", "err", err)
			os.Exit(1)
		}

	default:
		log.Error("unknown mode", "mode", *mode)
		flag.Usage()
		os.Exit(2)
	}
}
