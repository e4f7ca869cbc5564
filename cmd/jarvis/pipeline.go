package main

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/nadzzz/jarvis/internal/automation"
	"github.com/nadzzz/jarvis/internal/config"
	"github.com/nadzzz/jarvis/internal/confirm"
	"github.com/nadzzz/jarvis/internal/dispatch"
	"github.com/nadzzz/jarvis/internal/history"
	"github.com/nadzzz/jarvis/internal/intent"
	"github.com/nadzzz/jarvis/internal/interpreter"
	localinterp "github.com/nadzzz/jarvis/internal/interpreter/local"
	openaiinterp "github.com/nadzzz/jarvis/internal/interpreter/openai"
)

// pipeline is the wired command pipeline and the resources it owns.
type pipeline struct {
	dispatcher *dispatch.Dispatcher
	gate       *confirm.Gate
	history    *history.Store
	interp     interpreter.Interpreter
}

// buildPipeline wires the dispatcher from configuration. History is opened
// only when withHistory is set and enabled in cfg.
func buildPipeline(cfg *config.Config, withHistory bool) (*pipeline, error) {
	contacts, err := intent.LoadDirectory(cfg.Directories.ContactsFile, cfg.Directories.Contacts)
	if err != nil {
		return nil, err
	}
	appBase := intent.DefaultApps()
	for k, v := range cfg.Directories.Apps {
		appBase[k] = v
	}
	apps, err := intent.LoadDirectory(cfg.Directories.AppsFile, appBase)
	if err != nil {
		return nil, err
	}

	danger := intent.DefaultDangerSet()
	if len(cfg.Confirmation.DangerousCommands) > 0 {
		danger = intent.NewDangerSet(cfg.Confirmation.DangerousCommands...)
	}
	resolver := intent.NewResolver(contacts, apps, danger)
	for _, k := range danger.Keys() {
		if !slices.Contains(resolver.Keys(), k) {
			return nil, fmt.Errorf("confirmation.dangerous_commands: unknown command key %q", k)
		}
	}

	var host automation.Host
	switch cfg.Automation.Mode {
	case "http":
		host = automation.NewHTTPHost(cfg.Automation)
		slog.Info("using automation host", "url", cfg.Automation.URL)
	default:
		host = automation.NewSimulator()
		slog.Info("using simulated automation host")
	}

	router := dispatch.NewRouter(host, cfg.Automation.Breaker)
	if err := router.Validate(resolver.Keys()); err != nil {
		return nil, err
	}

	p := &pipeline{gate: confirm.NewGate(cfg.Confirmation.Timeout)}

	if cfg.Interpreter.Enabled {
		switch cfg.Interpreter.Backend {
		case "openai":
			p.interp = openaiinterp.New(cfg.Interpreter.OpenAI)
			slog.Info("using OpenAI conversational fallback", "model", cfg.Interpreter.OpenAI.CompletionModel)
		case "local":
			p.interp = localinterp.New(cfg.Interpreter.Local)
			slog.Info("using local conversational fallback", "llm", cfg.Interpreter.Local.LLMEndpoint)
		default:
			p.gate.Close()
			return nil, fmt.Errorf("unknown interpreter backend %q", cfg.Interpreter.Backend)
		}
	}

	opts := dispatch.Options{
		Resolver:        resolver,
		Router:          router,
		Gate:            p.gate,
		Interpreter:     p.interp,
		EnableDangerous: cfg.Confirmation.EnableDangerous,
	}
	if withHistory && cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.history = store
		opts.History = store
	}

	p.dispatcher = dispatch.New(opts)
	slog.Info("pipeline ready",
		"contacts", contacts.Len(),
		"apps", apps.Len(),
		"dangerous", danger.Keys(),
		"history", p.history != nil)
	return p, nil
}

// Close releases everything the pipeline opened.
func (p *pipeline) Close() error {
	p.gate.Close()
	var errs []error
	if p.interp != nil {
		errs = append(errs, p.interp.Close())
	}
	if p.history != nil {
		errs = append(errs, p.history.Close())
	}
	return errors.Join(errs...)
}
