package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/crimson-sun/authwatch/internal/config"
	"github.com/crimson-sun/authwatch/internal/connector"
	"github.com/crimson-sun/authwatch/internal/dispatch"
	"github.com/crimson-sun/authwatch/internal/engine"
	"github.com/crimson-sun/authwatch/internal/engine/classifier"
	"github.com/crimson-sun/authwatch/internal/output"
	"github.com/crimson-sun/authwatch/internal/output/async"
	"github.com/crimson-sun/authwatch/internal/output/email"
	"github.com/crimson-sun/authwatch/internal/output/file"
	"github.com/crimson-sun/authwatch/internal/output/httpclient"
	"github.com/crimson-sun/authwatch/internal/output/stdout"
	"github.com/crimson-sun/authwatch/internal/output/telegram"
	"github.com/crimson-sun/authwatch/internal/output/webhook"
	"github.com/crimson-sun/authwatch/internal/pipeline"

	// Register connector implementations.
	_ "github.com/crimson-sun/authwatch/internal/connector/journal"
	_ "github.com/crimson-sun/authwatch/internal/connector/reader"
)

// monitor is a fully wired pipeline plus the connector settings to run it with.
type monitor struct {
	pipeline *pipeline.Pipeline
	connCfg  connector.ConnectorConfig
}

// notifiers builds every notification channel from cfg. Channels with
// incomplete settings are returned disabled.
func notifiers(cfg config.Config) []output.Notifier {
	hc := httpclient.New()
	return []output.Notifier{
		email.New(email.Config{
			Addr:     cfg.Email.Addr,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			To:       cfg.Email.To,
		}),
		telegram.New(cfg.Telegram.Token, cfg.Telegram.ChatID, telegram.WithClient(hc)),
		webhook.New(cfg.Webhook.URL, webhook.WithClient(hc)),
	}
}

// assemble wires connector, engine, dispatcher and outputs from cfg.
// Console output goes to console.
func assemble(cfg config.Config, console io.Writer) (*monitor, error) {
	ctor, err := connector.Get(cfg.Connector.Provider)
	if err != nil {
		return nil, fmt.Errorf("cli: %w", err)
	}

	channels := notifiers(cfg)
	for _, n := range channels {
		slog.Info("notification channel", "channel", n.Name(), "enabled", n.Enabled())
	}

	queueOpts := []async.Option{
		async.WithWorkers(cfg.Delivery.Workers),
		async.WithBufferSize(cfg.Delivery.QueueSize),
	}
	if cfg.Delivery.BlockOnFull {
		queueOpts = append(queueOpts, async.WithBlockOnFull())
	}
	fanout := dispatch.Fanout(channels, queueOpts...)

	d := dispatch.New(
		dispatch.WithConsole(stdout.NewWriter(console, cfg.Console.JSON)),
		dispatch.WithAudit(file.New(cfg.Audit.Path, file.WithMaxSize(cfg.Audit.MaxSize))),
		dispatch.WithNotifier(fanout),
	)

	cls := classifier.New(cfg.Whitelist)
	slog.Debug("classifier ready", "rules", cls.Rules(), "whitelist_size", cls.Whitelist().Len())
	eng := engine.New(cls)

	return &monitor{
		pipeline: pipeline.New(ctor(), eng, d),
		connCfg: connector.ConnectorConfig{
			Provider: cfg.Connector.Provider,
			Unit:     cfg.Connector.Unit,
		},
	}, nil
}
