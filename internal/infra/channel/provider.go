package channel

import (
	"log/slog"
	"net/http"
	"time"

	"attribution/config"
	"attribution/internal/domain/constants"
	"attribution/internal/domain/entity"
	"attribution/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultRelayTimeout = 10 * time.Second

// SenderParams holds dependencies for the channel senders, injected by Fx
type SenderParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// Senders exposes one sender per channel to Fx.
type Senders struct {
	fx.Out

	Email    service.EmailSender
	SMS      service.SMSSender
	WhatsApp service.WhatsAppSender
}

// NewSenders builds the channel senders selected by channels.driver.
func NewSenders(params SenderParams) (Senders, error) {
	cfg := params.Config.Channels
	if cfg == nil || cfg.Driver == "" || cfg.Driver == constants.ChannelDriverLog {
		params.Logger.Info("Channels not configured, using log senders")
		sender := NewLogSender(params.Logger)

		return Senders{Email: sender, SMS: sender, WhatsApp: sender}, nil
	}

	if cfg.Driver != constants.ChannelDriverHTTP {
		return Senders{}, errors.Errorf("unknown channel driver: %s", cfg.Driver)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRelayTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	return Senders{
		Email:    relayFor(entity.ChannelEmail, cfg.Email, httpClient, params.Logger),
		SMS:      relayFor(entity.ChannelSMS, cfg.SMS, httpClient, params.Logger),
		WhatsApp: relayFor(entity.ChannelWhatsApp, cfg.WhatsApp, httpClient, params.Logger),
	}, nil
}

// relayFor returns a value implementing every sender interface for channel.
func relayFor(channel entity.Channel, cfg config.RelayConfig, httpClient *http.Client, logger *slog.Logger) interface {
	service.EmailSender
	service.SMSSender
	service.WhatsAppSender
} {
	if cfg.Endpoint == "" {
		logger.Warn("Relay endpoint missing, channel disabled", slog.String("channel", string(channel)))

		return disabledSender{channel: channel}
	}

	return newHTTPRelay(channel, cfg, httpClient)
}

// Module provides the channel senders FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewSenders),
)
