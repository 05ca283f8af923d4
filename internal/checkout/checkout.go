// Package checkout hands a cart off to the seller over WhatsApp. The handoff
// is one-way: nothing waits for a reply.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/arglo/storefront/internal/domain"
	"github.com/arglo/storefront/internal/metrics"
	apperrors "github.com/arglo/storefront/pkg/errors"
)

// Handoff channels.
const (
	ChannelWhatsApp  = "whatsapp"
	ChannelClipboard = "clipboard"
)

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}

// SystemClipboard returns the clipboard of the host, as exposed by
// atotto/clipboard.
func SystemClipboard() Clipboard {
	return systemClipboard{}
}

// Config identifies the seller's WhatsApp contact.
type Config struct {
	BaseURL string
	Phone   string
}

// Handoff is the outcome of a checkout. Message is always set so a view can
// show it in a selectable field when Copied is false.
type Handoff struct {
	Channel string  `json:"channel"`
	URL     string  `json:"url"`
	Message string  `json:"message"`
	Copied  bool    `json:"copied"`
	Items   int     `json:"items"`
	Total   float64 `json:"total"`
}

// Service builds checkout handoffs.
type Service struct {
	cfg       Config
	clipboard Clipboard
	logger    *slog.Logger
}

// NewService creates a checkout service.
func NewService(cfg Config, clip Clipboard, logger *slog.Logger) *Service {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Service{cfg: cfg, clipboard: clip, logger: logger}
}

// ContactURL is the seller's bare chat URL.
func (s *Service) ContactURL() string {
	return s.cfg.BaseURL + "/" + s.cfg.Phone
}

// WhatsApp returns a chat URL with the quote request prefilled.
func (s *Service) WhatsApp(ctx context.Context, cart domain.Cart) (Handoff, error) {
	if len(cart) == 0 {
		return Handoff{}, apperrors.InvalidInput("cart is empty")
	}

	msg := Message(cart)
	h := Handoff{
		Channel: ChannelWhatsApp,
		URL:     fmt.Sprintf("%s?text=%s", s.ContactURL(), encodeText(msg)),
		Message: msg,
		Items:   cart.ItemCount(),
		Total:   cart.Total(),
	}

	metrics.CheckoutHandoffs.WithLabelValues(ChannelWhatsApp).Inc()
	s.logger.InfoContext(ctx, "checkout handed off",
		slog.String("channel", ChannelWhatsApp),
		slog.Int("items", h.Items),
		slog.Float64("total", h.Total),
	)
	return h, nil
}

// Clipboard copies the quote request to the clipboard and returns the bare
// chat URL. When the copy fails the handoff still succeeds with Copied unset.
func (s *Service) Clipboard(ctx context.Context, cart domain.Cart) (Handoff, error) {
	if len(cart) == 0 {
		return Handoff{}, apperrors.InvalidInput("cart is empty")
	}

	msg := Message(cart)
	h := Handoff{
		Channel: ChannelClipboard,
		URL:     s.ContactURL(),
		Message: msg,
		Copied:  true,
		Items:   cart.ItemCount(),
		Total:   cart.Total(),
	}

	if err := s.clipboard.WriteAll(msg); err != nil {
		h.Copied = false
		s.logger.WarnContext(ctx, "clipboard write failed, returning message for manual copy",
			slog.Any("error", err),
		)
	}

	metrics.CheckoutHandoffs.WithLabelValues(ChannelClipboard).Inc()
	s.logger.InfoContext(ctx, "checkout handed off",
		slog.String("channel", ChannelClipboard),
		slog.Bool("copied", h.Copied),
		slog.Int("items", h.Items),
	)
	return h, nil
}

// encodeText escapes s for a query value the way browsers encode URI
// components: spaces become %20 rather than '+'.
func encodeText(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
