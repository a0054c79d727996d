package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/uxwatch/uxwatch/internal/domain/model"
	"github.com/uxwatch/uxwatch/internal/domain/port/inbound"
	"github.com/uxwatch/uxwatch/internal/domain/port/outbound"
)

// uiKeywords is the fixed relevance filter, English and Persian terms as in
// the deployed bot.
var uiKeywords = []string{"UI", "UX", "interface", "figma", "فرانت", "طراحی رابط"}

var usernameRe = regexp.MustCompile(`@[A-Za-z0-9_]+`)

// fallbackApology replaces the drafted reply when the generative
// collaborator fails.
const fallbackApology = "متاسفانه در حال حاضر امکان تولید پیام خودکار وجود ندارد. لطفا بعدا تلاش کنید."

// ContainsUIKeywords reports whether text matches the fixed keyword set,
// case-insensitively.
func ContainsUIKeywords(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range uiKeywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// ExtractUsername returns the first @handle-shaped token in text.
func ExtractUsername(text string) (string, bool) {
	m := usernameRe.FindString(text)
	return m, m != ""
}

// PipelineConfig holds the fixed delivery material.
type PipelineConfig struct {
	PortfolioURL   string
	AttachmentPath string
}

// Pipeline filters a channel post for relevance, extracts the target handle,
// drafts a reply and delivers text plus attachment. The target always
// receives some reply once matched, even in degraded mode.
type Pipeline struct {
	messenger  outbound.Messenger
	generator  outbound.ReplyGenerator
	deliveries outbound.DeliveryRepository
	cfg        PipelineConfig
	logger     *slog.Logger
}

var _ inbound.PostReceiverPort = (*Pipeline)(nil)

// NewPipeline creates a Pipeline. deliveries may be nil to skip recording.
func NewPipeline(messenger outbound.Messenger, generator outbound.ReplyGenerator, deliveries outbound.DeliveryRepository, cfg PipelineConfig, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		messenger:  messenger,
		generator:  generator,
		deliveries: deliveries,
		cfg:        cfg,
		logger:     logger,
	}
}

// HandlePost runs filter, extract, draft and deliver for one post. A post
// with no keyword match or no handle is discarded silently. A rate-limit
// signal from a send is propagated so the dispatcher can pause.
func (p *Pipeline) HandlePost(ctx context.Context, post model.IncomingPost) error {
	if !ContainsUIKeywords(post.Text) {
		return nil
	}
	handle, ok := ExtractUsername(post.Text)
	if !ok {
		return nil
	}

	reply := model.OutboundReply{
		TargetHandle:   handle,
		DraftedText:    p.draft(ctx, post.Text),
		AttachmentPath: p.cfg.AttachmentPath,
	}
	return p.deliver(ctx, post, reply)
}

// draft asks the generative collaborator for a reply; any failure degrades
// to the fixed apology string instead of failing the pipeline.
func (p *Pipeline) draft(ctx context.Context, postText string) string {
	text, err := p.generator.Generate(ctx, postText)
	if err != nil {
		p.logger.Error("generative draft failed, using fallback", "error", err)
		return fallbackApology
	}
	return text
}

func (p *Pipeline) deliver(ctx context.Context, post model.IncomingPost, reply model.OutboundReply) error {
	record := model.NewDelivery(reply.TargetHandle, post.ChannelID, reply.DraftedText)

	if err := p.messenger.SendText(ctx, reply.TargetHandle, reply.DraftedText); err != nil {
		var rateLimit *outbound.RateLimitError
		if errors.As(err, &rateLimit) {
			return err
		}
		p.logger.Error("sending reply text", "handle", reply.TargetHandle, "error", err)
		p.record(ctx, record.WithOutcome(model.DeliveryFailed, false))
		return nil
	}

	outcome, attachmentSent, err := p.sendAttachment(ctx, reply)
	if err != nil {
		var rateLimit *outbound.RateLimitError
		if errors.As(err, &rateLimit) {
			return err
		}
		p.logger.Error("sending attachment fallback", "handle", reply.TargetHandle, "error", err)
		outcome = model.DeliveryFailed
	}

	p.record(ctx, record.WithOutcome(outcome, attachmentSent))
	p.logger.Info("reply delivered", "handle", reply.TargetHandle, "outcome", string(outcome))
	return nil
}

// sendAttachment sends the fixed local attachment with the portfolio
// caption. A missing file or a failed file send degrades to a text-only
// message carrying the portfolio link.
func (p *Pipeline) sendAttachment(ctx context.Context, reply model.OutboundReply) (model.DeliveryOutcome, bool, error) {
	caption := fmt.Sprintf("فایل رزومه اینجانب.\nنمونه‌کار: %s", p.cfg.PortfolioURL)

	if _, err := os.Stat(reply.AttachmentPath); err != nil {
		p.logger.Warn("attachment file not found", "path", reply.AttachmentPath)
		fallback := fmt.Sprintf("(فایل رزومه یافت نشد. لینک نمونه کار: %s)", p.cfg.PortfolioURL)
		if err := p.messenger.SendText(ctx, reply.TargetHandle, fallback); err != nil {
			return model.DeliveryFailed, false, err
		}
		return model.DeliveryTextFallback, false, nil
	}

	if err := p.messenger.SendFile(ctx, reply.TargetHandle, reply.AttachmentPath, caption); err != nil {
		var rateLimit *outbound.RateLimitError
		if errors.As(err, &rateLimit) {
			return model.DeliveryFailed, false, err
		}
		p.logger.Error("sending attachment", "handle", reply.TargetHandle, "error", err)
		fallback := fmt.Sprintf("(خطا در ارسال فایل رزومه. لینک نمونه کار: %s)", p.cfg.PortfolioURL)
		if err := p.messenger.SendText(ctx, reply.TargetHandle, fallback); err != nil {
			return model.DeliveryFailed, false, err
		}
		return model.DeliveryTextFallback, false, nil
	}
	return model.DeliveryFull, true, nil
}

func (p *Pipeline) record(ctx context.Context, d model.Delivery) {
	if p.deliveries == nil {
		return
	}
	if _, err := p.deliveries.Create(ctx, d); err != nil {
		p.logger.Error("recording delivery", "error", err)
	}
}
