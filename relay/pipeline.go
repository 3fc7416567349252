package relay

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mkrell/vidify/directive"
	"github.com/mkrell/vidify/telemetry"
)

// Transport delivers artifacts and status text back to the originating chat.
// The bot package implements it; tests substitute fakes.
type Transport interface {
	SendVideo(ctx context.Context, req Request, path, caption string) error
	SendAnimation(ctx context.Context, req Request, path, caption string) error
	ReplyText(ctx context.Context, req Request, text string) error
}

// Request is one inbound message turned into a batch of acquisition jobs.
type Request struct {
	ChatID    int64
	MessageID int
	// Text is the message text the trim directive is parsed from.
	Text string
	// URLs are processed sequentially, in extraction order.
	URLs []string
	Kind Kind
}

// Pipeline runs acquisition batches: directive parsing, per-URL resolve,
// validation, delivery, cleanup. Concurrent batches are gated by a bounded
// semaphore; URLs within a batch run strictly in order.
type Pipeline struct {
	resolver  Resolver
	transport Transport
	video     AcquisitionConfig
	animation AcquisitionConfig
	maxBytes  int64
	active    *ActiveSet
	slots     chan struct{}
}

func NewPipeline(resolver Resolver, transport Transport, video, animation AcquisitionConfig, maxConcurrent int, active *ActiveSet) *Pipeline {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Pipeline{
		resolver:  resolver,
		transport: transport,
		video:     video,
		animation: animation,
		maxBytes:  video.MaxBytes,
		active:    active,
		slots:     make(chan struct{}, maxConcurrent),
	}
}

// Handle processes one request to completion. It blocks while waiting for a
// semaphore slot, so callers dispatch it on its own goroutine.
func (p *Pipeline) Handle(ctx context.Context, req Request) {
	select {
	case p.slots <- struct{}{}:
		defer func() { <-p.slots }()
	case <-ctx.Done():
		return
	}

	ctx = telemetry.WithCorrelation(ctx, uuid.New().String())
	logger := telemetry.LoggerWithCorr(ctx).With(
		slog.String("component", "pipeline"),
		slog.Int64("chat_id", req.ChatID),
		slog.Int("message_id", req.MessageID),
		slog.String("mode", req.Kind.String()))

	trim, err := directive.Parse(req.Text)
	if err != nil {
		if telemetry.DirectiveErrors != nil {
			telemetry.DirectiveErrors.Inc()
		}
		logger.Warn("invalid trim directive", slog.Any("err", err))
		p.reply(ctx, logger, req, fmt.Sprintf("%s\nid: %d", err, req.MessageID))
		return
	}

	cfg := p.video
	if req.Kind == KindAnimation {
		cfg = p.animation
	}
	cfg = cfg.WithTrim(trim)

	for _, url := range req.URLs {
		p.processURL(ctx, logger, req, cfg, url)
	}
}

// processURL acquires and delivers one URL. Failures report to the chat and
// never abort the rest of the batch.
func (p *Pipeline) processURL(ctx context.Context, logger *slog.Logger, req Request, cfg AcquisitionConfig, url string) {
	ctx, span := telemetry.StartSpan(ctx, "relay", "relay.acquire",
		attribute.String("url", url),
		attribute.String("mode", req.Kind.String()))
	defer span.End()

	if telemetry.JobsStarted != nil {
		telemetry.JobsStarted.Inc()
		telemetry.ActiveJobs.Inc()
		defer telemetry.ActiveJobs.Dec()
	}

	var art Artifact
	var err error
	took := telemetry.TimeFunc(telemetry.AcquireDuration, func() {
		art, err = p.resolver.Resolve(ctx, url, cfg)
	})
	if err != nil {
		if telemetry.JobsFailed != nil {
			telemetry.JobsFailed.Inc()
		}
		telemetry.RecordError(span, err)
		logger.Error("acquisition failed",
			slog.String("url", url),
			slog.String("class", ClassifyResolveError(err).String()),
			slog.Any("err", err))
		p.reply(ctx, logger, req, fmt.Sprintf("Unable to find video at %s\nid: %d", url, req.MessageID))
		return
	}
	if telemetry.JobsSucceeded != nil {
		telemetry.JobsSucceeded.Inc()
	}
	telemetry.SetSpanSuccess(span)
	logger.Info("acquired media",
		slog.String("url", url),
		slog.String("media_id", art.MediaID),
		slog.String("path", art.Path),
		slog.Duration("took", took))

	p.deliver(ctx, logger, req, url, art)
}

// deliver validates the artifact and hands it to the transport. The artifact
// is registered with the active set for its whole delivery window and removed
// from disk afterwards no matter the outcome.
func (p *Pipeline) deliver(ctx context.Context, logger *slog.Logger, req Request, url string, art Artifact) {
	ctx, span := telemetry.StartSpan(ctx, "relay", "relay.deliver",
		attribute.String("media_id", art.MediaID))
	defer span.End()

	if p.active != nil {
		p.active.Add(art.Path)
	}
	defer func() {
		if p.active != nil {
			p.active.Remove(art.Path)
		}
		if err := os.Remove(art.Path); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove artifact", slog.String("path", art.Path), slog.Any("err", err))
		}
	}()

	fi, err := os.Stat(art.Path)
	if err != nil || fi.Size() >= p.maxBytes {
		if telemetry.DeliveriesFailed != nil {
			telemetry.DeliveriesFailed.Inc()
		}
		attrs := []any{slog.String("url", url), slog.String("path", art.Path)}
		if err != nil {
			attrs = append(attrs, slog.Any("err", err))
		} else {
			attrs = append(attrs, slog.Int64("size_bytes", fi.Size()), slog.Int64("limit_bytes", p.maxBytes))
		}
		logger.Error("artifact unavailable or over size limit", attrs...)
		telemetry.RecordError(span, fmt.Errorf("artifact unavailable or over size limit: %s", art.Path))
		p.reply(ctx, logger, req, fmt.Sprintf("Unable to find video at %s, or video is too large to upload\nid: %s", url, art.MediaID))
		return
	}

	send := p.transport.SendVideo
	if req.Kind == KindAnimation {
		send = p.transport.SendAnimation
	}
	if err := send(ctx, req, art.Path, url); err != nil {
		if telemetry.DeliveriesFailed != nil {
			telemetry.DeliveriesFailed.Inc()
		}
		telemetry.RecordError(span, err)
		logger.Error("delivery failed", slog.String("url", url), slog.Any("err", err))
		p.reply(ctx, logger, req, fmt.Sprintf("Unable to upload video from %s\nid: %s", url, art.MediaID))
		return
	}
	if telemetry.DeliveriesSucceeded != nil {
		telemetry.DeliveriesSucceeded.Inc()
	}
	telemetry.SetSpanSuccess(span)
	logger.Info("delivered artifact",
		slog.String("url", url),
		slog.String("media_id", art.MediaID),
		slog.Int64("size_bytes", fi.Size()))
}

func (p *Pipeline) reply(ctx context.Context, logger *slog.Logger, req Request, text string) {
	if err := p.transport.ReplyText(ctx, req, text); err != nil {
		logger.Warn("failed to send status reply", slog.Any("err", err))
	}
}
