package post

import (
	"context"
	"strings"

	"log/slog"

	"github.com/nexonhq/nexon-bot/core/logger"
	"github.com/nexonhq/nexon-bot/core/metrics"
)

// Dispatcher schedules best-effort outbound work. A nil Dispatcher on the
// Publisher runs jobs inline, which keeps tests synchronous.
type Dispatcher interface {
	Enqueue(ctx context.Context, action, endpoint string, run func() error) error
}

// Publisher fans a completed post out to its destinations: the origin
// channel, the category channel when one is mapped, and the website API.
// Destinations are independent; one failing never blocks the others.
type Publisher struct {
	gw     Gateway
	router *Router
	site   *WebsiteClient
	disp   Dispatcher
}

// NewPublisher builds a Publisher. site and disp may be nil.
func NewPublisher(gw Gateway, router *Router, site *WebsiteClient, disp Dispatcher) *Publisher {
	return &Publisher{gw: gw, router: router, site: site, disp: disp}
}

// FormatBody renders the final post text. The link line is omitted when the
// link is empty after trimming.
func FormatBody(d Draft) string {
	body := "# " + d.Topic + "\n> " + d.Description
	if strings.TrimSpace(d.Link) != "" {
		body += "\n" + d.Link
	}
	return body
}

// Publish delivers the completed post. The origin send is synchronous and
// its error is returned for the handler summary; the remaining destinations
// run detached from the event's cancellation.
func (p *Publisher) Publish(ctx context.Context, sess *Session) error {
	body := FormatBody(sess.Draft)

	_, originErr := p.gw.SendMessage(ctx, sess.ChannelID, body)
	p.record(ctx, "origin", sess.ChannelID, originErr)

	if dest, ok := p.router.Resolve(sess.Draft.Tag); ok && dest != sess.ChannelID {
		p.dispatch(ctx, "post_category", dest, func(jobCtx context.Context) error {
			_, err := p.gw.SendMessage(jobCtx, dest, body)
			p.record(jobCtx, "category", dest, err)
			return err
		})
	}

	if p.site != nil {
		payload := Payload{
			Topic:       sess.Draft.Topic,
			Description: sess.Draft.Description,
			Link:        strings.TrimSpace(sess.Draft.Link),
			Tag:         sess.Draft.Tag,
			Source:      "discord",
		}
		p.dispatch(ctx, "website_upload", p.site.URL(), func(jobCtx context.Context) error {
			err := p.site.Upload(jobCtx, payload)
			p.record(jobCtx, "website", p.site.URL(), err)
			return err
		})
	}

	return originErr
}

// dispatch runs a best-effort job, async through the dispatcher when one is
// configured. The job context survives the inbound event's cancellation.
func (p *Publisher) dispatch(ctx context.Context, action, endpoint string, run func(context.Context) error) {
	jobCtx := context.WithoutCancel(ctx)
	if p.disp == nil {
		_ = run(jobCtx)
		return
	}
	if err := p.disp.Enqueue(jobCtx, action, endpoint, func() error { return run(jobCtx) }); err != nil {
		logger.Warn(ctx, "pub", "publish.enqueue.fail",
			slog.String("action", action),
			slog.String("destination", endpoint),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
}

func (p *Publisher) record(ctx context.Context, destination, endpoint string, err error) {
	metrics.PublishCounter.WithLabelValues(destination, logger.Status(err)).Inc()
	if err != nil {
		logger.Error(ctx, "pub", "publish.fail",
			slog.String("destination", destination),
			slog.String("endpoint", endpoint),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return
	}
	logger.Debug(ctx, "pub", "publish.ok",
		slog.String("destination", destination),
		slog.String("endpoint", endpoint),
	)
}
