// Package mtproto implements the primary messaging client on top of the MTProto
// protocol library.
package mtproto

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/dcs"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/styling"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"golang.org/x/net/proxy"

	"github.com/uxwatch/uxwatch/internal/domain/model"
	"github.com/uxwatch/uxwatch/internal/domain/port/outbound"
)

// Config holds protocol client configuration.
type Config struct {
	AppID   int
	AppHash string

	// ProxyURL, when non-empty, routes all protocol traffic through a SOCKS5
	// proxy (socks5://[user:pass@]host:port).
	ProxyURL string
}

// Client implements outbound.Messenger using an MTProto session.
type Client struct {
	client *telegram.Client
	logger *slog.Logger

	mu       sync.RWMutex
	registry outbound.HandlerRegistry
}

var _ outbound.Messenger = (*Client)(nil)

// NewClient builds the protocol client. The session store decides whether a
// previous login is resumed; nothing connects until Run is called.
func NewClient(cfg Config, store outbound.SessionStore, logger *slog.Logger) (*Client, error) {
	c := &Client{logger: logger}

	dispatcher := tg.NewUpdateDispatcher()
	dispatcher.OnNewChannelMessage(c.onNewChannelMessage)

	opts := telegram.Options{
		SessionStorage: sessionStorage{store: store},
		UpdateHandler:  dispatcher,
	}

	if cfg.ProxyURL != "" {
		resolver, err := proxyResolver(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("configuring proxy: %w", err)
		}
		opts.Resolver = resolver
	}

	c.client = telegram.NewClient(cfg.AppID, cfg.AppHash, opts)
	return c, nil
}

// proxyResolver builds a DC resolver that dials through the given SOCKS5 proxy.
func proxyResolver(rawURL string) (dcs.Resolver, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy url: %w", err)
	}
	if u.Scheme != "socks5" {
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}

	var pauth *proxy.Auth
	if u.User != nil {
		pass, _ := u.User.Password()
		pauth = &proxy.Auth{User: u.User.Username(), Password: pass}
	}

	dialer, err := proxy.SOCKS5("tcp", u.Host, pauth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("creating socks5 dialer: %w", err)
	}
	ctxDialer, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("socks5 dialer does not support context dialing")
	}

	return dcs.Plain(dcs.PlainOptions{Dial: ctxDialer.DialContext}), nil
}

// Run opens the session and invokes f once the connection is up.
func (c *Client) Run(ctx context.Context, f func(ctx context.Context) error) error {
	return c.client.Run(ctx, f)
}

// IsAuthorized reports whether the current session is signed in.
func (c *Client) IsAuthorized(ctx context.Context) (bool, error) {
	status, err := c.client.Auth().Status(ctx)
	if err != nil {
		return false, fmt.Errorf("checking auth status: %w", err)
	}
	return status.Authorized, nil
}

// RequestCode asks the endpoint to deliver a one-time code to the phone.
func (c *Client) RequestCode(ctx context.Context, phone string) (string, error) {
	sent, err := c.client.Auth().SendCode(ctx, phone, auth.SendCodeOptions{})
	if err != nil {
		return "", mapRPCError(fmt.Errorf("sending code: %w", err))
	}

	code, ok := sent.(*tg.AuthSentCode)
	if !ok {
		return "", fmt.Errorf("unexpected sent code type %T", sent)
	}
	return code.PhoneCodeHash, nil
}

// SignIn completes the login with the code delivered to the phone.
func (c *Client) SignIn(ctx context.Context, phone, code, codeHash string) error {
	_, err := c.client.Auth().SignIn(ctx, phone, code, codeHash)
	if err == nil {
		return nil
	}
	if errors.Is(err, auth.ErrPasswordAuthNeeded) {
		return outbound.ErrTwoFactorRequired
	}
	if tgerr.Is(err, "PHONE_CODE_INVALID") || tgerr.Is(err, "PHONE_CODE_EXPIRED") {
		return fmt.Errorf("%w: %v", outbound.ErrCodeInvalid, err)
	}
	return mapRPCError(fmt.Errorf("signing in: %w", err))
}

// ResolveChannel resolves @handle or bare channel names to a stable peer.
func (c *Client) ResolveChannel(ctx context.Context, identifier string) (model.ChannelPeer, error) {
	username := strings.TrimPrefix(identifier, "@")

	res, err := c.client.API().ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		return model.ChannelPeer{}, mapRPCError(fmt.Errorf("resolving %q: %w", identifier, err))
	}

	for _, chat := range res.Chats {
		if ch, ok := chat.(*tg.Channel); ok {
			return model.ChannelPeer{
				Identifier: identifier,
				ChannelID:  ch.ID,
				AccessHash: ch.AccessHash,
			}, nil
		}
	}
	return model.ChannelPeer{}, fmt.Errorf("%q did not resolve to a channel", identifier)
}

// JoinChannel joins the channel. Already being a member is treated as success.
func (c *Client) JoinChannel(ctx context.Context, peer model.ChannelPeer) error {
	_, err := c.client.API().ChannelsJoinChannel(ctx, &tg.InputChannel{
		ChannelID:  peer.ChannelID,
		AccessHash: peer.AccessHash,
	})
	if err == nil || tgerr.Is(err, "USER_ALREADY_PARTICIPANT") {
		return nil
	}
	return mapRPCError(fmt.Errorf("joining %q: %w", peer.Identifier, err))
}

// Subscribe installs the event handlers consulted by the update dispatcher.
func (c *Client) Subscribe(registry outbound.HandlerRegistry) {
	c.mu.Lock()
	c.registry = registry
	c.mu.Unlock()
}

// SendText sends a plain text message to the @handle-addressed peer.
func (c *Client) SendText(ctx context.Context, handle, text string) error {
	sender := message.NewSender(c.client.API())
	if _, err := sender.Resolve(handle).Text(ctx, text); err != nil {
		return mapRPCError(fmt.Errorf("sending text to %q: %w", handle, err))
	}
	return nil
}

// SendFile uploads the local file and sends it as a document with a caption.
func (c *Client) SendFile(ctx context.Context, handle, path, caption string) error {
	api := c.client.API()

	up := uploader.NewUploader(api)
	f, err := up.FromPath(ctx, path)
	if err != nil {
		return fmt.Errorf("uploading %q: %w", path, err)
	}

	doc := message.UploadedDocument(f, styling.Plain(caption))
	doc.Filename(filepath.Base(path))

	sender := message.NewSender(api)
	if _, err := sender.Resolve(handle).Media(ctx, doc); err != nil {
		return mapRPCError(fmt.Errorf("sending file to %q: %w", handle, err))
	}
	return nil
}

// onNewChannelMessage forwards channel posts to the registered handler.
// Handler errors are logged, never propagated: a bad post must not take down
// the update loop.
func (c *Client) onNewChannelMessage(ctx context.Context, e tg.Entities, u *tg.UpdateNewChannelMessage) error {
	msg, ok := u.Message.(*tg.Message)
	if !ok || msg.Out {
		return nil
	}
	peer, ok := msg.PeerID.(*tg.PeerChannel)
	if !ok {
		return nil
	}

	c.mu.RLock()
	handler := c.registry[outbound.EventNewMessage]
	c.mu.RUnlock()
	if handler == nil {
		return nil
	}

	post := model.IncomingPost{Text: msg.Message, ChannelID: peer.ChannelID}
	if err := handler(ctx, post); err != nil {
		c.logger.Warn("channel message handler failed",
			"channel_id", peer.ChannelID, "error", err)
	}
	return nil
}

// mapRPCError converts throttling signals into the domain rate limit error.
func mapRPCError(err error) error {
	if d, ok := tgerr.AsFloodWait(err); ok {
		return &outbound.RateLimitError{RetryAfter: d}
	}
	return err
}
