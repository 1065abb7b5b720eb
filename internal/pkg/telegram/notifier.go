// Package telegram sends alerts to Telegram chats and serves admin commands.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// ErrQueueFull is returned by Notify when the send queue has no room.
var ErrQueueFull = errors.New("message queue is full")

// ErrClosed is returned by Notify after Close.
var ErrClosed = errors.New("notifier is closed")

// Sender is the part of tgbotapi.BotAPI used for sending.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Options tunes the notifier.
type Options struct {
	SendInterval   time.Duration // min interval between two messages, ~30/min Telegram limit
	QueueSize      int
	MaxRetries     int
	RetryDelayBase time.Duration
}

func (o Options) withDefaults() Options {
	if o.SendInterval <= 0 {
		o.SendInterval = 2 * time.Second
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 100
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.RetryDelayBase <= 0 {
		o.RetryDelayBase = time.Second
	}
	return o
}

// queuedMessage represents a message queued for sending
type queuedMessage struct {
	chatID   int64
	text     string
	queuedAt time.Time
}

// Notifier queues HTML messages and sends them from a single goroutine through a rate limiter.
type Notifier struct {
	sender  Sender
	opts    Options
	limiter *rate.Limiter

	mu     sync.Mutex
	closed bool
	queue  chan queuedMessage
	done   chan struct{}
}

// NewBot creates a bot client and checks the token.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false
	slog.Info("Telegram bot authorized", "username", bot.Self.UserName)
	return bot, nil
}

// NewNotifier starts the background sender.
func NewNotifier(sender Sender, opts Options) *Notifier {
	opts = opts.withDefaults()
	n := &Notifier{
		sender:  sender,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(opts.SendInterval), 1),
		queue:   make(chan queuedMessage, opts.QueueSize),
		done:    make(chan struct{}),
	}
	go n.messageSender()
	slog.Info("Telegram notifier initialized", "send_interval", opts.SendInterval, "queue_size", opts.QueueSize)
	return n
}

// Notify queues a message without blocking.
func (n *Notifier) Notify(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return ErrClosed
	}
	select {
	case n.queue <- queuedMessage{chatID: chatID, text: text, queuedAt: time.Now()}:
		return nil
	default:
		slog.Warn("Telegram message queue is full, dropping message", "chat_id", chatID, "message_preview", truncateString(text, 50))
		return ErrQueueFull
	}
}

// QueueLen returns current number of messages in the send queue.
func (n *Notifier) QueueLen() int {
	return len(n.queue)
}

// Close stops accepting messages and waits until queued ones are sent.
func (n *Notifier) Close() error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	<-n.done
	return nil
}

// messageSender runs in background and sends queued messages with proper intervals
func (n *Notifier) messageSender() {
	defer close(n.done)
	for msg := range n.queue {
		_ = n.limiter.Wait(context.Background())
		if err := n.send(msg); err != nil {
			slog.Error("Telegram send failed", "chat_id", msg.chatID, "error", err)
			continue
		}
		slog.Info("Telegram send: message sent", "chat_id", msg.chatID,
			"queue_wait", time.Since(msg.queuedAt).Round(time.Millisecond), "queue_length", len(n.queue))
	}
}

// send delivers one message with linear-backoff retry.
func (n *Notifier) send(msg queuedMessage) error {
	tgMsg := tgbotapi.NewMessage(msg.chatID, msg.text)
	tgMsg.ParseMode = tgbotapi.ModeHTML
	tgMsg.DisableWebPagePreview = true

	var lastErr error
	for i := 0; i < n.opts.MaxRetries; i++ {
		if _, err := n.sender.Send(tgMsg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if i < n.opts.MaxRetries-1 {
			time.Sleep(n.retryDelay(lastErr, i))
		}
	}
	return fmt.Errorf("failed after %d retries: %w", n.opts.MaxRetries, lastErr)
}

func (n *Notifier) retryDelay(err error, attempt int) time.Duration {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.RetryAfter > 0 {
		return time.Duration(tgErr.RetryAfter) * time.Second
	}
	return n.opts.RetryDelayBase * time.Duration(attempt+1)
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
