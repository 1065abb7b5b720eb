package telegram

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vodeneev/surebetbot/internal/calculator/calculator"
	"github.com/Vodeneev/surebetbot/internal/pkg/config"
)

// Scanner is the scan loop control surface exposed to admins.
type Scanner interface {
	StartAsync() error
	StopAsync()
	IsAsyncRunning() bool
	SetInterval(d time.Duration) error
}

// Poster delivers manual posts.
type Poster interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Updater is the part of tgbotapi.BotAPI used for long polling.
type Updater interface {
	Sender
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

const helpText = `Commands:
/ping - check the bot is alive
/showconfig - show thresholds, channels and interval
/setlimit free|premium <pct> - set free-max or premium-min
/setchannel free|premium <chat_id> - change a channel
/setinterval <seconds> - change the scan interval
/post <text ... value:5.0%> - post a surebet manually
/start - start the scan loop
/stop - stop the scan loop`

// CommandListener answers admin commands sent to the bot.
type CommandListener struct {
	bot     Updater
	store   *config.Store
	scanner Scanner
	poster  Poster
}

func NewCommandListener(bot Updater, store *config.Store, scanner Scanner, poster Poster) *CommandListener {
	return &CommandListener{bot: bot, store: store, scanner: scanner, poster: poster}
}

// ListenForCommands starts a goroutine that polls for Telegram updates and handles bot commands.
// It returns immediately; the goroutine stops when ctx is cancelled.
func (l *CommandListener) ListenForCommands(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := l.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				l.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message == nil || !update.Message.IsCommand() {
					continue
				}
				msg := update.Message
				var userID int64
				if msg.From != nil {
					userID = msg.From.ID
				}
				reply := l.Handle(ctx, userID, msg.Command(), msg.CommandArguments())
				if reply == "" {
					continue
				}
				if _, err := l.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, reply)); err != nil {
					slog.Warn("Telegram: failed to reply", "command", msg.Command(), "error", err)
				}
			}
		}
	}()
}

// Handle executes one command and returns the reply text. Unknown commands get no reply.
func (l *CommandListener) Handle(ctx context.Context, userID int64, command, args string) string {
	switch command {
	case "ping":
		return "Pong"
	case "help":
		return helpText
	}

	if !l.store.Snapshot().IsAdmin(userID) {
		slog.Warn("Telegram: command rejected", "command", command, "user_id", userID)
		return "Not allowed."
	}
	slog.Info("Telegram: admin command", "command", command, "args", args, "user_id", userID)

	fields := strings.Fields(args)
	switch command {
	case "showconfig":
		return l.showConfig()
	case "setlimit":
		return l.setLimit(fields)
	case "setchannel":
		return l.setChannel(fields)
	case "setinterval":
		return l.setInterval(fields)
	case "post":
		return l.post(ctx, args)
	case "start":
		if err := l.scanner.StartAsync(); err != nil {
			return "Failed to start: " + err.Error()
		}
		return "Scan loop started."
	case "stop":
		if !l.scanner.IsAsyncRunning() {
			return "Scan loop is not running."
		}
		l.scanner.StopAsync()
		return "Scan loop stopped."
	default:
		return ""
	}
}

func (l *CommandListener) showConfig() string {
	cfg := l.store.Snapshot()
	state := "stopped"
	if l.scanner.IsAsyncRunning() {
		state = "running"
	}
	return fmt.Sprintf("Current config:\n"+
		"- Free up to: %s%% (chat %d)\n"+
		"- Premium from: %s%% (chat %d)\n"+
		"- Gap policy: %s\n"+
		"- Tax: %s%%, minimal profit: %s%%\n"+
		"- Interval: %s (%s)",
		formatFloat(cfg.Routing.FreeMax), cfg.Telegram.FreeChatID,
		formatFloat(cfg.Routing.PremiumMin), cfg.Telegram.PremiumChatID,
		cfg.Routing.GapPolicy,
		formatFloat(cfg.Engine.TaxRate*100), formatFloat(cfg.Engine.MinimalProfit),
		cfg.Scanner.Interval, state)
}

func (l *CommandListener) setLimit(fields []string) string {
	const usage = "Usage: /setlimit free <pct> or /setlimit premium <pct>"
	if len(fields) != 2 {
		return usage
	}
	value, err := strconv.ParseFloat(strings.TrimSuffix(fields[1], "%"), 64)
	if err != nil {
		return usage
	}

	var apply func(*config.Config)
	switch fields[0] {
	case "free":
		apply = func(c *config.Config) { c.Routing.FreeMax = value }
	case "premium":
		apply = func(c *config.Config) { c.Routing.PremiumMin = value }
	default:
		return usage
	}
	if err := l.store.Update(apply); err != nil {
		return "Rejected: " + err.Error()
	}
	return fmt.Sprintf("Limit %s set to %s%%", fields[0], formatFloat(value))
}

func (l *CommandListener) setChannel(fields []string) string {
	const usage = "Usage: /setchannel free <chat_id> or /setchannel premium <chat_id>"
	if len(fields) != 2 {
		return usage
	}
	chatID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return usage
	}

	var apply func(*config.Config)
	switch fields[0] {
	case "free":
		apply = func(c *config.Config) { c.Telegram.FreeChatID = chatID }
	case "premium":
		apply = func(c *config.Config) { c.Telegram.PremiumChatID = chatID }
	default:
		return usage
	}
	if err := l.store.Update(apply); err != nil {
		return "Rejected: " + err.Error()
	}
	return fmt.Sprintf("Channel %s set to %d", fields[0], chatID)
}

func (l *CommandListener) setInterval(fields []string) string {
	const usage = "Usage: /setinterval <seconds>"
	if len(fields) != 1 {
		return usage
	}
	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || seconds <= 0 {
		return usage
	}
	d := time.Duration(seconds * float64(time.Second))

	if err := l.store.Update(func(c *config.Config) { c.Scanner.Interval = d }); err != nil {
		return "Rejected: " + err.Error()
	}
	if err := l.scanner.SetInterval(d); err != nil {
		return "Rejected: " + err.Error()
	}
	return fmt.Sprintf("Scan interval set to %s", d)
}

// post routes a manual surebet by the trailing "value:X%" marker.
func (l *CommandListener) post(ctx context.Context, text string) string {
	const usage = "Format: /post <text> value:5.0%"
	text = strings.TrimSpace(text)
	idx := strings.LastIndex(text, "value:")
	if idx < 0 {
		return usage
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text[idx+len("value:"):]), "%")), 64)
	if err != nil {
		return usage
	}

	cfg := l.store.Snapshot()
	ch := calculator.NewRouter(cfg.Routing).Route(value)
	if ch == calculator.ChannelNone {
		return "Surebet is outside the thresholds, not posting."
	}
	chatID := calculator.ChatID(cfg.Telegram, ch)
	if chatID == 0 || l.poster == nil {
		return fmt.Sprintf("Channel %s is not configured.", ch)
	}
	if err := l.poster.Notify(ctx, chatID, "📈 "+ch.Tag()+" "+html.EscapeString(text)); err != nil {
		return "Failed to post: " + err.Error()
	}
	return fmt.Sprintf("Surebet posted to %s.", ch)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}
