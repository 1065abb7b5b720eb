package telegram

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/surebetbot/internal/pkg/config"
)

type fakeScanner struct {
	running  bool
	interval time.Duration
}

func (f *fakeScanner) StartAsync() error { f.running = true; return nil }

func (f *fakeScanner) StopAsync() { f.running = false }

func (f *fakeScanner) IsAsyncRunning() bool { return f.running }

func (f *fakeScanner) SetInterval(d time.Duration) error {
	f.interval = d
	return nil
}

type post struct {
	chatID int64
	text   string
}

type fakePoster struct {
	mu    sync.Mutex
	posts []post
}

func (f *fakePoster) Notify(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, post{chatID, text})
	return nil
}

const adminID = 42

func newListener(t *testing.T) (*CommandListener, *config.Store, *fakeScanner, *fakePoster, string) {
	t.Helper()
	cfg := config.Default()
	cfg.Routing.FreeMax = 2
	cfg.Routing.PremiumMin = 4
	cfg.Telegram.FreeChatID = -100
	cfg.Telegram.PremiumChatID = -200
	cfg.Telegram.AdminIDs = []int64{adminID}

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, cfg.Save(path))
	store, err := config.NewStore(path)
	require.NoError(t, err)

	sc := &fakeScanner{}
	p := &fakePoster{}
	return NewCommandListener(nil, store, sc, p), store, sc, p, path
}

func TestHandle_PublicCommands(t *testing.T) {
	l, _, _, _, _ := newListener(t)
	ctx := context.Background()

	assert.Equal(t, "Pong", l.Handle(ctx, 7, "ping", ""))
	assert.Contains(t, l.Handle(ctx, 7, "help", ""), "/setlimit")
	assert.Equal(t, "Not allowed.", l.Handle(ctx, 7, "showconfig", ""))
	assert.Equal(t, "Not allowed.", l.Handle(ctx, 7, "stop", ""))
	assert.Equal(t, "", l.Handle(ctx, adminID, "unknown", ""))
}

func TestHandle_ShowConfig(t *testing.T) {
	l, _, _, _, _ := newListener(t)

	out := l.Handle(context.Background(), adminID, "showconfig", "")
	assert.Contains(t, out, "Free up to: 2% (chat -100)")
	assert.Contains(t, out, "Premium from: 4% (chat -200)")
	assert.Contains(t, out, "Tax: 12%")
	assert.Contains(t, out, "Interval: 5m0s (stopped)")
}

func TestHandle_SetLimitPersists(t *testing.T) {
	l, store, _, _, path := newListener(t)
	ctx := context.Background()

	assert.Equal(t, "Limit free set to 1.5%", l.Handle(ctx, adminID, "setlimit", "free 1.5"))
	assert.Equal(t, "Limit premium set to 5%", l.Handle(ctx, adminID, "setlimit", "premium 5%"))
	assert.Equal(t, 1.5, store.Snapshot().Routing.FreeMax)

	saved, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, saved.Routing.PremiumMin)

	assert.True(t, strings.HasPrefix(l.Handle(ctx, adminID, "setlimit", "free 9"), "Rejected:"),
		"free above premium fails validation")
	assert.True(t, strings.HasPrefix(l.Handle(ctx, adminID, "setlimit", "gold 1"), "Usage:"))
	assert.True(t, strings.HasPrefix(l.Handle(ctx, adminID, "setlimit", "free x"), "Usage:"))
}

func TestHandle_SetChannelAndInterval(t *testing.T) {
	l, store, sc, _, _ := newListener(t)
	ctx := context.Background()

	assert.Equal(t, "Channel premium set to -300", l.Handle(ctx, adminID, "setchannel", "premium -300"))
	assert.Equal(t, int64(-300), store.Snapshot().Telegram.PremiumChatID)
	assert.True(t, strings.HasPrefix(l.Handle(ctx, adminID, "setchannel", "free abc"), "Usage:"))

	assert.Equal(t, "Scan interval set to 1m30s", l.Handle(ctx, adminID, "setinterval", "90"))
	assert.Equal(t, 90*time.Second, sc.interval)
	assert.Equal(t, 90*time.Second, store.Snapshot().Scanner.Interval)
	assert.True(t, strings.HasPrefix(l.Handle(ctx, adminID, "setinterval", "-5"), "Usage:"))
}

func TestHandle_StartStop(t *testing.T) {
	l, _, sc, _, _ := newListener(t)
	ctx := context.Background()

	assert.Equal(t, "Scan loop is not running.", l.Handle(ctx, adminID, "stop", ""))
	assert.Equal(t, "Scan loop started.", l.Handle(ctx, adminID, "start", ""))
	assert.True(t, sc.running)
	assert.Contains(t, l.Handle(ctx, adminID, "showconfig", ""), "(running)")
	assert.Equal(t, "Scan loop stopped.", l.Handle(ctx, adminID, "stop", ""))
	assert.False(t, sc.running)
}

func TestHandle_Post(t *testing.T) {
	l, _, _, p, _ := newListener(t)
	ctx := context.Background()

	assert.Equal(t, "Surebet posted to premium.",
		l.Handle(ctx, adminID, "post", "Legia vs Lech | sts_O2.5@2.3 fortuna_U2.5@2.4 | value:5.0%"))
	assert.Equal(t, "Surebet posted to free.", l.Handle(ctx, adminID, "post", "A<B | value: 1.2%"))
	assert.Equal(t, "Surebet is outside the thresholds, not posting.", l.Handle(ctx, adminID, "post", "gap | value:3%"))
	assert.Equal(t, "Format: /post <text> value:5.0%", l.Handle(ctx, adminID, "post", "no marker"))

	require.Len(t, p.posts, 2)
	assert.Equal(t, int64(-200), p.posts[0].chatID)
	assert.True(t, strings.HasPrefix(p.posts[0].text, "📈 [PREMIUM] Legia vs Lech"))
	assert.Equal(t, int64(-100), p.posts[1].chatID)
	assert.Equal(t, "📈 [FREE] A&lt;B | value: 1.2%", p.posts[1].text)
}
