package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"gasbot/config"
	"gasbot/pkg/api"
	"gasbot/pkg/gate"
	"gasbot/pkg/logger"
	"gasbot/pkg/track"
	"gasbot/service"
	storagefile "gasbot/storage/file"
)

// Conversation states of one chat.
const (
	StateIdle = "idle"

	StateLoginIdentifier = "awaiting_login_identifier"
	StateLoginPassword   = "awaiting_login_password"

	StateRegisterUsername = "awaiting_register_username"
	StateRegisterEmail    = "awaiting_register_email"
	StateRegisterPhone    = "awaiting_register_phone"
	StateRegisterPassword = "awaiting_register_password"

	StateOTP = "awaiting_otp"

	StateForgotIdentifier = "awaiting_forgot_identifier"
	StateResetToken       = "awaiting_reset_token"
	StateResetNewPassword = "awaiting_reset_new_password"

	StateProfilePhone   = "awaiting_profile_phone"
	StateDeletePassword = "awaiting_delete_password"

	StateOrderAddress = "awaiting_order_address"
	StateOrderWeight  = "awaiting_order_weight"
	StateOrderQty     = "awaiting_order_quantity"
	StateOrderPayment = "awaiting_order_payment"
	StateOrderNotes   = "awaiting_order_notes"
	StateOrderConfirm = "awaiting_order_confirm"

	StateSupportChat = "support_chat"
)

// ChatSession binds one Telegram chat to its own client runtime: a
// private storage file, its own session service and token state.
type ChatSession struct {
	Services service.IServiceManager
	State    string

	LoginIdentifier string
	Reg             api.RegisterPayload
	ResetToken      string
	OrderReq        api.StartOrderRequest

	Tracker *track.Subscriber
}

type Bot struct {
	Bot *tele.Bot
	Cfg *config.Config
	Log logger.ILogger

	mu       sync.Mutex
	sessions map[int64]*ChatSession
}

func New(cfg *config.Config, log logger.ILogger) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.TelegramBotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		Bot:      b,
		Cfg:      cfg,
		Log:      log,
		sessions: make(map[int64]*ChatSession),
	}
	bot.registerHandlers()
	return bot, nil
}

func (b *Bot) Start() {
	b.Log.Info("🤖 gasbot started")
	b.Bot.Start()
}

func (b *Bot) Stop() {
	b.mu.Lock()
	for _, cs := range b.sessions {
		if cs.Tracker != nil {
			cs.Tracker.Stop()
		}
	}
	b.mu.Unlock()
	b.Bot.Stop()
}

// session returns the chat's runtime, creating and restoring it on first
// contact so a bot restart does not log anyone out.
func (b *Bot) session(c tele.Context) *ChatSession {
	chatID := c.Chat().ID

	b.mu.Lock()
	cs, ok := b.sessions[chatID]
	b.mu.Unlock()
	if ok {
		return cs
	}

	stg, err := storagefile.New(b.Cfg.StorageDir, fmt.Sprintf("chat_%d", chatID), b.Log)
	if err != nil {
		b.Log.Error("open chat storage failed", logger.Int64("chat_id", chatID), logger.Error(err))
		return nil
	}
	svc := service.New(b.Cfg.APIBaseURL, b.Cfg.HTTPTimeout, stg, b.Log)
	if err := svc.Session().Restore(context.Background()); err != nil {
		b.Log.Warning("session restore failed", logger.Int64("chat_id", chatID), logger.Error(err))
	}

	cs = &ChatSession{Services: svc, State: StateIdle}
	b.mu.Lock()
	b.sessions[chatID] = cs
	b.mu.Unlock()
	return cs
}

func (b *Bot) registerHandlers() {
	b.Bot.Handle("/start", b.handleStart)
	b.Bot.Handle("/menu", b.handleStart)
	b.Bot.Handle("/cancel", b.handleAbort)
	b.Bot.Handle(tele.OnText, b.handleText)
	b.Bot.Handle(tele.OnCallback, b.handleCallback)
}

func (b *Bot) handleStart(c tele.Context) error {
	cs := b.session(c)
	if cs == nil {
		return c.Send("⚠️ Something went wrong, please try again later.")
	}
	cs.State = StateIdle
	return b.sendMenu(c, cs)
}

func (b *Bot) handleAbort(c tele.Context) error {
	cs := b.session(c)
	if cs == nil {
		return nil
	}
	cs.State = StateIdle
	cs.OrderReq = api.StartOrderRequest{}
	cs.Reg = api.RegisterPayload{}
	cs.ResetToken = ""
	return b.sendMenu(c, cs)
}

// Menu button labels double as text commands.
const (
	btnLogin    = "🔑 Login"
	btnRegister = "📝 Register"
	btnForgot   = "🔁 Forgot password"
	btnResendNo = "↩️ Start over"

	btnFinishSetup = "✅ Finish setup"

	btnOrderGas      = "🛒 Order gas"
	btnMyOrders      = "📦 My orders"
	btnDrivers       = "🚚 Drivers"
	btnNotifications = "🔔 Notifications"
	btnProfile       = "👤 Profile"
	btnSupport       = "💬 Support"
	btnLogout        = "🚪 Logout"
)

func replyMenu(rows ...[]string) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	var teleRows []tele.Row
	for _, r := range rows {
		var btns []tele.Btn
		for _, label := range r {
			btns = append(btns, menu.Text(label))
		}
		teleRows = append(teleRows, menu.Row(btns...))
	}
	menu.Reply(teleRows...)
	return menu
}

// sendMenu mounts the screen graph the gate selects for this session.
func (b *Bot) sendMenu(c tele.Context, cs *ChatSession) error {
	snap := cs.Services.Session().Snapshot()

	switch gate.Resolve(&snap) {
	case gate.RouteSplash:
		return c.Send("⏳ Restoring your session...")

	case gate.RouteVerifyOTP:
		cs.State = StateOTP
		return c.Send("📨 We sent you a one-time code. Type it here to finish signing up, or /cancel to start over.")

	case gate.RouteOnboarding:
		return c.Send(
			"👋 Welcome! One last step before ordering.",
			replyMenu([]string{btnFinishSetup}, []string{btnLogout}),
		)

	case gate.RouteMain:
		name := snap.User.Username
		if name == "" {
			name = snap.User.Email
		}
		return c.Send(
			fmt.Sprintf("🔥 Hi %s! What would you like to do?", name),
			replyMenu(
				[]string{btnOrderGas, btnMyOrders},
				[]string{btnDrivers, btnNotifications},
				[]string{btnProfile, btnSupport},
				[]string{btnLogout},
			),
		)

	default: // gate.RoutePublic
		return c.Send(
			"👋 Welcome to the gas delivery service. Sign in or create an account:",
			replyMenu([]string{btnLogin, btnRegister}, []string{btnForgot}),
		)
	}
}

// handleText dispatches free text through the chat's state machine, then
// falls back to menu buttons.
func (b *Bot) handleText(c tele.Context) error {
	cs := b.session(c)
	if cs == nil {
		return c.Send("⚠️ Something went wrong, please try again later.")
	}
	text := c.Text()

	switch cs.State {
	case StateLoginIdentifier, StateLoginPassword,
		StateRegisterUsername, StateRegisterEmail, StateRegisterPhone, StateRegisterPassword,
		StateOTP,
		StateForgotIdentifier, StateResetToken, StateResetNewPassword,
		StateProfilePhone, StateDeletePassword:
		return b.handleAuthInput(c, cs, text)

	case StateOrderAddress, StateOrderWeight, StateOrderQty,
		StateOrderPayment, StateOrderNotes, StateOrderConfirm:
		return b.handleOrderInput(c, cs, text)

	case StateSupportChat:
		return b.handleSupportMessage(c, cs, text)
	}

	switch text {
	case btnLogin:
		return b.startLogin(c, cs)
	case btnRegister:
		return b.startRegistration(c, cs)
	case btnForgot:
		return b.startForgotPassword(c, cs)
	case btnFinishSetup:
		return b.handleFinishSetup(c, cs)
	case btnOrderGas:
		return b.startOrderFlow(c, cs)
	case btnMyOrders:
		return b.handleMyOrders(c, cs)
	case btnDrivers:
		return b.handleDrivers(c, cs)
	case btnNotifications:
		return b.handleNotifications(c, cs)
	case btnProfile:
		return b.handleProfile(c, cs)
	case btnSupport:
		return b.startSupportChat(c, cs)
	case btnLogout:
		return b.handleLogout(c, cs)
	}

	return b.sendMenu(c, cs)
}

func (b *Bot) handleCallback(c tele.Context) error {
	cs := b.session(c)
	if cs == nil {
		return nil
	}
	defer func() { _ = c.Respond() }()

	data := callbackData(c)
	switch {
	case data == "track_stop":
		return b.handleStopTracking(c, cs)
	case strings.HasPrefix(data, "cancel_"):
		return b.handleCancelOrder(c, cs, strings.TrimPrefix(data, "cancel_"))
	case strings.HasPrefix(data, "track_"):
		return b.handleTrackOrder(c, cs, strings.TrimPrefix(data, "track_"))
	case strings.HasPrefix(data, "read_"):
		return b.handleMarkNotificationRead(c, cs, strings.TrimPrefix(data, "read_"))
	case data == "readall":
		return b.handleMarkAllRead(c, cs)
	case data == "profile_phone":
		return b.startEditPhone(c, cs)
	case data == "profile_delete":
		return b.startDeleteAccount(c, cs)
	}
	return nil
}

// callbackData strips telebot's framing from the callback payload.
func callbackData(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	data := strings.TrimPrefix(cb.Data, "\f")
	if i := strings.IndexByte(data, '|'); i >= 0 {
		data = data[:i]
	}
	return strings.TrimSpace(data)
}
