package bot

import (
	"context"
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v3"

	"gasbot/pkg/api"
	"gasbot/pkg/logger"
	"gasbot/pkg/models"
	"gasbot/service"
)

func (b *Bot) startLogin(c tele.Context, cs *ChatSession) error {
	cs.State = StateLoginIdentifier
	return c.Send("✉️ Enter your email or phone number:")
}

func (b *Bot) startRegistration(c tele.Context, cs *ChatSession) error {
	cs.State = StateRegisterUsername
	cs.Reg = api.RegisterPayload{}
	return c.Send("🙋 Pick a username:")
}

func (b *Bot) startForgotPassword(c tele.Context, cs *ChatSession) error {
	cs.State = StateForgotIdentifier
	cs.ResetToken = ""
	return c.Send("✉️ Enter the email or phone number of your account:")
}

func (b *Bot) startEditPhone(c tele.Context, cs *ChatSession) error {
	snap := cs.Services.Session().Snapshot()
	if !snap.IsAuthenticated() {
		return b.sendMenu(c, cs)
	}
	cs.State = StateProfilePhone
	return c.Send("📱 Send your new phone number:")
}

func (b *Bot) startDeleteAccount(c tele.Context, cs *ChatSession) error {
	snap := cs.Services.Session().Snapshot()
	if !snap.IsAuthenticated() {
		return b.sendMenu(c, cs)
	}
	cs.State = StateDeletePassword
	return c.Send("⚠️ This permanently deletes your account and order history.\n🔒 Enter your password to confirm, or /cancel.")
}

// handleAuthInput advances the login / registration / OTP flows one
// text message at a time.
func (b *Bot) handleAuthInput(c tele.Context, cs *ChatSession, text string) error {
	switch cs.State {
	case StateLoginIdentifier:
		cs.LoginIdentifier = text
		cs.State = StateLoginPassword
		return c.Send("🔒 And your password:")

	case StateLoginPassword:
		cs.State = StateIdle
		user, err := cs.Services.Session().Login(context.Background(), cs.LoginIdentifier, text)
		if err != nil {
			return c.Send(fmt.Sprintf("❌ Login failed: %s\nTry again with %s.", userMessage(err), btnLogin))
		}
		b.Log.Info("chat logged in", logger.Int64("chat_id", c.Chat().ID), logger.String("user", user.ID))
		return b.sendMenu(c, cs)

	case StateRegisterUsername:
		cs.Reg.Username = text
		cs.State = StateRegisterEmail
		return c.Send("✉️ Your email address:")

	case StateRegisterEmail:
		cs.Reg.Email = text
		cs.State = StateRegisterPhone
		return c.Send("📱 Your phone number:")

	case StateRegisterPhone:
		cs.Reg.Phone = text
		cs.State = StateRegisterPassword
		return c.Send("🔒 Choose a password:")

	case StateRegisterPassword:
		cs.Reg.Password = text
		cs.State = StateIdle
		resp, err := cs.Services.Session().Register(context.Background(), cs.Reg)
		cs.Reg = api.RegisterPayload{}
		if err != nil {
			return c.Send(fmt.Sprintf("❌ Registration failed: %s", userMessage(err)))
		}
		if resp.TempUser != nil {
			// OTP flow; the gate routes this chat to code entry.
			return b.sendMenu(c, cs)
		}
		return b.sendMenu(c, cs)

	case StateForgotIdentifier:
		cs.State = StateResetToken
		if err := cs.Services.Session().RequestPasswordReset(context.Background(), text); err != nil {
			cs.State = StateIdle
			return c.Send(fmt.Sprintf("❌ Could not start the reset: %s", userMessage(err)))
		}
		return c.Send("📨 If that account exists, we sent a reset code. Type it here, or /cancel.")

	case StateResetToken:
		cs.ResetToken = text
		cs.State = StateResetNewPassword
		return c.Send("🔒 Now choose a new password:")

	case StateResetNewPassword:
		token := cs.ResetToken
		cs.ResetToken = ""
		cs.State = StateIdle
		if err := cs.Services.Session().ConfirmPasswordReset(context.Background(), token, text); err != nil {
			return c.Send(fmt.Sprintf("❌ Reset failed: %s\nStart over with %s.", userMessage(err), btnForgot))
		}
		if err := c.Send("✅ Password updated. Sign in with your new password."); err != nil {
			return err
		}
		return b.sendMenu(c, cs)

	case StateProfilePhone:
		cs.State = StateIdle
		if err := cs.Services.Session().UpdateProfile(&models.User{Phone: text}); err != nil {
			return c.Send(fmt.Sprintf("❌ Could not update your phone: %s", userMessage(err)))
		}
		if err := c.Send("📱 Phone number updated."); err != nil {
			return err
		}
		return b.handleProfile(c, cs)

	case StateDeletePassword:
		cs.State = StateIdle
		if cs.Tracker != nil {
			cs.Tracker.Stop()
			cs.Tracker = nil
		}
		if err := cs.Services.Session().DeleteAccount(context.Background(), text); err != nil {
			return c.Send(fmt.Sprintf("❌ Deletion refused: %s", userMessage(err)))
		}
		if err := c.Send("🗑 Your account has been deleted. Goodbye!"); err != nil {
			return err
		}
		return b.sendMenu(c, cs)

	case StateOTP:
		snap := cs.Services.Session().Snapshot()
		if snap.TempUser == nil {
			cs.State = StateIdle
			return b.sendMenu(c, cs)
		}
		if _, err := cs.Services.Session().VerifyOTP(context.Background(), snap.TempUser.ID, text); err != nil {
			return c.Send(fmt.Sprintf("❌ That code was not accepted: %s\nTry again or /cancel.", userMessage(err)))
		}
		cs.State = StateIdle
		if err := c.Send("🎉 You're all signed up!"); err != nil {
			return err
		}
		return b.sendMenu(c, cs)
	}
	return nil
}

func (b *Bot) handleFinishSetup(c tele.Context, cs *ChatSession) error {
	if err := cs.Services.Session().MarkSetupComplete(); err != nil {
		b.Log.Warning("mark setup complete failed", logger.Error(err))
	}
	return b.sendMenu(c, cs)
}

func (b *Bot) handleProfile(c tele.Context, cs *ChatSession) error {
	snap := cs.Services.Session().Snapshot()
	if !snap.IsAuthenticated() {
		return b.sendMenu(c, cs)
	}
	u := snap.User
	txt := fmt.Sprintf("<b>👤 Profile</b>\n\nName: %s\nEmail: %s\nPhone: %s", u.Username, u.Email, u.Phone)

	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("📱 Change phone", "profile_phone")),
		menu.Row(menu.Data("🗑 Delete account", "profile_delete")),
	)
	return c.Send(txt, menu, tele.ModeHTML)
}

func (b *Bot) handleLogout(c tele.Context, cs *ChatSession) error {
	if cs.Tracker != nil {
		cs.Tracker.Stop()
		cs.Tracker = nil
	}
	if err := cs.Services.Session().Logout(context.Background()); err != nil {
		b.Log.Warning("logout cleanup failed", logger.Error(err))
	}
	cs.State = StateIdle
	if err := c.Send("👋 Signed out."); err != nil {
		return err
	}
	return b.sendMenu(c, cs)
}

// userMessage strips transport noise down to something a chat user can
// act on: the backend's own message when it exists, else a generic line.
func userMessage(err error) string {
	if errors.Is(err, service.ErrMissingTokens) || errors.Is(err, service.ErrMissingUser) {
		return "the server reply was incomplete, please try again"
	}
	if apiErr, ok := api.AsError(err); ok {
		return apiErr.Message
	}
	return "could not reach the server, please try again"
}
