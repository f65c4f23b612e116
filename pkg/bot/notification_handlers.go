package bot

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v3"
)

func (b *Bot) handleNotifications(c tele.Context, cs *ChatSession) error {
	list, err := cs.Services.Notification().List(context.Background())
	if err != nil {
		return c.Send(fmt.Sprintf("❌ Could not fetch notifications: %s", userMessage(err)))
	}
	if len(list) == 0 {
		return c.Send("🔕 Nothing here yet.")
	}

	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(menu.Data("✅ Mark all read", "readall")))
	if err := c.Send("<b>🔔 Notifications</b>", menu, tele.ModeHTML); err != nil {
		return err
	}

	for _, n := range list {
		icon := "🔔"
		if n.Read {
			icon = "✉️"
		}
		if n.IsLocal() {
			icon = "💡"
		}
		txt := fmt.Sprintf("%s <b>%s</b>\n%s", icon, n.Title, n.Message)

		if !n.IsLocal() && !n.Read {
			item := &tele.ReplyMarkup{}
			item.Inline(item.Row(item.Data("👁 Mark read", "read_"+n.ID)))
			if err := c.Send(txt, item, tele.ModeHTML); err != nil {
				return err
			}
			continue
		}
		if err := c.Send(txt, tele.ModeHTML); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) handleMarkNotificationRead(c tele.Context, cs *ChatSession, notifID string) error {
	if err := cs.Services.Notification().MarkRead(context.Background(), notifID); err != nil {
		return c.Send(fmt.Sprintf("❌ %s", userMessage(err)))
	}
	return c.Send("👁 Marked as read.")
}

func (b *Bot) handleMarkAllRead(c tele.Context, cs *ChatSession) error {
	if err := cs.Services.Notification().MarkAllRead(context.Background()); err != nil {
		return c.Send(fmt.Sprintf("❌ %s", userMessage(err)))
	}
	return c.Send("✅ All notifications marked read.")
}

func (b *Bot) startSupportChat(c tele.Context, cs *ChatSession) error {
	cs.State = StateSupportChat
	return c.Send("💬 You're chatting with support. Ask about prices, delivery or safety — /cancel to leave.")
}

func (b *Bot) handleSupportMessage(c tele.Context, cs *ChatSession, text string) error {
	reply, err := cs.Services.Chat().Send(context.Background(), text)
	if err != nil {
		return c.Send(fmt.Sprintf("❌ Support is unreachable: %s", userMessage(err)))
	}
	if reply == "" {
		reply = "🤖 I didn't catch that — try asking about orders, prices, delivery or safety."
	}
	return c.Send(reply)
}
