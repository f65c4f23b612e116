package bot

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v3"

	"gasbot/pkg/logger"
	"gasbot/pkg/track"
)

// handleTrackOrder opens one live subscription for the chat and pumps
// location updates into it until the user stops or a new one replaces it.
func (b *Bot) handleTrackOrder(c tele.Context, cs *ChatSession, orderID string) error {
	if cs.Tracker != nil {
		cs.Tracker.Stop()
		cs.Tracker = nil
	}

	sub := track.New(b.Cfg.WSBaseURL, orderID, cs.Services.API(), b.Log)
	snapshot, err := sub.Start(context.Background())
	if err != nil {
		return c.Send(fmt.Sprintf("❌ Tracking unavailable: %s", userMessage(err)))
	}
	cs.Tracker = sub

	driver := snapshot.DriverName
	if driver == "" {
		driver = "not yet assigned"
	}
	stop := &tele.ReplyMarkup{}
	stop.Inline(stop.Row(stop.Data("⏹ Stop tracking", "track_stop")))
	err = c.Send(fmt.Sprintf(
		"🛰 <b>Tracking order %s</b>\n🚚 Driver: %s\n📊 Status: %s\n⏱ ETA: %s",
		orderID, driver, snapshot.Status, snapshot.ETA), stop, tele.ModeHTML)
	if err != nil {
		return err
	}

	chat := c.Chat()
	go func() {
		for upd := range sub.Updates() {
			_, sendErr := b.Bot.Send(chat, fmt.Sprintf(
				"📍 Driver at %.5f, %.5f (%s)", upd.Lat, upd.Lng, upd.Timestamp))
			if sendErr != nil {
				b.Log.Warning("tracking push failed",
					logger.Int64("chat_id", chat.ID), logger.Error(sendErr))
			}
		}
		b.Log.Info("tracking stream closed", logger.String("order_id", orderID))
	}()
	return nil
}

func (b *Bot) handleStopTracking(c tele.Context, cs *ChatSession) error {
	if cs.Tracker == nil {
		return nil
	}
	cs.Tracker.Stop()
	cs.Tracker = nil
	return c.Send("⏹ Stopped tracking.")
}
