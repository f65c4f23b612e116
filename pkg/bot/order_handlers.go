package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"gasbot/pkg/api"
	"gasbot/pkg/logger"
	"gasbot/pkg/models"
	"gasbot/service"
)

var paymentMethods = []string{"cash", "ecocash", "onemoney", "paynow"}

func (b *Bot) startOrderFlow(c tele.Context, cs *ChatSession) error {
	snap := cs.Services.Session().Snapshot()
	if !snap.IsAuthenticated() {
		return b.sendMenu(c, cs)
	}

	cs.OrderReq = api.StartOrderRequest{DeliveryType: "home_delivery"}
	cs.State = StateOrderAddress

	// Offer the last-used address as a one-tap default.
	if address, _ := cs.Services.Order().LastDeliveryDetails(); address != "" {
		return c.Send(
			fmt.Sprintf("📍 Where should we deliver? Last time you used:\n%s\n\nTap it below or type a new address.", address),
			replyMenu([]string{address}),
		)
	}
	return c.Send("📍 Where should we deliver? Type the full address:")
}

func (b *Bot) handleOrderInput(c tele.Context, cs *ChatSession, text string) error {
	switch cs.State {
	case StateOrderAddress:
		cs.OrderReq.DeliveryAddress = text
		cs.State = StateOrderWeight
		return c.Send("⚖️ Cylinder size in kg (for example 9 or 13):", replyMenu([]string{"9", "13", "19"}))

	case StateOrderWeight:
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return c.Send("⚖️ Please send just the weight in kg, like 13.")
		}
		cs.OrderReq.Weight = text
		cs.State = StateOrderQty
		return c.Send("🔢 How many cylinders?", replyMenu([]string{"1", "2", "3"}))

	case StateOrderQty:
		qty, err := strconv.Atoi(text)
		if err != nil || qty < 1 {
			return c.Send("🔢 Please send a whole number of cylinders.")
		}
		cs.OrderReq.Quantity = qty
		cs.State = StateOrderPayment
		return c.Send("💳 Payment method:", replyMenu(paymentMethods))

	case StateOrderPayment:
		method := strings.ToLower(strings.TrimSpace(text))
		valid := false
		for _, m := range paymentMethods {
			if m == method {
				valid = true
				break
			}
		}
		if !valid {
			return c.Send("💳 Pick one of the offered payment methods.")
		}
		cs.OrderReq.PaymentMethod = method
		cs.State = StateOrderNotes
		return c.Send("📝 Any notes for the driver? (or send - for none)")

	case StateOrderNotes:
		if text != "-" {
			cs.OrderReq.Notes = text
		}
		if _, phone := cs.Services.Order().LastDeliveryDetails(); phone != "" {
			cs.OrderReq.Phone = phone
		}
		snap := cs.Services.Session().Snapshot()
		if cs.OrderReq.Phone == "" && snap.User != nil {
			cs.OrderReq.Phone = snap.User.Phone
		}
		cs.State = StateOrderConfirm
		return c.Send(fmt.Sprintf(
			"🧾 <b>Order summary</b>\n\n📍 %s\n⚖️ %s kg × %d\n💳 %s\n📝 %s\n\nType <b>yes</b> to confirm or /cancel.",
			cs.OrderReq.DeliveryAddress, cs.OrderReq.Weight, cs.OrderReq.Quantity,
			cs.OrderReq.PaymentMethod, orDash(cs.OrderReq.Notes)), tele.ModeHTML)

	case StateOrderConfirm:
		if !strings.EqualFold(strings.TrimSpace(text), "yes") {
			return c.Send("Type <b>yes</b> to confirm, or /cancel to abort.", tele.ModeHTML)
		}
		cs.State = StateIdle
		req := cs.OrderReq
		cs.OrderReq = api.StartOrderRequest{}

		local, resp, err := cs.Services.Order().PlaceOrder(context.Background(), req)
		if err != nil {
			return c.Send(fmt.Sprintf("❌ Could not place the order: %s", userMessage(err)))
		}

		msg := fmt.Sprintf("✅ Order placed!\n🆔 %s\n💰 $%.2f", local.OrderID, local.TotalPrice)
		if resp.Paynow != nil && resp.Paynow.RedirectURL != "" {
			msg += "\n💳 Complete payment here: " + resp.Paynow.RedirectURL
		} else if resp.MerchantNumber != "" {
			msg += "\n💳 Pay via merchant number " + resp.MerchantNumber
		}
		if err := c.Send(msg); err != nil {
			return err
		}
		return b.handleMyOrders(c, cs)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var statusIcons = map[string]string{
	models.OrderStatusPending:        "🕐",
	models.OrderStatusConfirmed:      "✅",
	models.OrderStatusOutForDelivery: "🚚",
	models.OrderStatusDelivered:      "🏁",
	models.OrderStatusCancelled:      "⚠️",
}

// handleMyOrders renders the cached list first, then reconciles against
// the backend and re-renders only when something changed.
func (b *Bot) handleMyOrders(c tele.Context, cs *ChatSession) error {
	snap := cs.Services.Session().Snapshot()
	if !snap.IsAuthenticated() {
		return b.sendMenu(c, cs)
	}

	cached, err := cs.Services.Order().CachedOrders()
	if err != nil {
		b.Log.Warning("cached orders unreadable", logger.Error(err))
	}
	if len(cached) > 0 {
		if err := b.sendOrderList(c, cached, "📦 Your orders (syncing...)"); err != nil {
			return err
		}
	}

	orders, err := cs.Services.Order().LoadOrders(context.Background())
	if err != nil {
		b.Log.Warning("order sync failed", logger.Error(err))
		if len(orders) == 0 {
			return c.Send(fmt.Sprintf("❌ Could not load your orders: %s", userMessage(err)))
		}
	}
	if len(orders) == 0 {
		return c.Send("📭 No orders yet. Time for a first one?")
	}
	if len(cached) > 0 && sameOrderLists(cached, orders) {
		return nil
	}
	return b.sendOrderList(c, orders, "📦 Your orders")
}

func sameOrderLists(a, b []*models.Order) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].OrderID != b[i].OrderID || a[i].Status != b[i].Status {
			return false
		}
	}
	return true
}

func (b *Bot) sendOrderList(c tele.Context, orders []*models.Order, title string) error {
	if err := c.Send("<b>" + title + "</b>", tele.ModeHTML); err != nil {
		return err
	}
	for _, o := range orders {
		icon := statusIcons[o.Status]
		if icon == "" {
			icon = "❔"
		}
		txt := fmt.Sprintf("%s <b>%s</b>\n📍 %s\n⚖️ %.1f kg — $%.2f\n🗓 %s",
			icon, o.OrderID, o.DeliveryAddress, o.Weight, o.TotalPrice,
			o.CreatedAt.Format("2006-01-02 15:04"))
		if o.Local {
			txt += "\n⏳ awaiting server confirmation"
		}

		menu := &tele.ReplyMarkup{}
		var row []tele.Btn
		switch o.Status {
		case models.OrderStatusPending, models.OrderStatusConfirmed:
			row = append(row, menu.Data("🚫 Cancel", "cancel_"+o.OrderID))
		case models.OrderStatusOutForDelivery:
			row = append(row, menu.Data("🛰 Track", "track_"+o.OrderID))
		}
		if len(row) > 0 {
			menu.Inline(menu.Row(row...))
			if err := c.Send(txt, menu, tele.ModeHTML); err != nil {
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

func (b *Bot) handleCancelOrder(c tele.Context, cs *ChatSession, orderID string) error {
	if err := cs.Services.Order().CancelOrder(context.Background(), orderID); err != nil {
		return c.Send(fmt.Sprintf("❌ Cancel failed: %s", userMessage(err)))
	}
	return c.Send(fmt.Sprintf("🚫 Order %s cancelled.", orderID))
}

func (b *Bot) handleDrivers(c tele.Context, cs *ChatSession) error {
	drivers, err := cs.Services.Driver().List(context.Background())
	if err != nil {
		return c.Send(fmt.Sprintf("❌ Could not fetch drivers: %s", userMessage(err)))
	}
	available := service.FilterDrivers(drivers, "available")
	if len(available) == 0 {
		available = drivers
	}
	if len(available) == 0 {
		return c.Send("🚚 No drivers are listed right now.")
	}

	txt := "<b>🚚 Drivers</b>\n"
	for _, d := range available {
		txt += fmt.Sprintf("\n👤 %s — $%.2f/kg (%s)\n📞 %s", d.Name, d.PricePerKg, d.Status, d.Phone)
	}
	return c.Send(txt, tele.ModeHTML)
}
