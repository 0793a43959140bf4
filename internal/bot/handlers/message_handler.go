package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/dicelounge/loungebot/internal/billing"
	"github.com/dicelounge/loungebot/internal/notify"
	"github.com/dicelounge/loungebot/internal/tracker"
)

// NewMessageHandler returns the default text handler. It interprets every
// non-command message against the sender's dialogue state and advances the
// menu flow.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

type messageHandler struct {
	deps HandlerDeps
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "message")

	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := update.Message.Text
	actor := actorName(update.Message.From)

	// A reply is always attempted, even if a handler panics mid-turn.
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "Recovered from panic in message handler",
				"panic", r, "user_id", userID, "text", text)
			h.send(ctx, b, chatID, h.deps.Config.Messages.GeneralError, mainMenuKeyboard())
		}
	}()

	switch text {
	case btnBack:
		h.handleBack(ctx, b, chatID, userID)
		return
	case btnCancel:
		h.deps.Tracker.ClearDialogue(userID)
		h.send(ctx, b, chatID, h.deps.Config.Messages.ChooseAction, mainMenuKeyboard())
		return
	case btnSubmitOrder:
		h.handleSubmitOrder(ctx, b, chatID, userID, actor)
		return
	case btnDoneEditing:
		h.handleDoneEditing(ctx, b, chatID, userID, actor)
		return
	case btnSettle:
		h.handleSettle(ctx, b, chatID, userID, actor)
		return
	}

	if mode, ok := modeForButton(text); ok {
		h.handleBeginFlow(ctx, b, chatID, userID, mode)
		return
	}

	if h.deps.Tables.Contains(text) {
		h.handleTableSelection(ctx, b, chatID, userID, text, actor)
		return
	}

	if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
		h.handleCount(ctx, b, chatID, userID, n, actor)
		return
	}

	if h.deps.Catalog != nil {
		if key, ok := h.deps.Catalog.KeyForLabel(text); ok {
			h.handleCategorySelection(ctx, b, chatID, userID, key)
			return
		}
	}

	h.handleItemOrFallback(ctx, b, chatID, userID, text, actor)
}

// modeForButton maps a main-menu button to the dialogue mode it starts.
func modeForButton(text string) (tracker.Mode, bool) {
	switch text {
	case btnStartGame:
		return tracker.ModeGameStart, true
	case btnEndGame:
		return tracker.ModeGameEnd, true
	case btnNewOrder:
		return tracker.ModeOrderStart, true
	case btnAddToOrder:
		return tracker.ModeOrderAdd, true
	case btnEditOrder:
		return tracker.ModeOrderEdit, true
	case btnAddPlayers:
		return tracker.ModePlayerAdd, true
	case btnRemovePlayers:
		return tracker.ModePlayerRemove, true
	case btnMoveTable:
		return tracker.ModeMoveTable, true
	case btnCheckout:
		return tracker.ModeCheckout, true
	}
	return tracker.ModeIdle, false
}

// handleBack steps out of category browsing, or drops the whole dialogue and
// returns to the main menu.
func (h messageHandler) handleBack(ctx context.Context, b *bot.Bot, chatID, userID int64) {
	st, ok := h.deps.Tracker.Dialogue(userID)
	if ok && st.Mode.OrderRelated() && st.CurrentCategory != "" {
		_ = h.deps.Tracker.SelectCategory(userID, "")
		h.sendOrderMenu(ctx, b, chatID, userID, st.Mode, st.Table)
		return
	}

	h.deps.Tracker.ClearDialogue(userID)
	h.send(ctx, b, chatID, h.deps.Config.Messages.ChooseAction, mainMenuKeyboard())
}

func (h messageHandler) handleBeginFlow(ctx context.Context, b *bot.Bot, chatID, userID int64, mode tracker.Mode) {
	if mode.OrderRelated() && h.deps.Catalog == nil {
		h.send(ctx, b, chatID, h.deps.Config.Messages.OrdersDisabled, mainMenuKeyboard())
		return
	}

	h.deps.Tracker.BeginMode(userID, mode)
	h.send(ctx, b, chatID, h.deps.Config.Messages.ChooseTable, tableKeyboard(h.deps.Tables.All()))
}

func (h messageHandler) handleTableSelection(ctx context.Context, b *bot.Bot, chatID, userID int64, table, actor string) {
	log := h.deps.Logger.With("handler", "message")

	st, ok := h.deps.Tracker.Dialogue(userID)
	if !ok || st.Mode == tracker.ModeIdle {
		h.send(ctx, b, chatID, "Please choose an action first.", mainMenuKeyboard())
		return
	}

	// Second table pick of the move flow is the target.
	if st.Mode == tracker.ModeMoveTable && st.Table != "" {
		h.handleMoveTarget(ctx, b, chatID, userID, st.Table, table, actor)
		return
	}

	switch st.Mode {
	case tracker.ModeGameEnd:
		game, err := h.deps.Tracker.EndGame(table)
		if err != nil {
			h.sendError(ctx, b, chatID, err)
			return
		}
		h.broadcast(ctx, notify.FormatGameEnded(table, game.Occupancy(), game.StartedAt, game.EndedAt))
		h.deps.Tracker.ClearDialogue(userID)
		h.send(ctx, b, chatID, "✅ Game ended, table is awaiting checkout.", mainMenuKeyboard())

	case tracker.ModeCheckout:
		h.handleCheckoutTable(ctx, b, chatID, userID, table)

	default:
		if err := h.deps.Tracker.SelectTable(userID, table); err != nil {
			h.sendError(ctx, b, chatID, err)
			return
		}

		switch st.Mode {
		case tracker.ModeGameStart, tracker.ModePlayerAdd, tracker.ModePlayerRemove:
			h.send(ctx, b, chatID, h.deps.Config.Messages.AskPlayerCount, countKeyboard())
		case tracker.ModeOrderStart, tracker.ModeOrderAdd:
			h.send(ctx, b, chatID, h.deps.Config.Messages.ChooseCategory, categoryKeyboard(h.deps.Catalog))
		case tracker.ModeOrderEdit:
			order, exists := h.deps.Tracker.Order(table)
			if !exists {
				h.deps.Tracker.ClearDialogue(userID)
				h.send(ctx, b, chatID, "There is no open order on that table.", mainMenuKeyboard())
				return
			}
			h.send(ctx, b, chatID, "Tap an item to remove one, or browse a category to add:", editKeyboard(order.Items, h.deps.Catalog))
		case tracker.ModeMoveTable:
			h.send(ctx, b, chatID, "Select the target table:", tableKeyboard(h.deps.Tables.All()))
		default:
			log.WarnContext(ctx, "Table selected in unexpected mode", "mode", st.Mode, "user_id", userID)
			h.send(ctx, b, chatID, h.deps.Config.Messages.GeneralError, mainMenuKeyboard())
		}
	}
}

func (h messageHandler) handleMoveTarget(ctx context.Context, b *bot.Bot, chatID, userID int64, source, target, actor string) {
	if err := h.deps.Tracker.MoveTable(source, target); err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}

	h.broadcast(ctx, notify.FormatTableMoved(source, target, actor))
	h.deps.Tracker.ClearDialogue(userID)
	h.send(ctx, b, chatID, "✅ Table moved.", mainMenuKeyboard())
}

// handleCheckoutTable ends a still-running game, renders the bill, and asks
// for confirmation. Nothing is deleted until the settle button is pressed.
func (h messageHandler) handleCheckoutTable(ctx context.Context, b *bot.Bot, chatID, userID int64, table string) {
	game, hasGame := h.deps.Tracker.Game(table)
	order, hasOrder := h.deps.Tracker.Order(table)
	if !hasGame && !hasOrder {
		h.deps.Tracker.ClearDialogue(userID)
		h.send(ctx, b, chatID, "There is nothing to settle on that table.", mainMenuKeyboard())
		return
	}

	if hasGame && !game.Ended() {
		ended, err := h.deps.Tracker.EndGame(table)
		if err != nil {
			h.sendError(ctx, b, chatID, err)
			return
		}
		game = ended
	}

	if err := h.deps.Tracker.SelectTable(userID, table); err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}

	bd, err := h.computeBill(game, hasGame, order.Items)
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}

	h.send(ctx, b, chatID, billText(table, bd), settleKeyboard())
}

func (h messageHandler) handleSettle(ctx context.Context, b *bot.Bot, chatID, userID int64, actor string) {
	st, ok := h.deps.Tracker.Dialogue(userID)
	if !ok || st.Mode != tracker.ModeCheckout || st.Table == "" {
		h.send(ctx, b, chatID, "Please start a checkout first.", mainMenuKeyboard())
		return
	}

	game, order := h.deps.Tracker.Settle(st.Table)

	var bd billing.Breakdown
	var err error
	var orderItems []string
	if order != nil {
		orderItems = order.Items
	}
	if game != nil {
		bd, err = h.computeBill(*game, true, orderItems)
	} else {
		bd, err = h.computeBill(tracker.Game{}, false, orderItems)
	}
	if err != nil {
		// The records are already gone; still announce the settlement.
		h.deps.Logger.ErrorContext(ctx, "Failed to compute settlement bill",
			"table", st.Table, "error", err)
	}

	h.broadcast(ctx, notify.FormatSettlement(st.Table, bd, actor))
	h.deps.Tracker.ClearDialogue(userID)
	h.send(ctx, b, chatID, "✅ Table settled.", mainMenuKeyboard())
}

func (h messageHandler) handleCount(ctx context.Context, b *bot.Bot, chatID, userID int64, n int, actor string) {
	st, ok := h.deps.Tracker.Dialogue(userID)
	if !ok || st.Table == "" {
		h.send(ctx, b, chatID, "Please choose an action first.", mainMenuKeyboard())
		return
	}

	switch st.Mode {
	case tracker.ModeGameStart:
		table, err := h.deps.Tracker.RecordPlayerCount(userID, n, actor)
		if err != nil {
			h.sendError(ctx, b, chatID, err)
			return
		}
		h.persistSession(ctx, userID, table, n)
		h.broadcast(ctx, notify.FormatGameStarted(table, n, time.Now(), actor))
		h.send(ctx, b, chatID, "✅ Game recorded.", mainMenuKeyboard())

	case tracker.ModePlayerAdd, tracker.ModePlayerRemove:
		delta, err := modeDelta(st.Mode, n)
		if err != nil {
			h.sendError(ctx, b, chatID, err)
			return
		}
		occupancy, err := h.deps.Tracker.AdjustPlayers(st.Table, delta, actor)
		if err != nil {
			h.sendError(ctx, b, chatID, err)
			return
		}
		h.broadcast(ctx, notify.FormatPlayersAdjusted(st.Table, delta, occupancy, actor))
		h.deps.Tracker.ClearDialogue(userID)
		h.send(ctx, b, chatID, "✅ Player count updated.", mainMenuKeyboard())

	default:
		h.send(ctx, b, chatID, "Please use the menu or press Back.", nil)
	}
}

// modeDelta converts a typed count into the signed adjustment for the mode.
// The count itself must be positive; the sign comes from the mode, never from
// the input, so a typed negative cannot invert the flow.
func modeDelta(mode tracker.Mode, n int) (int, error) {
	if n <= 0 {
		return 0, tracker.ErrInvalidInput
	}
	if mode == tracker.ModePlayerRemove {
		return -n, nil
	}
	return n, nil
}

func (h messageHandler) handleCategorySelection(ctx context.Context, b *bot.Bot, chatID, userID int64, key string) {
	if err := h.deps.Tracker.SelectCategory(userID, key); err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}

	items := h.deps.Catalog.Items(key)
	if len(items) == 0 {
		h.send(ctx, b, chatID, "No items in this category.", categoryKeyboard(h.deps.Catalog))
		return
	}
	h.send(ctx, b, chatID, h.deps.Config.Messages.ChooseItem, itemKeyboard(items))
}

// handleItemOrFallback resolves free text that is neither a control button
// nor a table, number, or category: an item being added, an item being
// removed from an order under edit, or noise.
func (h messageHandler) handleItemOrFallback(ctx context.Context, b *bot.Bot, chatID, userID int64, text, actor string) {
	st, ok := h.deps.Tracker.Dialogue(userID)

	// Browsing a category: try adding the item to the pending selection.
	if ok && st.Mode.OrderRelated() && st.CurrentCategory != "" {
		if err := h.deps.Tracker.SelectItem(userID, text); err != nil {
			h.sendError(ctx, b, chatID, err)
			return
		}
		h.send(ctx, b, chatID, "«"+text+"» added.", nil)
		h.sendOrderMenu(ctx, b, chatID, userID, st.Mode, st.Table)
		return
	}

	// Editing an order outside category browsing: item press removes one unit.
	if ok && st.Mode == tracker.ModeOrderEdit && st.Table != "" {
		remaining, err := h.deps.Tracker.EditOrder(st.Table, text, nil, actor)
		if err != nil {
			h.sendError(ctx, b, chatID, err)
			return
		}
		if len(remaining) == 0 {
			h.broadcast(ctx, notify.FormatOrderEdited(st.Table, nil, actor))
			h.deps.Tracker.ClearDialogue(userID)
			h.send(ctx, b, chatID, "Order is now empty and was removed.", mainMenuKeyboard())
			return
		}
		h.send(ctx, b, chatID, "«"+text+"» removed.", editKeyboard(remaining, h.deps.Catalog))
		return
	}

	h.send(ctx, b, chatID, "Please use the menu or press Back.", nil)
}

func (h messageHandler) handleSubmitOrder(ctx context.Context, b *bot.Bot, chatID, userID int64, actor string) {
	table, items, created, err := h.deps.Tracker.SubmitOrder(userID, actor)
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}

	h.persistOrder(ctx, userID, table, items)
	h.broadcast(ctx, notify.FormatOrderSubmitted(table, items, created, actor))
	h.send(ctx, b, chatID, "✅ Order sent.", mainMenuKeyboard())
}

// handleDoneEditing commits any pending additions gathered while browsing
// categories in edit mode.
func (h messageHandler) handleDoneEditing(ctx context.Context, b *bot.Bot, chatID, userID int64, actor string) {
	st, ok := h.deps.Tracker.Dialogue(userID)
	if !ok || st.Mode != tracker.ModeOrderEdit || st.Table == "" {
		h.send(ctx, b, chatID, "Please choose an action first.", mainMenuKeyboard())
		return
	}

	remaining, err := h.deps.Tracker.EditOrder(st.Table, "", st.PendingItems, actor)
	if err != nil {
		h.sendError(ctx, b, chatID, err)
		return
	}

	h.broadcast(ctx, notify.FormatOrderEdited(st.Table, remaining, actor))
	h.deps.Tracker.ClearDialogue(userID)
	h.send(ctx, b, chatID, "✅ Order updated.", mainMenuKeyboard())
}

// sendOrderMenu shows the menu appropriate to the order mode: the edit
// keyboard for edits, the category keyboard otherwise.
func (h messageHandler) sendOrderMenu(ctx context.Context, b *bot.Bot, chatID, userID int64, mode tracker.Mode, table string) {
	if mode == tracker.ModeOrderEdit {
		items := []string(nil)
		if order, ok := h.deps.Tracker.Order(table); ok {
			items = order.Items
		}
		h.send(ctx, b, chatID, "Tap an item to remove one, or browse a category to add:", editKeyboard(items, h.deps.Catalog))
		return
	}
	h.send(ctx, b, chatID, h.deps.Config.Messages.ChooseCategory, categoryKeyboard(h.deps.Catalog))
}

// computeBill calculates the settlement breakdown. Tables without a game are
// billed for their order only.
func (h messageHandler) computeBill(game tracker.Game, hasGame bool, orderItems []string) (billing.Breakdown, error) {
	var prices billing.PriceLookup = noPrices{}
	if h.deps.Catalog != nil {
		prices = h.deps.Catalog
	}

	params := billing.Params{
		GracePeriodMinutes:  h.deps.Config.Billing.GracePeriodMinutes,
		BlockMinutes:        h.deps.Config.Billing.BlockMinutes,
		HourlyRatePerPlayer: h.deps.Config.Billing.HourlyRatePerPlayer,
	}

	if hasGame {
		return billing.Calculate(game, orderItems, prices, params)
	}
	return billing.OrderOnly(orderItems, prices), nil
}

// noPrices is the price lookup used when the menu catalog failed to load.
type noPrices struct{}

func (noPrices) Price(string) (int64, bool) { return 0, false }

func billText(table string, bd billing.Breakdown) string {
	var sb strings.Builder
	sb.WriteString("🧾 Bill for " + table + "\n")
	if bd.ChargeableBlocks > 0 {
		sb.WriteString("⏱ " + strconv.Itoa(bd.DurationMinutes) + " min, " +
			strconv.Itoa(bd.ChargeableBlocks) + " block(s), " +
			strconv.Itoa(bd.TotalPlayers) + " player(s)\n")
		sb.WriteString("🎲 Game: " + strconv.FormatInt(bd.GameCost, 10) + "\n")
	}
	if bd.OrderCost > 0 || len(bd.Items) > 0 {
		sb.WriteString("🍽 Order: " + strconv.FormatInt(bd.OrderCost, 10) + "\n")
	}
	sb.WriteString("Σ Total: " + strconv.FormatInt(bd.TotalCost, 10) + "\nSettle the table?")
	return sb.String()
}

func (h messageHandler) persistSession(ctx context.Context, userID int64, table string, players int) {
	if h.deps.Store == nil {
		return
	}
	if err := h.deps.Store.SaveSession(ctx, userID, table, players); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to persist session",
			"table", table, "user_id", userID, "error", err)
	}
}

func (h messageHandler) persistOrder(ctx context.Context, userID int64, table string, items []string) {
	if h.deps.Store == nil {
		return
	}
	if err := h.deps.Store.SaveOrder(ctx, userID, table, items); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to persist order",
			"table", table, "user_id", userID, "error", err)
	}
}

// broadcast posts to the staff channel. Failures are logged by the notifier
// and never roll back the state change that triggered them.
func (h messageHandler) broadcast(ctx context.Context, text string) {
	if h.deps.Notifier == nil {
		return
	}
	_ = h.deps.Notifier.Broadcast(ctx, text)
}

func (h messageHandler) send(ctx context.Context, b *bot.Bot, chatID int64, text string, kb *models.ReplyKeyboardMarkup) {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send reply", "chat_id", chatID, "error", err)
	}
}

// sendError reports a domain error to the user in plain language. Dialogue
// state is left unchanged so the user can retry.
func (h messageHandler) sendError(ctx context.Context, b *bot.Bot, chatID int64, err error) {
	msg := h.deps.Config.Messages.GeneralError
	for _, known := range []error{
		tracker.ErrInvalidState, tracker.ErrTableLocked, tracker.ErrTargetOccupied,
		tracker.ErrInvalidInput, tracker.ErrInvalidAdjustment, tracker.ErrTableNotFound,
		tracker.ErrItemNotFound, tracker.ErrInvalidSelection, tracker.ErrEmptyOrder,
		tracker.ErrSameTable, tracker.ErrGameNotEnded,
	} {
		if errors.Is(err, known) {
			msg = "⚠️ " + upperFirst(known.Error()) + "."
			break
		}
	}
	h.send(ctx, b, chatID, msg, nil)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func actorName(from *models.User) string {
	if from.Username != "" {
		return "@" + from.Username
	}
	return from.FirstName
}
