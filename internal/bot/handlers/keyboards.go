package handlers

import (
	"github.com/go-telegram/bot/models"

	"github.com/dicelounge/loungebot/internal/menu"
)

// Button labels. These literal strings are both what the keyboards show and
// what the message handler matches against.
const (
	btnStartGame     = "🎲 Start game"
	btnEndGame       = "🏁 End game"
	btnNewOrder      = "☕ New order"
	btnAddToOrder    = "➕ Add to order"
	btnEditOrder     = "✏️ Edit order"
	btnAddPlayers    = "👥 Add players"
	btnRemovePlayers = "👋 Remove players"
	btnMoveTable     = "🔀 Move table"
	btnCheckout      = "💰 Checkout"

	btnBack        = "⬅️ Back"
	btnSubmitOrder = "✅ Submit order"
	btnDoneEditing = "✅ Done"
	btnSettle      = "✅ Settle"
	btnCancel      = "❌ Cancel"
)

func replyKeyboard(rows [][]string) *models.ReplyKeyboardMarkup {
	buttons := make([][]models.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		line := make([]models.KeyboardButton, 0, len(row))
		for _, label := range row {
			line = append(line, models.KeyboardButton{Text: label})
		}
		buttons = append(buttons, line)
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:       buttons,
		ResizeKeyboard: true,
	}
}

// mainMenuKeyboard is the idle-state action menu.
func mainMenuKeyboard() *models.ReplyKeyboardMarkup {
	return replyKeyboard([][]string{
		{btnStartGame, btnEndGame},
		{btnNewOrder, btnAddToOrder},
		{btnEditOrder},
		{btnAddPlayers, btnRemovePlayers},
		{btnMoveTable, btnCheckout},
	})
}

// tableKeyboard lists every table, two per row, plus Back.
func tableKeyboard(labels []string) *models.ReplyKeyboardMarkup {
	rows := make([][]string, 0, len(labels)/2+2)
	for i := 0; i < len(labels); i += 2 {
		if i+1 < len(labels) {
			rows = append(rows, []string{labels[i], labels[i+1]})
		} else {
			rows = append(rows, []string{labels[i]})
		}
	}
	rows = append(rows, []string{btnBack})
	return replyKeyboard(rows)
}

// categoryKeyboard lists the menu categories with submit and back controls.
func categoryKeyboard(catalog *menu.Catalog) *models.ReplyKeyboardMarkup {
	rows := make([][]string, 0)
	for _, label := range catalog.CategoryLabels() {
		rows = append(rows, []string{label})
	}
	rows = append(rows, []string{btnSubmitOrder})
	rows = append(rows, []string{btnBack})
	return replyKeyboard(rows)
}

// itemKeyboard lists the items of one category.
func itemKeyboard(items []menu.Item) *models.ReplyKeyboardMarkup {
	rows := make([][]string, 0, len(items)+1)
	for _, item := range items {
		rows = append(rows, []string{item.Name})
	}
	rows = append(rows, []string{btnBack})
	return replyKeyboard(rows)
}

// editKeyboard lists the order's current items (press to remove one unit),
// the categories (press to browse and add), and a done control.
func editKeyboard(items []string, catalog *menu.Catalog) *models.ReplyKeyboardMarkup {
	rows := make([][]string, 0)
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			rows = append(rows, []string{item})
		}
	}
	if catalog != nil {
		for _, label := range catalog.CategoryLabels() {
			rows = append(rows, []string{label})
		}
	}
	rows = append(rows, []string{btnDoneEditing})
	rows = append(rows, []string{btnBack})
	return replyKeyboard(rows)
}

// countKeyboard is shown while waiting for a typed number.
func countKeyboard() *models.ReplyKeyboardMarkup {
	return replyKeyboard([][]string{{btnBack}})
}

// settleKeyboard asks for checkout confirmation.
func settleKeyboard() *models.ReplyKeyboardMarkup {
	return replyKeyboard([][]string{{btnSettle, btnCancel}})
}
