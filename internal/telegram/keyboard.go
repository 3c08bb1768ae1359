package telegram

import (
	"github.com/go-telegram/bot/models"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

// CallbackPayrollPrefix prefixes month buttons; the rest of the data is a YYYY-MM month.
const CallbackPayrollPrefix = "payroll_"

func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

func ButtonRow(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}

// MonthKeyboard offers the month before and after current, when the later one is not in the future.
func MonthKeyboard(current, now domain.Month) *models.InlineKeyboardMarkup {
	prev := shiftMonth(current, -1)
	row := ButtonRow(InlineButton("⬅️ "+prev.String(), CallbackPayrollPrefix+prev.String()))

	next := shiftMonth(current, 1)
	if !next.Start().After(now.Start()) {
		row = append(row, InlineButton(next.String()+" ➡️", CallbackPayrollPrefix+next.String()))
	}
	return InlineKeyboard(row)
}

func shiftMonth(m domain.Month, delta int) domain.Month {
	return domain.MonthOf(m.Start().AddDate(0, delta, 0))
}
