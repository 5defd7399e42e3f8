package telegram

import (
	"fmt"
	"strconv"

	"deficit/internal/domain"
)

func formatFloat(v *float64, unit string) string {
	if v == nil {
		return "skipped"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + " " + unit
}

func formatCalories(v *int) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%d kcal", *v)
}

func formatSaved(m *domain.Measurement, calories int) string {
	return fmt.Sprintf(
		"✅ Data saved!\n\n"+
			"📅 Date: %s\n"+
			"• Weight: %s\n"+
			"• Waist: %s\n"+
			"• Neck: %s\n"+
			"• Calories: %d kcal (logged for %s)\n\n"+
			"Use /graph to see your progress.",
		domain.DisplayDay(m.Date),
		formatFloat(m.Weight, "kg"),
		formatFloat(m.Waist, "cm"),
		formatFloat(m.Neck, "cm"),
		calories,
		domain.DisplayDay(m.Date.AddDate(0, 0, -1)),
	)
}

func formatDeleted(m *domain.Measurement) string {
	return fmt.Sprintf(
		"🗑️ Record for %s deleted.\n\n"+
			"It had:\n"+
			"• Weight: %s\n"+
			"• Waist: %s\n"+
			"• Neck: %s\n"+
			"• Calories: %s",
		domain.DisplayDay(m.Date),
		formatFloat(m.Weight, "kg"),
		formatFloat(m.Waist, "cm"),
		formatFloat(m.Neck, "cm"),
		formatCalories(m.Calories),
	)
}

const welcomeText = "👋 Hi! I track body measurements and calories.\n\n" +
	"Use the buttons below:\n\n" +
	"📊 Add data — record weight, waist, neck, calories\n" +
	"📈 Graph — progress over a period\n" +
	"📅 Start date — when tracking began\n" +
	"🗑️ Delete entry — remove a day's record\n\n" +
	"💡 Tips:\n" +
	"• Pick the date first, then enter the numbers\n" +
	"• Waist and neck can be skipped (0, -, skip)\n" +
	"• Entries can be added for the last 7 days\n\n" +
	"⏰ Once a day I'll remind you to log your data."
