package formatter

import (
	"github.com/alexanderramin/taskpilot/internal/chat"
)

const argsPreviewWidth = 60

// FormatChatEvent renders one orchestrator event as a terminal line. Replies
// are printed by the caller and render empty here.
func FormatChatEvent(e chat.Event) string {
	switch e.Type {
	case chat.EventToolCall:
		return StylePurple.Render("→ "+e.Tool) + " " + Dim(Truncate(e.Arguments, argsPreviewWidth))
	case chat.EventToolResult:
		if e.Error != "" {
			return StyleRed.Render("✖ "+e.Tool) + " " + Dim(e.Error)
		}
		return StyleGreen.Render("✔ " + e.Tool)
	case chat.EventError:
		return StyleRed.Render("error: " + e.Error)
	default:
		return ""
	}
}
