package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// Conversations
	"chat.default_title": "New Chat",
	"chat.welcome":       "✨ New chat started. How can I help?",
	"chat.you":           "You",
	"chat.bot":           "LenAI",

	// UI - Panels
	"sidebar.conversations": "Conversations",
	"sidebar.keys":          "Keys",
	"input.placeholder":     "Type a message or /help",
	"help.shortcuts":        "enter send • ctrl+n new • ctrl+t theme • tab list • ctrl+c quit",

	// UI - Status bar
	"status.ready":    "Ready",
	"status.thinking": "thinking",
	"status.tokens":   "~%d tokens",
	"status.theme":    "theme %s",

	// Turn flow
	"warn.no_credentials": "Configure at least one API key first: /key <provider> <token>",
	"warn.busy":           "Still answering the previous message.",
	"image.pending":       "🎨 Calling the image AI…\nGenerating: %s",
	"image.ready":         "🖼️ Here it is:",
	"image.failed":        "❌ Could not generate the image.",
	"error.reply":         "❌ Error: %s",

	// Confirmations
	"confirm.delete": "Delete conversation %q? (y/n)",
	"confirm.clear":  "Delete ALL conversations? (y/n)",
	"confirm.cancel": "Cancelled.",

	// Slash commands
	"cmd.help": `Commands:
  /new                 start a new conversation
  /list                list conversations (newest first)
  /open <n>            open conversation n
  /rename <title>      rename the active conversation
  /delete [n]          delete conversation n (default: active)
  /clear               delete every conversation
  /keys                show configured keys
  /key <slot> <token>  set a key (openai|gemini|claude)
  /theme               toggle dark/light theme
  /help                show this help
  /quit                exit`,
	"cmd.unknown":       "Unknown command: /%s (try /help)",
	"cmd.usage.open":    "Usage: /open <n>",
	"cmd.usage.rename":  "Usage: /rename <title>",
	"cmd.usage.key":     "Usage: /key <openai|gemini|claude> <token>",
	"cmd.bad_index":     "No conversation %s.",
	"cmd.created":       "New conversation started.",
	"cmd.opened":        "Opened %q.",
	"cmd.renamed":       "Renamed to %q.",
	"cmd.deleted":       "Conversation deleted.",
	"cmd.cleared":       "All conversations cleared.",
	"cmd.key_saved":     "Key saved for %s.",
	"cmd.key_cleared":   "Key removed for %s.",
	"cmd.theme_changed": "Theme: %s",
	"cmd.keys_header":   "Provider keys:",

	// REPL
	"repl.banner": "LenAI (plain mode). Type /help for commands, /quit to exit.",
	"repl.bye":    "Bye.",
}
