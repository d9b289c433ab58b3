package announce

// Embed styling
const (
	EmbedTitle = "💎 Big Win! 💎"
	EmbedColor = 0x00BFFF
)

// Log messages
const (
	LogMsgAnnounced  = "Big win announced"
	LogMsgSendError  = "Failed to send big win announcement"
	LogMsgParseError = "Failed to parse big win payload"
)
