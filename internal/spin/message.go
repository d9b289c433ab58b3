package spin

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/osse101/reelfaucet/internal/domain"
)

var printer = message.NewPrinter(language.English)

// formatMessage renders the settled-spin line shown under the reels
func formatMessage(result domain.SpinResult, bet int64) string {
	switch {
	case result.IsBigWin:
		return printer.Sprintf("💎 BIG WIN! 💎 The pool paid out %d credits!", result.WinAmount)
	case result.WinAmount == 0:
		return printer.Sprintf("No win this time. You wagered %d credits.", bet)
	case result.WinAmount == bet:
		return printer.Sprintf("Stake returned: %d credits.", result.WinAmount)
	case result.WinAmount < bet:
		return printer.Sprintf("You won %d credits (net %d).", result.WinAmount, result.WinAmount-bet)
	default:
		return printer.Sprintf("🎉 You won %d credits (net +%d)!", result.WinAmount, result.WinAmount-bet)
	}
}
