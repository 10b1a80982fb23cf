// ABOUTME: Glyphs for plan reports and the wizard, with a plain Unicode fallback
// ABOUTME: Nerd Font glyphs are used only when the terminal is known to have them

package icons

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

// NerdFontsEnv forces Nerd Font glyphs on or off
const NerdFontsEnv = "PYPI_CAPACITY_NERD_FONTS"

// terminals that ship with, or are usually configured with, a patched font
var nerdFontTerminals = []string{"iterm.app", "alacritty", "wezterm", "kitty", "ghostty"}

var nerdFonts = sync.OnceValue(detectNerdFonts)

func detectNerdFonts() bool {
	if v := os.Getenv(NerdFontsEnv); v != "" {
		on, err := strconv.ParseBool(v)
		return err == nil && on
	}

	term := strings.ToLower(os.Getenv("TERM_PROGRAM") + " " + os.Getenv("TERM"))
	for _, t := range nerdFontTerminals {
		if strings.Contains(term, t) {
			return true
		}
	}
	return os.Getenv("NERD_FONTS") == "1"
}

// Icon is a glyph pair; String picks one for the current terminal
type Icon struct {
	NerdFont string
	Fallback string
}

func (i Icon) String() string {
	if nerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	Memory = Icon{"󰍛", "◆"}
	CPU    = Icon{"", "●"}
	Server = Icon{"󰒋", "▣"}

	CheckOK  = Icon{"", "✓"}
	Critical = Icon{"", "✗"}

	Wizard = Icon{"󰂓", "★"}
)
