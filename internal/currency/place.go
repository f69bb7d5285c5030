package currency

import (
	"sort"
	"strings"
)

// place names (lower-case, English and Portuguese) mapped to the local currency
var placeCurrencies = map[string]Code{
	"france": EUR, "frança": EUR, "paris": EUR,
	"germany": EUR, "alemanha": EUR, "berlin": EUR, "berlim": EUR,
	"italy": EUR, "itália": EUR, "rome": EUR, "roma": EUR,
	"spain": EUR, "espanha": EUR, "madrid": EUR, "barcelona": EUR,
	"portugal": EUR, "lisbon": EUR, "lisboa": EUR,
	"netherlands": EUR, "holanda": EUR, "amsterdam": EUR,

	"united kingdom": GBP, "reino unido": GBP, "england": GBP,
	"inglaterra": GBP, "london": GBP, "londres": GBP,

	"switzerland": CHF, "suíça": CHF, "zurich": CHF,

	"united states": USD, "estados unidos": USD, "usa": USD,
	"ny": USD, "miami": USD, "orlando": USD,

	"canada": CAD, "canadá": CAD, "toronto": CAD, "vancouver": CAD,

	"chile": CLP, "santiago": CLP,
	"argentina": ARS, "buenos aires": ARS,
	"uruguay": UYU, "uruguai": UYU, "montevideo": UYU,
	"colombia": COP, "colômbia": COP,
	"peru": PEN, "lima": PEN,

	"japan": JPY, "japão": JPY, "tokyo": JPY,
	"australia": AUD, "austrália": AUD, "sydney": AUD,
}

// placeKeys is placeCurrencies' keys ordered longest first, then alphabetically,
// so the first hit is the deterministic winner.
var placeKeys = func() []string {
	keys := make([]string, 0, len(placeCurrencies))
	for k := range placeCurrencies {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := len([]rune(keys[i])), len([]rune(keys[j]))
		if li != lj {
			return li > lj
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// CurrencyForPlace guesses the currency of a free-text address by
// case-insensitive substring match. Among matching names the longest wins,
// ties broken alphabetically.
func CurrencyForPlace(text string) (Code, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return "", false
	}
	for _, key := range placeKeys {
		if strings.Contains(text, key) {
			return placeCurrencies[key], true
		}
	}
	return "", false
}
