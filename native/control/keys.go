package control

import (
	"fmt"
	"strings"
)

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func statKey(symbol string) []byte {
	return []byte(fmt.Sprintf("control/%s/stat", symbol))
}

func indexKey(symbol string) []byte {
	return []byte(fmt.Sprintf("control/%s/leaders", symbol))
}

func leaderKey(symbol, account string) []byte {
	return []byte(fmt.Sprintf("control/%s/leader/%s", symbol, account))
}

func voterKey(symbol, voter string) []byte {
	return []byte(fmt.Sprintf("control/%s/voter/%s", symbol, voter))
}
