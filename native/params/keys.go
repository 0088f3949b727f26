package params

import "strings"

// ParamsKeyCommunityPrefix prefixes the JSON parameter blob of each community.
const ParamsKeyCommunityPrefix = "community/"

func communityKey(symbol string) string {
	return ParamsKeyCommunityPrefix + strings.ToUpper(strings.TrimSpace(symbol))
}
