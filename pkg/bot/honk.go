package bot

import "strings"

// honks transforms text goose-wise: whitespace tokens made entirely of a
// uniform-case x survive, each x becomes honk (or HONK for X), and the
// surviving tokens join with single spaces. Mixed-case tokens like "xX" do
// not qualify. An empty result means no reply.
func honks(text string) string {
	var replies []string
	for _, token := range strings.Fields(text) {
		reply, ok := honkToken(token)
		if !ok {
			continue
		}
		replies = append(replies, reply)
	}

	return strings.Join(replies, " ")
}

func honkToken(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	allLower := true
	allUpper := true
	for _, r := range token {
		if r != 'x' {
			allLower = false
		}
		if r != 'X' {
			allUpper = false
		}
		if !allLower && !allUpper {
			return "", false
		}
	}

	if allLower {
		return strings.Repeat("honk", len(token)), true
	}

	return strings.Repeat("HONK", len(token)), true
}
