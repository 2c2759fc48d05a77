package modeladapter

// charsPerToken is the rough number of characters of English text per token.
const charsPerToken = 4

// EstimateTokens estimates the token count of text using the
// 1-token-per-4-characters heuristic, rounding up. It is informational only;
// token limits are enforced by the server.
func EstimateTokens(text string) int {
	return (len(text) + charsPerToken - 1) / charsPerToken
}
