package terminal

// Tokenize splits a command line into arguments.
//
// Single and double quotes share one toggle: either character flips the
// quoted state and is dropped, so `'` may close a run opened by `"`. Only
// the space character separates tokens, and empty tokens are never emitted.
// An unterminated quote is not an error.
func Tokenize(line string) []string {
	tokens := []string{}
	token := make([]byte, 0, len(line))
	quoted := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' || c == '\'':
			quoted = !quoted
		case c == ' ' && !quoted:
			if len(token) > 0 {
				tokens = append(tokens, string(token))
				token = token[:0]
			}
		default:
			token = append(token, c)
		}
	}

	if len(token) > 0 {
		tokens = append(tokens, string(token))
	}

	return tokens
}
