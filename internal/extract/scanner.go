package extract

// scanObject locates the first syntactically balanced {...} object starting
// at or after offset. Braces inside double-quoted strings are ignored, with
// backslash escapes honored so `"a \" {"` does not end the string early.
// Returns the start and one-past-end indexes of the span.
//
// An unterminated string swallows the rest of the text, so a candidate whose
// quoting never closes is reported as not found.
func scanObject(text string, offset int) (start, end int, ok bool) {
	depth := 0
	start = -1
	inString := false
	escaped := false

	for i := offset; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				// Stray closing brace before any object opened.
				continue
			}
			depth--
			if depth == 0 && start != -1 {
				return start, i + 1, true
			}
		}
	}

	return 0, 0, false
}

// FirstObject returns the substring of the first balanced {...} object in
// text, or false if none is found.
func FirstObject(text string) (string, bool) {
	start, end, ok := scanObject(text, 0)
	if !ok {
		return "", false
	}
	return text[start:end], true
}
