package parser

import "nickandperla.net/pbg/internal/pnode"

// stringTracker advances a string-context flag one byte at a time. A quote
// toggles the in-string flag iff it is preceded by an even number of
// backslashes, so an escaped backslash immediately before a closing quote
// (e.g. \\') does not falsely keep the tracker inside the string.
type stringTracker struct {
	inString     bool
	backslashRun int
}

// advance processes byte b and returns whether the scanner is inside a
// string literal after processing it.
func (s *stringTracker) advance(b byte) bool {
	if b == '\'' && s.backslashRun%2 == 0 {
		s.inString = !s.inString
	}
	if b == '\\' {
		s.backslashRun++
	} else {
		s.backslashRun = 0
	}
	return s.inString
}

// scanFields performs a single left-to-right walk over src producing field
// start offsets, field lengths, and closing-paren offsets, plus a count of
// KEY fields (the dynamic arena size). Closes a final unterminated field at
// end-of-input, needed for the grammar's bare "literal" alternative
// (expr := literal | '(' op ... ')'), which otherwise never records a
// field length unless a trailing ',' or ')' is seen.
func scanFields(src []byte) (fields, lengths, closings []int, numKeys int, err error) {
	n := len(src)
	if n == 0 {
		return nil, nil, nil, 0, pnode.NewSyntaxError(0, "empty expression")
	}

	var numCommas, numClosings int
	var counter stringTracker
	for i := 0; i < n; i++ {
		if counter.advance(src[i]) {
			continue
		}
		switch src[i] {
		case ',':
			numCommas++
		case '[':
			numKeys++
		case ')':
			numClosings++
		}
	}

	numFields := numCommas + 1
	fields = make([]int, numFields+1)
	lengths = make([]int, numFields)
	closings = make([]int, 0, numClosings)

	start := 0
	if src[0] == '(' {
		start = 1
	}
	fields[0] = start

	var tracker stringTracker
	f, open := 0, true
	for i := start; i < n; i++ {
		if tracker.advance(src[i]) {
			continue
		}

		if src[i] == ')' {
			closings = append(closings, i)
		}

		if open && (src[i] == ')' || src[i] == ',') {
			if f >= numFields {
				return nil, nil, nil, 0, pnode.NewSyntaxError(i, "malformed expression: too many fields")
			}
			lengths[f] = i - fields[f]
			f++
			open = false
		}

		nextIsOpenParen := i+1 < n && src[i+1] == '('
		if !open && (src[i] == '(' || (src[i] == ',' && !nextIsOpenParen)) {
			fields[f] = i + 1
			open = true
		}
	}

	if open {
		if start == 0 {
			// Bare literal expression: the single field runs to EOF.
			lengths[f] = n - fields[f]
			f++
		} else {
			return nil, nil, nil, 0, pnode.NewSyntaxError(n, "unterminated expression: missing closing parenthesis")
		}
	}

	if f != numFields {
		return nil, nil, nil, 0, pnode.NewSyntaxError(n, "malformed expression: expected %d fields, found %d", numFields, f)
	}

	fields[numFields] = -1
	return fields, lengths, closings, numKeys, nil
}
