package log

import (
	"fmt"
	"strings"
)

type token struct {
	key, value string
	inside     rune // the opening bracket of a list value, 0 otherwise
}

// tokenize splits a `key=value,key=[v1,v2]` configuration line.
func tokenize(line string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(line); {
		eq := strings.IndexByte(line[i:], '=')
		if eq < 0 {
			return nil, fmt.Errorf("key `%s` with no value", line[i:])
		}
		key := line[i : i+eq]
		i += eq + 1
		if i >= len(line) || line[i] == ',' {
			return nil, fmt.Errorf("key `%s=` with no value", key)
		}

		t := token{key: key}
		if line[i] == '[' {
			end := strings.IndexByte(line[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("list value of key `%s` is not closed", key)
			}
			t.value, t.inside = line[i+1:i+end], '['
			i += end + 1
		} else {
			end := strings.IndexByte(line[i:], ',')
			if end < 0 {
				end = len(line) - i
			}
			t.value = line[i : i+end]
			i += end
		}
		tokens = append(tokens, t)

		if i < len(line) {
			if line[i] != ',' {
				return nil, fmt.Errorf("expected ',' after the value of key `%s`", key)
			}
			i++
		}
	}
	return tokens, nil
}
