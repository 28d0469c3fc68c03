package domain

import "strings"

type Spec struct {
	Key   string
	Value string
}

var bulletPrefixes = []string{"-", "*", "•", "·"}

// ParseCharacteristics splits a free-text block of "Key: Value" lines into
// ordered pairs. Lines without a colon, or with an empty side, are skipped.
func ParseCharacteristics(text string) []Spec {
	var specs []Spec
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		for _, bullet := range bulletPrefixes {
			if strings.HasPrefix(line, bullet) {
				line = strings.TrimSpace(strings.TrimPrefix(line, bullet))
				break
			}
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		specs = append(specs, Spec{Key: key, Value: value})
	}
	return specs
}
