package discord

import "strings"

const (
	messageLimit = 2000
	codeFence    = "```"
	// fenceReserve оставляет место под закрывающий и открывающий ``` при разрезании блока кода.
	fenceReserve = 2 * (len(codeFence) + 1)
)

// SplitMessage breaks the text into chunks that respect the given size limit.
// It prefers to split on newline boundaries so formatted blocks stay intact.
func SplitMessage(text string, limit int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(trimmed)
	if len(runes) <= limit {
		return []string{trimmed}
	}

	var parts []string
	for start := 0; start < len(runes); {
		end := start + limit
		if end >= len(runes) {
			chunk := strings.Trim(string(runes[start:]), "\n")
			if chunk != "" {
				parts = append(parts, chunk)
			}
			break
		}

		split := -1
		for i := end; i > start; i-- {
			if runes[i-1] == '\n' {
				split = i
				break
			}
		}
		if split == -1 {
			split = end
		}

		chunk := strings.Trim(string(runes[start:split]), "\n")
		if chunk != "" {
			parts = append(parts, chunk)
		}

		start = split
		for start < len(runes) && runes[start] == '\n' {
			start++
		}
	}

	if len(parts) == 0 {
		return []string{trimmed}
	}

	return parts
}

// SplitForDiscord режет текст под лимит сообщения Discord.
// Если разрез попадает внутрь блока кода, блок закрывается в одной части и открывается в следующей.
func SplitForDiscord(text string) []string {
	parts := SplitMessage(text, messageLimit-fenceReserve)
	open := false
	for i, part := range parts {
		if open {
			part = codeFence + "\n" + part
		}
		if strings.Count(part, codeFence)%2 == 1 {
			part += "\n" + codeFence
			open = true
		} else {
			open = false
		}
		parts[i] = part
	}
	return parts
}
