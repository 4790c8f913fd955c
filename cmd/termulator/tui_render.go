package main

import "strings"

func renderEntries(entries []entry, width int) string {
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	for _, e := range entries {
		if e.notice {
			renderWrappedLines(&b, e.output, width, noticeStyle.Render)
			continue
		}

		b.WriteString(renderPrompt(e.prompt))
		b.WriteString(commandStyle.Render(e.command))
		b.WriteString("\n")

		if e.pending {
			continue
		}
		if e.output == "" {
			continue
		}
		style := outputStyle.Render
		if e.code != 0 {
			style = failureStyle.Render
		}
		renderWrappedLines(&b, strings.TrimSuffix(e.output, "\n"), width, style)
	}

	if n := len(entries); n > 0 && entries[n-1].pending {
		b.WriteString(pendingStyle.Render("..."))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderPrompt colors a "user@host:dir$ " prompt and leaves anything else as is
func renderPrompt(prompt string) string {
	idx := strings.LastIndex(prompt, ":")
	if idx == -1 {
		return prompt
	}
	who, rest := prompt[:idx], prompt[idx+1:]
	dir := strings.TrimSuffix(rest, "$ ")
	if dir == rest {
		return prompt
	}
	return userStyle.Render(who) + ":" + dirStyle.Render(dir) + "$ "
}

func renderWrappedLines(b *strings.Builder, content string, width int, style func(...string) string) {
	for _, line := range strings.Split(content, "\n") {
		for _, part := range wrapText(line, width) {
			b.WriteString(style(part))
			b.WriteString("\n")
		}
	}
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	text = strings.ReplaceAll(text, "\t", "    ")
	var lines []string
	var line []rune
	for _, r := range text {
		line = append(line, r)
		if len(line) >= width {
			lines = append(lines, string(line))
			line = line[:0]
		}
	}
	if len(line) > 0 || len(lines) == 0 {
		lines = append(lines, string(line))
	}
	return lines
}
