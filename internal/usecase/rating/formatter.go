package rating

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"reaction-rating-bot/internal/domain"
)

const codeFence = "```"

var tableHeader = []string{"name", "avg", "std", "total_posts"}

// FormatReport формирует текст отчёта: заголовок и таблицу в блоке кода.
func FormatReport(r domain.Report) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Average Scores (last %d messages)\n", r.Messages()))
	b.WriteString(codeFence + "\n")
	b.WriteString(FormatTable(r.Rows))
	b.WriteString(codeFence + "\n")
	return b.String()
}

// FormatTable рисует markdown-таблицу с выравниванием по ширине отображения.
func FormatTable(rows []domain.RatingEntity) string {
	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, tableHeader)
	for _, row := range rows {
		cells = append(cells, []string{
			sanitizeCell(row.Name),
			formatFloat(row.Avg),
			formatFloat(row.Std),
			strconv.Itoa(row.TotalPosts),
		})
	}

	widths := make([]int, len(tableHeader))
	for _, line := range cells {
		for i, cell := range line {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow(&b, cells[0], widths)
	b.WriteString("|")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("|")
	}
	b.WriteString("\n")
	for _, line := range cells[1:] {
		writeRow(&b, line, widths)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	b.WriteString("|")
	for i, cell := range cells {
		b.WriteString(" ")
		b.WriteString(runewidth.FillRight(cell, widths[i]))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// sanitizeCell не даёт имени автора сломать таблицу или блок кода.
func sanitizeCell(s string) string {
	s = strings.NewReplacer("\n", " ", "\r", " ", "`", "'", "|", "/").Replace(s)
	return strings.TrimSpace(s)
}
