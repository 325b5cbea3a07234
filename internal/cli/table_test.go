package cli

import (
	"strings"
	"testing"

	"github.com/jmylchreest/imagekmeans/internal/colour"
)

func TestTableAddRow(t *testing.T) {
	table := NewTable([]string{"K", "WCSS"})

	table.AddRow([]string{"1", "10"})
	table.AddRow([]string{"2"})
	table.AddRow([]string{"3", "5", "extra"})

	if len(table.rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(table.rows))
	}
	for i, row := range table.rows {
		if len(row) != 2 {
			t.Errorf("row %d has %d columns, want 2", i, len(row))
		}
	}
	if table.rows[1][1] != "" {
		t.Errorf("Expected empty string for padded column, got %q", table.rows[1][1])
	}
}

func TestTableRender(t *testing.T) {
	table := NewTable([]string{"K", "WCSS"})
	table.AlignRight(1)
	table.AddRow([]string{"1", "100.5"})
	table.AddRow([]string{"2", "3"})

	want := "K   WCSS\n" +
		"-  -----\n" +
		"1  100.5\n" +
		"2      3\n"
	if got := table.Render(); got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestTableRenderEmpty(t *testing.T) {
	if got := NewTable(nil).Render(); got != "" {
		t.Errorf("Expected empty string for empty table, got: %q", got)
	}
}

func TestTableRenderNoRows(t *testing.T) {
	got := NewTable([]string{"Hex", "RGB"}).Render()
	if got != "Hex  RGB\n---  ---\n" {
		t.Errorf("Render() = %q", got)
	}
}

func TestTableIgnoresANSIWidth(t *testing.T) {
	swatch := colour.ColourPreview(colour.RGB{R: 255}, 4)

	table := NewTable([]string{"Preview", "Hex"})
	table.AddRow([]string{swatch, "#ff0000"})
	table.AddRow([]string{"none", "#000000"})

	lines := strings.Split(table.Render(), "\n")
	if len(lines) < 4 {
		t.Fatalf("Expected at least 4 lines, got %d", len(lines))
	}
	if visibleLen(lines[2]) != visibleLen(lines[3]) {
		t.Errorf("rows not aligned: %q vs %q", lines[2], lines[3])
	}
	if visibleLen(lines[2]) != len("Preview  #ff0000") {
		t.Errorf("visible row width = %d, want %d", visibleLen(lines[2]), len("Preview  #ff0000"))
	}
}

func TestVisibleLen(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"plain", 5},
		{"\x1b[48;2;1;2;3m    \x1b[0m", 4},
		{"★ ☆", 3},
		{"", 0},
	}

	for _, tt := range tests {
		if got := visibleLen(tt.input); got != tt.want {
			t.Errorf("visibleLen(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestPadding(t *testing.T) {
	tests := []struct {
		input string
		width int
		right string
		left  string
	}{
		{"test", 10, "test      ", "      test"},
		{"hello", 5, "hello", "hello"},
		{"world", 3, "world", "world"},
		{"", 3, "   ", "   "},
	}

	for _, tt := range tests {
		if got := padRight(tt.input, tt.width); got != tt.right {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.right)
		}
		if got := padLeft(tt.input, tt.width); got != tt.left {
			t.Errorf("padLeft(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.left)
		}
	}
}
