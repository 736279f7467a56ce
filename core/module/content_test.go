package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectContentKind(t *testing.T) {
	tests := []struct {
		content string
		want    ContentKind
	}{
		{content: "https://example.com/lesson", want: ContentURL},
		{content: "  http://example.com", want: ContentURL},
		{content: "<p>Cells</p>", want: ContentMarkup},
		{content: "a < b and c > d", want: ContentMarkup},
		{content: "Plain notes about cells", want: ContentText},
		{content: "", want: ContentText},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContentKind(tt.content))
		})
	}
}

func TestCleanExtractedMarkup(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{name: "empty paragraphs", markup: "<p>a</p><p> </p><P></p><p>b</p>", want: "<p>a</p><p>b</p>"},
		{name: "line break runs", markup: "a<br><br/><br />  <BR>b", want: "a<br><br>b"},
		{name: "two breaks kept", markup: "a<br><br>b", want: "a<br><br>b"},
		{name: "untouched", markup: "<h1>T</h1>", want: "<h1>T</h1>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanExtractedMarkup(tt.markup))
		})
	}
}

func TestExport(t *testing.T) {
	mod := Module{
		Title:       "Intro to  Biology",
		Description: "Cells",
		Content:     "<h1>Cells</h1><p>are <b>small</b></p>",
	}
	assert.Equal(t, "Intro_to_Biology.txt", ExportFilename(mod.Title))
	assert.Equal(t, "TITLE: Intro to  Biology\n\nDESCRIPTION: Cells\n\nCONTENT:\nCellsare small", ExportText(mod))
}

func TestTitleFromFilename(t *testing.T) {
	assert.Equal(t, "Cell Biology", TitleFromFilename("/tmp/uploads/Cell Biology.docx"))
	assert.Equal(t, "notes", TitleFromFilename("notes"))
}
