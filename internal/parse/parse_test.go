// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/statute-engine/pkg/types"
)

func TestChapterNumberDecoding(t *testing.T) {
	tests := []struct {
		name string
		line string
		want types.ChapterNumber
	}{
		{"roman one", "Chương I", types.ChapterNumber{Value: 1}},
		{"roman four", "Chương IV", types.ChapterNumber{Value: 4}},
		{"roman fifteen", "Chương XV", types.ChapterNumber{Value: 15}},
		{"lower-case heading", "chương ii", types.ChapterNumber{Value: 2}},
		{"mixed-case numeral", "Chương Xii", types.ChapterNumber{Value: 12}},
		{"outside table", "Chương XVI", types.ChapterNumber{Raw: "XVI"}},
		{"outside table keeps casing", "chương xvi", types.ChapterNumber{Raw: "xvi"}},
		{"trailing text", "Chương III QUY ĐỊNH", types.ChapterNumber{Value: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse([]string{tt.line})
			if len(doc.Structure) != 1 {
				t.Fatalf("got %d chapters, want 1", len(doc.Structure))
			}
			if got := doc.Structure[0].Number; got != tt.want {
				t.Errorf("number = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestNonHeadingLinesOpenNoChapter(t *testing.T) {
	for _, line := range []string{"Chuong I", "Chương", "Chương 1", "ChươngI"} {
		doc := Parse([]string{line})
		if len(doc.Structure) != 0 {
			t.Errorf("%q opened a chapter", line)
		}
	}
}

func TestChapterCountAndOrder(t *testing.T) {
	doc := Parse([]string{
		"Chương I",
		"Điều 1. Một",
		"Chương II",
		"Chương III",
		"Điều 2. Hai",
	})
	if len(doc.Structure) != 3 {
		t.Fatalf("got %d chapters, want 3", len(doc.Structure))
	}
	for i, want := range []int{1, 2, 3} {
		if got := doc.Structure[i].Number.Value; got != want {
			t.Errorf("chapter %d number = %d, want %d", i, got, want)
		}
	}
	if n := len(doc.Structure[0].Articles); n != 1 {
		t.Errorf("chapter I has %d articles, want 1", n)
	}
	if n := len(doc.Structure[2].Articles); n != 1 {
		t.Errorf("chapter III has %d articles, want 1", n)
	}
}

func TestChapterTitleAdoption(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			"short all-caps line adopted",
			[]string{"Chương I", "NHỮNG QUY ĐỊNH CHUNG"},
			"NHỮNG QUY ĐỊNH CHUNG",
		},
		{
			"lower-case line not adopted",
			[]string{"Chương I", "Những quy định chung"},
			"",
		},
		{
			"long all-caps line not adopted",
			[]string{"Chương I", strings.Repeat("A", 120)},
			"",
		},
		{
			"first qualifying line wins",
			[]string{"Chương I", "TIÊU ĐỀ MỘT", "TIÊU ĐỀ HAI"},
			"TIÊU ĐỀ MỘT",
		},
		{
			"clause-like all-caps line becomes the title",
			[]string{"Chương I", "1. PHẠM VI"},
			"1. PHẠM VI",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(tt.lines)
			if got := doc.Structure[0].Title; got != tt.want {
				t.Errorf("title = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitleResetsPerChapter(t *testing.T) {
	doc := Parse([]string{
		"Chương I",
		"PHẦN MỘT",
		"Chương II",
		"PHẦN HAI",
	})
	if got := doc.Structure[0].Title; got != "PHẦN MỘT" {
		t.Errorf("first title = %q", got)
	}
	if got := doc.Structure[1].Title; got != "PHẦN HAI" {
		t.Errorf("second title = %q", got)
	}
}

func TestArticleHeadings(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantNum   int
		wantTitle string
	}{
		{"with description", "Điều 3. Tính chất", 3, "Điều 3. Tính chất"},
		{"without description", "Điều 12.", 12, "Điều 12."},
		{"leading zero re-rendered", "Điều 07. Phạm vi", 7, "Điều 7. Phạm vi"},
		{"spacing collapsed in marker", "Điều  9.  Giải thích", 9, "Điều 9. Giải thích"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse([]string{"Chương I", tt.line})
			arts := doc.Structure[0].Articles
			if len(arts) != 1 {
				t.Fatalf("got %d articles, want 1", len(arts))
			}
			if arts[0].Number != tt.wantNum {
				t.Errorf("number = %d, want %d", arts[0].Number, tt.wantNum)
			}
			if arts[0].Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", arts[0].Title, tt.wantTitle)
			}
		})
	}
}

func TestArticleMarkerIsCaseSensitive(t *testing.T) {
	doc := Parse([]string{"Chương I", "điều 5. Thi hành"})
	if n := len(doc.Structure[0].Articles); n != 0 {
		t.Errorf("lower-case marker opened %d articles, want 0", n)
	}
}

func TestArticleText(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			"paragraphs join with newline",
			[]string{"Chương I", "Điều 1. A", "đoạn một", "đoạn hai"},
			"đoạn một\nđoạn hai",
		},
		{
			"blank lines ignored",
			[]string{"Chương I", "Điều 1. A", "đoạn một", "", "đoạn hai"},
			"đoạn một\nđoạn hai",
		},
		{
			"no content leaves text empty",
			[]string{"Chương I", "Điều 1. A"},
			"",
		},
		{
			"text frozen once a clause exists",
			[]string{"Chương I", "Điều 1. A", "mở đầu", "1. khoản", "2. nữa"},
			"mở đầu",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(tt.lines)
			art := doc.Structure[0].Articles[0]
			if art.Text != tt.want {
				t.Errorf("text = %q, want %q", art.Text, tt.want)
			}
		})
	}
}

func TestClauses(t *testing.T) {
	doc := Parse([]string{
		"Chương I",
		"Điều 2. Đối tượng",
		"1. Cơ quan nhà nước.",
		"tiếp nối dòng trên.",
		"",
		"vẫn tiếp nối.",
		"2. Tổ chức khác.",
	})
	art := doc.Structure[0].Articles[0]
	if art.Text != "" {
		t.Errorf("text = %q, want empty", art.Text)
	}
	if len(art.Clauses) != 2 {
		t.Fatalf("got %d clauses, want 2", len(art.Clauses))
	}
	if got := art.Clauses[0].Text; got != "Cơ quan nhà nước. tiếp nối dòng trên. vẫn tiếp nối." {
		t.Errorf("clause 1 text = %q", got)
	}
	if art.Clauses[1].Number != 2 || art.Clauses[1].Text != "Tổ chức khác." {
		t.Errorf("clause 2 = %d %q", art.Clauses[1].Number, art.Clauses[1].Text)
	}
}

func TestClauseLineOutsideArticleDropped(t *testing.T) {
	doc := Parse([]string{
		"Chương I",
		"TIÊU ĐỀ",
		"1. dòng lạc",
		"Điều 1. A",
	})
	art := doc.Structure[0].Articles[0]
	if len(art.Clauses) != 0 || art.Text != "" {
		t.Errorf("stray clause line leaked into article: text=%q clauses=%d", art.Text, len(art.Clauses))
	}
}

func TestArticleBeforeAnyChapterDiscarded(t *testing.T) {
	doc := Parse([]string{
		"Điều 1. Lạc lõng",
		"1. khoản lạc",
		"Chương I",
		"Điều 2. Có nhà",
	})
	if len(doc.Structure) != 1 {
		t.Fatalf("got %d chapters, want 1", len(doc.Structure))
	}
	arts := doc.Structure[0].Articles
	if len(arts) != 1 || arts[0].Number != 2 {
		t.Fatalf("surviving articles = %+v, want only number 2", arts)
	}
}

func TestNextEmitsUnitsLineByLine(t *testing.T) {
	st := State{}
	var units []Unit

	st, units = Next(st, "Chương I")
	if len(units) != 1 || units[0].Kind != UnitChapter {
		t.Fatalf("chapter line emitted %+v", units)
	}

	st, units = Next(st, "GIÁO DỤC")
	if len(units) != 1 || units[0].Kind != UnitTitle || units[0].Title != "GIÁO DỤC" {
		t.Fatalf("title line emitted %+v", units)
	}

	st, units = Next(st, "Điều 1. Mở đầu")
	if len(units) != 0 {
		t.Fatalf("pending article emitted %+v", units)
	}

	st, units = Next(st, "Chương II")
	if len(units) != 2 || units[0].Kind != UnitArticle || units[1].Kind != UnitChapter {
		t.Fatalf("chapter transition emitted %+v", units)
	}
	if units[0].Article.Number != 1 {
		t.Errorf("flushed article number = %d, want 1", units[0].Article.Number)
	}

	st, units = Next(st, "Điều 2. Kết")
	if len(units) != 0 {
		t.Fatalf("pending article emitted %+v", units)
	}

	_, units = Flush(st)
	if len(units) != 1 || units[0].Kind != UnitArticle || units[0].Article.Number != 2 {
		t.Fatalf("final flush emitted %+v", units)
	}
}

func TestParseEndToEnd(t *testing.T) {
	doc := Parse([]string{
		"Chương I",
		"GIÁO DỤC",
		"Điều 3. Tính chất",
		"Mục tiêu giáo dục.",
		"1. Phát triển con người.",
		"tiếp tục câu.",
	})
	want := &types.Document{
		Structure: []*types.Chapter{{
			Type:   "chapter",
			Number: types.ChapterNumber{Value: 1},
			Title:  "GIÁO DỤC",
			Articles: []*types.Article{{
				Number: 3,
				Title:  "Điều 3. Tính chất",
				Text:   "Mục tiêu giáo dục.",
				Clauses: []*types.Clause{{
					Number: 1,
					Text:   "Phát triển con người. tiếp tục câu.",
				}},
			}},
		}},
	}
	if !reflect.DeepEqual(doc, want) {
		t.Errorf("parsed document = %+v, want %+v", doc, want)
	}
}

func TestParseTextSplitsLines(t *testing.T) {
	doc := ParseText("Chương I\r\nGIÁO DỤC\r\nĐiều 1. A\n")
	if len(doc.Structure) != 1 {
		t.Fatalf("got %d chapters, want 1", len(doc.Structure))
	}
	if got := doc.Structure[0].Title; got != "GIÁO DỤC" {
		t.Errorf("title = %q (carriage returns should be trimmed)", got)
	}
	if n := len(doc.Structure[0].Articles); n != 1 {
		t.Errorf("got %d articles, want 1", n)
	}
}
