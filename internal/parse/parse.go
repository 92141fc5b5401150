// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse segments statutory plain text into a chapter, article,
// and clause hierarchy with a single stateful pass over the lines.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/statute-engine/pkg/types"
)

var (
	chapterRe = regexp.MustCompile(`(?i)^Chương\s+([IVXLCDM]+)\b`)
	articleRe = regexp.MustCompile(`^Điều\s+(\d+)\.\s*(.*)`)
	clauseRe  = regexp.MustCompile(`^(\d+)\.\s*(.*)`)
)

// romanTable bounds chapter numbering to I through XV. Tokens outside
// the table are kept raw, never decoded positionally.
var romanTable = map[string]int{
	"I": 1, "II": 2, "III": 3, "IV": 4, "V": 5,
	"VI": 6, "VII": 7, "VIII": 8, "IX": 9, "X": 10,
	"XI": 11, "XII": 12, "XIII": 13, "XIV": 14, "XV": 15,
}

// chapterNumber decodes a heading token case-insensitively via the
// roman table, falling back to the raw token with its original casing.
func chapterNumber(token string) types.ChapterNumber {
	if v, ok := romanTable[strings.ToUpper(token)]; ok {
		return types.ChapterNumber{Value: v}
	}
	return types.ChapterNumber{Raw: token}
}

// UnitKind discriminates the structural events emitted by Next.
type UnitKind string

const (
	// UnitChapter opens a new chapter.
	UnitChapter UnitKind = "chapter"
	// UnitTitle assigns the open chapter's title.
	UnitTitle UnitKind = "title"
	// UnitArticle completes an article belonging to the open chapter.
	UnitArticle UnitKind = "article"
)

// Unit is one completed structural event. Exactly the field matching
// Kind is set.
type Unit struct {
	Kind    UnitKind
	Chapter *types.Chapter
	Title   string
	Article *types.Article
}

// State threads parser position between lines. The zero value is the
// start state. Next and Flush take and return the state instead of
// mutating a parser object, so each line transition is observable on
// its own.
type State struct {
	chapterOpen bool
	titleSet    bool
	article     *types.Article
	buffer      []string
}

// Next advances the parser by one line and returns the successor state
// plus any units the line completed. Rules apply in priority order:
// blank, chapter heading, chapter title, article heading, clause
// heading, continuation. Lines matching nothing are dropped.
func Next(st State, line string) (State, []Unit) {
	s := strings.TrimSpace(line)
	if s == "" {
		return st, nil
	}

	if m := chapterRe.FindStringSubmatch(s); m != nil {
		st, units := Flush(st)
		st.chapterOpen = true
		st.titleSet = false
		ch := &types.Chapter{
			Type:     "chapter",
			Number:   chapterNumber(m[1]),
			Articles: []*types.Article{},
		}
		return st, append(units, Unit{Kind: UnitChapter, Chapter: ch})
	}

	// Title adoption runs before the article and clause rules, so in an
	// untitled chapter a short all-caps line like "1. PHẠM VI" becomes
	// the chapter title even while an article is pending.
	if st.chapterOpen && !st.titleSet && isChapterTitle(s) {
		st.titleSet = true
		return st, []Unit{{Kind: UnitTitle, Title: s}}
	}

	if m := articleRe.FindStringSubmatch(s); m != nil {
		st, units := Flush(st)
		num, _ := strconv.Atoi(m[1])
		title := fmt.Sprintf("Điều %d.", num)
		if m[2] != "" {
			title = fmt.Sprintf("Điều %d. %s", num, m[2])
		}
		st.article = &types.Article{
			Number:  num,
			Title:   title,
			Clauses: []*types.Clause{},
		}
		return st, units
	}

	if st.article != nil {
		if m := clauseRe.FindStringSubmatch(s); m != nil {
			if len(st.article.Clauses) == 0 {
				if text := strings.TrimSpace(strings.Join(st.buffer, "\n")); text != "" {
					st.article.Text = text
				}
				st.buffer = nil
			}
			num, _ := strconv.Atoi(m[1])
			st.article.Clauses = append(st.article.Clauses, &types.Clause{
				Number: num,
				Text:   m[2],
			})
			return st, nil
		}
		if n := len(st.article.Clauses); n > 0 {
			last := st.article.Clauses[n-1]
			last.Text = strings.TrimSpace(last.Text + " " + s)
			return st, nil
		}
		st.buffer = append(st.buffer, s)
		return st, nil
	}

	return st, nil
}

// Flush completes the pending article, if any. Buffered paragraph text
// is assigned iff the article has zero clauses at flush time. The
// article is emitted iff a chapter is open; an article that began
// before any chapter heading is discarded.
func Flush(st State) (State, []Unit) {
	art, buf := st.article, st.buffer
	st.article = nil
	st.buffer = nil
	if art == nil {
		return st, nil
	}
	if len(art.Clauses) == 0 {
		art.Text = strings.TrimSpace(strings.Join(buf, "\n"))
	}
	if !st.chapterOpen {
		return st, nil
	}
	return st, []Unit{{Kind: UnitArticle, Article: art}}
}

// isChapterTitle reports whether a line qualifies for title adoption:
// under 120 runes, entirely upper-case, and not an article heading.
func isChapterTitle(s string) bool {
	return utf8.RuneCountInString(s) < 120 &&
		strings.ToUpper(s) == s &&
		!strings.HasPrefix(s, "Điều")
}

// Parse folds the lines through Next plus a final Flush into a
// Document. Chapters are appended the instant their heading is seen;
// each flushed article attaches to the chapter open at its creation.
func Parse(lines []string) *types.Document {
	doc := &types.Document{Structure: []*types.Chapter{}}
	st := State{}
	var units []Unit
	for _, line := range lines {
		st, units = Next(st, line)
		fold(doc, units)
	}
	_, units = Flush(st)
	fold(doc, units)
	return doc
}

// ParseText splits text into lines and parses them.
func ParseText(text string) *types.Document {
	return Parse(strings.Split(text, "\n"))
}

func fold(doc *types.Document, units []Unit) {
	for _, u := range units {
		switch u.Kind {
		case UnitChapter:
			doc.Structure = append(doc.Structure, u.Chapter)
		case UnitTitle:
			doc.Structure[len(doc.Structure)-1].Title = u.Title
		case UnitArticle:
			ch := doc.Structure[len(doc.Structure)-1]
			ch.Articles = append(ch.Articles, u.Article)
		}
	}
}
