// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pdiddy/statute-engine/pkg/types"
)

const indentUnit = "  "

// preferredKeys fixes the order of a document's scalar fields. Keys
// outside this list follow in their original encounter order.
var preferredKeys = []string{
	"id", "type", "issuer", "title",
	"source_url", "promulgation_date", "effective_date", "status",
}

// Document renders a parsed document. The output is byte-deterministic
// and ends with a newline.
func Document(doc *types.Document) []byte {
	var b bytes.Buffer
	writeDocValue(&b, fromDocument(doc), 0)
	b.WriteByte('\n')
	return b.Bytes()
}

// Composite renders the combined form: the metadata envelope, the law,
// and its related documents, all through the same block layout.
func Composite(meta types.CompositeMetadata, law Value, related []Value) []byte {
	var b bytes.Buffer
	b.WriteString("{\n")
	b.WriteString(indentUnit + "\"metadata\": {\n")
	writeMetaField(&b, "law_id", meta.LawID, true)
	writeMetaField(&b, "version_id", meta.VersionID, true)
	writeMetaField(&b, "status", meta.Status, true)
	writeMetaField(&b, "last_updated", meta.LastUpdated, false)
	b.WriteString(indentUnit + "},\n")
	b.WriteString(indentUnit + "\"content\": {\n")
	b.WriteString(strings.Repeat(indentUnit, 2) + "\"law\": ")
	writeDocValue(&b, law, 2)
	b.WriteString(",\n")
	b.WriteString(strings.Repeat(indentUnit, 2) + "\"related_documents\": [\n")
	for i, rd := range related {
		b.WriteString(strings.Repeat(indentUnit, 3))
		writeDocValue(&b, rd, 3)
		if i < len(related)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat(indentUnit, 2) + "]\n")
	b.WriteString(indentUnit + "}\n")
	b.WriteString("}\n")
	return b.Bytes()
}

func writeMetaField(b *bytes.Buffer, key, val string, comma bool) {
	b.WriteString(strings.Repeat(indentUnit, 2))
	b.WriteString(encodeScalar(key))
	b.WriteString(": ")
	b.WriteString(encodeScalar(val))
	if comma {
		b.WriteByte(',')
	}
	b.WriteByte('\n')
}

// writeDocValue writes a document-like value with its opening brace at
// depth indent units. No trailing newline; the caller owns separators.
func writeDocValue(b *bytes.Buffer, v Value, depth int) {
	obj, ok := v.(*Obj)
	if !ok {
		encodeCompact(b, v)
		return
	}
	pad := strings.Repeat(indentUnit, depth)
	fpad := pad + indentUnit
	b.WriteString("{\n")
	for _, k := range scalarKeys(obj) {
		val, _ := obj.Get(k)
		b.WriteString(fpad)
		b.WriteString(encodeScalar(k))
		b.WriteString(": ")
		encodeCompact(b, val)
		b.WriteString(",\n")
	}
	b.WriteString(fpad + "\"structure\": [\n")
	chapters := structureOf(obj)
	for i, ch := range chapters {
		writeChapter(b, ch, depth+2, i == len(chapters)-1)
	}
	b.WriteString(fpad + "]\n")
	b.WriteString(pad + "}")
}

// writeChapter writes one structure entry as a multi-line block with
// the fixed field order type, number, title, articles. Articles are
// compact single lines.
func writeChapter(b *bytes.Buffer, v Value, depth int, last bool) {
	pad := strings.Repeat(indentUnit, depth)
	fpad := pad + indentUnit
	ch, ok := v.(*Obj)
	if !ok {
		b.WriteString(pad)
		encodeCompact(b, v)
		if !last {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
		return
	}
	b.WriteString(pad + "{\n")
	b.WriteString(fpad + "\"type\": ")
	encodeCompact(b, getOr(ch, "type", "chapter"))
	b.WriteString(",\n")
	b.WriteString(fpad + "\"number\": ")
	encodeCompact(b, getOr(ch, "number", ""))
	b.WriteString(",\n")
	b.WriteString(fpad + "\"title\": ")
	encodeCompact(b, getOr(ch, "title", ""))
	b.WriteString(",\n")
	b.WriteString(fpad + "\"articles\": [\n")
	articles := arrayAt(ch, "articles")
	for i, art := range articles {
		b.WriteString(fpad + indentUnit)
		encodeCompact(b, art)
		if i < len(articles)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(fpad + "]\n")
	b.WriteString(pad + "}")
	if !last {
		b.WriteByte(',')
	}
	b.WriteByte('\n')
}

// scalarKeys orders a document's non-structure keys: preferred keys
// first, then the remainder in encounter order.
func scalarKeys(obj *Obj) []string {
	preferred := make(map[string]bool, len(preferredKeys))
	var keys []string
	for _, k := range preferredKeys {
		preferred[k] = true
		if obj.Has(k) {
			keys = append(keys, k)
		}
	}
	for _, k := range obj.Keys() {
		if k == "structure" || preferred[k] {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

func structureOf(obj *Obj) []Value {
	return arrayAt(obj, "structure")
}

func arrayAt(obj *Obj, key string) []Value {
	v, ok := obj.Get(key)
	if !ok {
		return nil
	}
	arr, ok := v.(*Arr)
	if !ok {
		return nil
	}
	return arr.Items
}

func getOr(obj *Obj, key string, def Value) Value {
	if v, ok := obj.Get(key); ok {
		return v
	}
	return def
}

func fromDocument(doc *types.Document) *Obj {
	obj := NewObj()
	obj.Set("type", doc.Type)
	obj.Set("issuer", doc.Issuer)
	obj.Set("title", doc.Title)
	obj.Set("source_url", doc.SourceURL)
	obj.Set("promulgation_date", doc.PromulgationDate)
	obj.Set("effective_date", doc.EffectiveDate)
	obj.Set("status", doc.Status)
	chapters := &Arr{Items: []Value{}}
	for _, ch := range doc.Structure {
		chapters.Items = append(chapters.Items, fromChapter(ch))
	}
	obj.Set("structure", chapters)
	return obj
}

func fromChapter(ch *types.Chapter) *Obj {
	obj := NewObj()
	obj.Set("type", ch.Type)
	obj.Set("number", numberValue(ch.Number))
	obj.Set("title", ch.Title)
	arts := &Arr{Items: []Value{}}
	for _, a := range ch.Articles {
		arts.Items = append(arts.Items, fromArticle(a))
	}
	obj.Set("articles", arts)
	return obj
}

func fromArticle(a *types.Article) *Obj {
	obj := NewObj()
	obj.Set("number", json.Number(strconv.Itoa(a.Number)))
	obj.Set("title", a.Title)
	obj.Set("text", a.Text)
	clauses := &Arr{Items: []Value{}}
	for _, c := range a.Clauses {
		co := NewObj()
		co.Set("number", json.Number(strconv.Itoa(c.Number)))
		co.Set("text", c.Text)
		clauses.Items = append(clauses.Items, co)
	}
	obj.Set("clauses", clauses)
	return obj
}

func numberValue(n types.ChapterNumber) Value {
	if n.Raw != "" {
		return n.Raw
	}
	return json.Number(strconv.Itoa(n.Value))
}
