// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compose combines a converted law with its related documents
// (decrees, resolutions, circulars) into the composite input form.
package compose

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/pdiddy/statute-engine/internal/render"
	"github.com/pdiddy/statute-engine/pkg/types"
)

// Groups lists the input files for one composite build.
type Groups struct {
	// Law is the primary document. Required.
	Law string

	// Decrees, Resolutions, and Circulars are related documents, tagged
	// with their group kind when they carry no type of their own.
	Decrees     []string
	Resolutions []string
	Circulars   []string
}

// Build loads every group and returns the composite bytes. Missing or
// unreadable related files warn to w and are skipped; a missing or
// unreadable law aborts the build.
func Build(g Groups, meta types.CompositeMetadata, w io.Writer) ([]byte, error) {
	if g.Law == "" {
		return nil, fmt.Errorf("no law document selected")
	}
	law, err := loadDocument(g.Law)
	if err != nil {
		return nil, fmt.Errorf("loading law document: %w", err)
	}

	related := collect(g.Decrees, "decree", w)
	related = append(related, collect(g.Resolutions, "resolution", w)...)
	related = append(related, collect(g.Circulars, "circular", w)...)

	return render.Composite(meta, law, related), nil
}

// Write renders the composite to path, creating parent directories.
func Write(path string, g Groups, meta types.CompositeMetadata, w io.Writer) error {
	data, err := Build(g, meta, w)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing composite %s: %w", path, err)
	}
	fmt.Fprintf(w, "wrote: %s\n", path)
	return nil
}

// NewVersionID returns a fresh version identifier for composite builds.
func NewVersionID() string {
	return uuid.NewString()
}

// collect loads one group of related documents, tagging untyped entries
// with kind. Empty paths are ignored; load failures warn and skip.
func collect(paths []string, kind string, w io.Writer) []render.Value {
	var docs []render.Value
	for _, p := range paths {
		if p == "" {
			continue
		}
		doc, err := loadDocument(p)
		if err != nil {
			fmt.Fprintf(w, "warning: skipping %s (%v)\n", p, err)
			continue
		}
		if stringAt(doc, "type") == "" {
			doc.Set("type", kind)
		}
		docs = append(docs, doc)
	}
	return docs
}

// loadDocument reads one JSON file, unwraps it to its document, and
// carries a wrapper-level title into an untitled document.
func loadDocument(path string) (*render.Obj, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := render.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	doc := Normalize(v)
	if wrapper, ok := v.(*render.Obj); ok {
		carryTitle(wrapper, doc)
	}
	return doc, nil
}

// Normalize unwraps a loaded value to its document. Precedence:
// content.law, then law, then the value itself when it already carries
// a structure or type key, else an empty shell.
func Normalize(v render.Value) *render.Obj {
	obj, ok := v.(*render.Obj)
	if !ok {
		return emptyShell()
	}
	if content, ok := obj.Get("content"); ok {
		if cobj, ok := content.(*render.Obj); ok {
			if law, ok := cobj.Get("law"); ok {
				if lobj, ok := law.(*render.Obj); ok {
					return lobj
				}
			}
		}
	}
	if law, ok := obj.Get("law"); ok {
		if lobj, ok := law.(*render.Obj); ok {
			return lobj
		}
	}
	if obj.Has("structure") || obj.Has("type") {
		return obj
	}
	return emptyShell()
}

func emptyShell() *render.Obj {
	shell := render.NewObj()
	shell.Set("structure", &render.Arr{Items: []render.Value{}})
	return shell
}

// carryTitle copies the wrapper's title, or failing that its name, into
// a document whose own title is empty or missing.
func carryTitle(wrapper, doc *render.Obj) {
	if stringAt(doc, "title") != "" {
		return
	}
	if t := stringAt(wrapper, "title"); t != "" {
		doc.Set("title", t)
		return
	}
	if n := stringAt(wrapper, "name"); n != "" {
		doc.Set("title", n)
	}
}

func stringAt(obj *render.Obj, key string) string {
	v, ok := obj.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
