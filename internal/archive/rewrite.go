package archive

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"
)

const contentTypesEntry = "[Content_Types].xml"

const mp4Default = `<Default Extension="mp4" ContentType="video/mp4"/>`

// RewriteReferences updates every .xml and .rels entry that mentions the
// renamed media file. References use the relationship-relative form
// "media/<name>", so that is the string substituted. Per-entry failures are
// returned as warnings so one unreadable part does not sink the repack.
func RewriteReferences(e *Extracted, oldName, newName string) (changed int, warnings []error) {
	oldRef := "media/" + path.Base(oldName)
	newRef := "media/" + path.Base(newName)
	if oldRef == newRef {
		return 0, nil
	}

	for _, name := range e.Entries {
		ext := strings.ToLower(path.Ext(name))
		if ext != ".xml" && ext != ".rels" {
			continue
		}
		did, err := rewriteEntry(e.AbsPath(name), oldRef, newRef)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("rewrite %s: %w", name, err))
			continue
		}
		if did {
			changed++
		}
	}
	return changed, warnings
}

func rewriteEntry(path, oldRef, newRef string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if !bytes.Contains(data, []byte(oldRef)) {
		return false, nil
	}
	updated := bytes.ReplaceAll(data, []byte(oldRef), []byte(newRef))
	if err := os.WriteFile(path, updated, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// EnsureMP4ContentType adds a video/mp4 Default to [Content_Types].xml when
// the archive does not declare one. Office rejects parts whose extension
// has no registered content type, so this must run before repacking when a
// video's extension changed to .mp4.
func EnsureMP4ContentType(e *Extracted) (bool, error) {
	p := e.AbsPath(contentTypesEntry)
	data, err := os.ReadFile(p)
	if err != nil {
		return false, fmt.Errorf("read content types: %w", err)
	}
	if bytes.Contains(data, []byte(`Extension="mp4"`)) {
		return false, nil
	}
	closing := []byte("</Types>")
	if !bytes.Contains(data, closing) {
		return false, fmt.Errorf("content types missing </Types> element")
	}
	updated := bytes.Replace(data, closing, append([]byte(mp4Default), closing...), 1)
	if err := os.WriteFile(p, updated, 0o644); err != nil {
		return false, fmt.Errorf("write content types: %w", err)
	}
	return true, nil
}
