// Package grouper turns a flat file listing into album entries, one per
// folder that directly contains recognized media files.
package grouper

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"discmatch/internal/album"
)

// Recognized extensions, lower case, without the leading dot.
var mediaExtensions = map[string]bool{
	"mp3":  true,
	"flac": true,
	"wav":  true,
	"m4a":  true,
	"aac":  true,
	"jpg":  true,
	"png":  true,
}

// File is one file discovered under the scan root. Path is relative to the
// root and uses forward slashes.
type File struct {
	Path string
	Name string
}

// Group maps files to album entries by their immediate parent directory.
// Files directly under the root (fewer than two path segments) and files
// with unrecognized extensions are skipped. Directory order follows the
// first recognized file seen for each directory; two directories sharing a
// leaf name but not a full path stay distinct.
func Group(files []File) []album.Entry {
	var order []string
	grouped := make(map[string][]string)
	leafNames := make(map[string]string)

	for _, f := range files {
		if !recognized(f.Name) {
			continue
		}
		segments := strings.Split(f.Path, "/")
		if len(segments) < 2 {
			// An album folder must sit at least one level below the root.
			continue
		}
		dir := path.Join(segments[:len(segments)-1]...)
		if _, ok := grouped[dir]; !ok {
			order = append(order, dir)
			leafNames[dir] = segments[len(segments)-2]
		}
		grouped[dir] = append(grouped[dir], f.Name)
	}

	entries := make([]album.Entry, 0, len(order))
	for _, dir := range order {
		entries = append(entries, album.Entry{
			ID:         dir,
			FolderName: leafNames[dir],
			Path:       dir,
			Status:     album.StatusPending,
			Files:      grouped[dir],
		})
	}
	return entries
}

// Walk lists all regular files under root, relative to it, skipping hidden
// directories. The result feeds Group.
func Walk(root string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, File{
			Path: filepath.ToSlash(rel),
			Name: d.Name(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

func recognized(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return mediaExtensions[ext]
}
