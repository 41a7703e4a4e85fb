package system

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/pkg/filesystem"
)

func createFile(_ context.Context, p domain.Params) (string, error) {
	path := filesystem.ExpandHome(p.Text("filepath", "untitled.txt"))
	if path == "" {
		path = "untitled.txt"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
			return "", fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(p.Text("content", "")), domain.RegularFilePermissions); err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	return fmt.Sprintf("File created: %s", path), nil
}

func deleteFile(_ context.Context, p domain.Params) (string, error) {
	path := filesystem.ExpandHome(p.Text("filepath", ""))
	if path == "" {
		return "", fmt.Errorf("filepath is empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("delete file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("delete file: %s is a directory", path)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("delete file: %w", err)
	}
	return fmt.Sprintf("File deleted: %s", path), nil
}

// targetPath places src inside dst when dst is an existing directory.
func targetPath(src, dst string) string {
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		return filepath.Join(dst, filepath.Base(src))
	}
	return dst
}

func copyFile(_ context.Context, p domain.Params) (string, error) {
	src := filesystem.ExpandHome(p.Text("source", ""))
	dst := filesystem.ExpandHome(p.Text("destination", ""))
	if src == "" || dst == "" {
		return "", fmt.Errorf("source and destination are required")
	}
	if err := copyContents(src, targetPath(src, dst)); err != nil {
		return "", fmt.Errorf("copy file: %w", err)
	}
	return fmt.Sprintf("File copied from %s to %s", src, dst), nil
}

func copyContents(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func moveFile(_ context.Context, p domain.Params) (string, error) {
	src := filesystem.ExpandHome(p.Text("source", ""))
	dst := filesystem.ExpandHome(p.Text("destination", ""))
	if src == "" || dst == "" {
		return "", fmt.Errorf("source and destination are required")
	}
	target := targetPath(src, dst)

	err := os.Rename(src, target)
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		// rename fails across filesystems
		if cerr := copyContents(src, target); cerr == nil {
			err = os.Remove(src)
		}
	}
	if err != nil {
		return "", fmt.Errorf("move file: %w", err)
	}
	return fmt.Sprintf("File moved from %s to %s", src, dst), nil
}

// DirEntry is one list_directory row.
type DirEntry struct {
	Name  string
	IsDir bool
	Size  int64
}

func readDirectory(dir string) ([]DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []DirEntry
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, DirEntry{Name: entry.Name(), IsDir: info.IsDir(), Size: info.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDir != out[j].IsDir {
			return out[i].IsDir
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

const maxListedEntries = 50

func listDirectory(_ context.Context, p domain.Params) (string, error) {
	dir := filesystem.ExpandHome(p.Text("directory_path", "."))
	if dir == "" {
		dir = "."
	}
	entries, err := readDirectory(dir)
	if err != nil {
		return "", fmt.Errorf("list directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Directory contains %d items", len(entries))
	for i, e := range entries {
		if i == maxListedEntries {
			fmt.Fprintf(&b, "\n  ... %d more", len(entries)-maxListedEntries)
			break
		}
		if e.IsDir {
			fmt.Fprintf(&b, "\n  %s/", e.Name)
		} else {
			fmt.Fprintf(&b, "\n  %s (%s)", e.Name, humanize.Bytes(uint64(e.Size)))
		}
	}
	return b.String(), nil
}
