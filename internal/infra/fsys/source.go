// Package fsys はローカルディレクトリからの同期対象ファイル収集を提供します。
package fsys

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"
	gitignore "github.com/sabhiram/go-gitignore"

	docsync "github.com/jinford/askdocs/internal/core/sync"
)

// IgnoreFileName は同期から除外するパターンを記述するファイル名
const IgnoreFileName = ".syncignore"

// DirectorySource はディレクトリ配下のテキストファイルを列挙する。
// ドットで始まるディレクトリとバイナリファイルは除外し、
// ルート直下の .syncignore のパターンを適用する。
type DirectorySource struct {
	root   string
	logger *slog.Logger
}

// NewDirectorySource は新しい DirectorySource を作成する
func NewDirectorySource(root string, logger *slog.Logger) *DirectorySource {
	return &DirectorySource{
		root:   root,
		logger: logger,
	}
}

var _ docsync.FileSource = (*DirectorySource)(nil)

// Files はディレクトリ配下の同期対象ファイルをファイル名の昇順で返す。
// ファイル名はルートからのスラッシュ区切り相対パスになる。
func (s *DirectorySource) Files(ctx context.Context) ([]docsync.File, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat docs directory %s: %w", s.root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("docs path %s is not a directory", s.root)
	}

	matcher, err := loadIgnoreFile(filepath.Join(s.root, IgnoreFileName))
	if err != nil {
		return nil, err
	}

	var files []docsync.File
	err = filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if entry.IsDir() {
			if path != s.root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Name() == IgnoreFileName || strings.HasPrefix(entry.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("failed to resolve relative path of %s: %w", path, err)
		}
		name := filepath.ToSlash(rel)

		if matcher != nil && matcher.MatchesPath(name) {
			s.logger.Debug("file ignored by syncignore", slog.String("file", name))
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}

		if enry.IsBinary(content) {
			s.logger.Debug("binary file skipped", slog.String("file", name))
			return nil
		}

		files = append(files, docsync.File{
			Name:    name,
			Content: string(content),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk docs directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

func loadIgnoreFile(path string) (*gitignore.GitIgnore, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	matcher, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", path, err)
	}
	return matcher, nil
}
