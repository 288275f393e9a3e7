// Package git はGitリポジトリをドキュメントソースとして扱うアダプタを提供します。
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	giturls "github.com/whilp/git-urls"

	docsync "github.com/jinford/askdocs/internal/core/sync"
	"github.com/jinford/askdocs/internal/infra/fsys"
)

// RepositorySource はGitリポジトリをクローンまたは更新し、
// ワークツリーをディレクトリソースとして列挙する
type RepositorySource struct {
	url      string
	cloneDir string
	logger   *slog.Logger
}

// NewRepositorySource は新しい RepositorySource を作成する
func NewRepositorySource(url, cloneDir string, logger *slog.Logger) *RepositorySource {
	return &RepositorySource{
		url:      url,
		cloneDir: cloneDir,
		logger:   logger,
	}
}

var _ docsync.FileSource = (*RepositorySource)(nil)

// Files はリポジトリを最新化してからワークツリーのファイルを返す
func (s *RepositorySource) Files(ctx context.Context) ([]docsync.File, error) {
	dir, err := s.repositoryDir()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		if err := s.pull(ctx, dir); err != nil {
			return nil, err
		}
	} else {
		if err := s.clone(ctx, dir); err != nil {
			return nil, err
		}
	}

	return fsys.NewDirectorySource(dir, s.logger).Files(ctx)
}

// repositoryDir はリポジトリURLからクローン先ディレクトリを決める
func (s *RepositorySource) repositoryDir() (string, error) {
	u, err := giturls.Parse(s.url)
	if err != nil {
		return "", fmt.Errorf("failed to parse git URL %s: %w", s.url, err)
	}

	host := u.Hostname()
	if host == "" {
		host = u.Host
	}

	path := strings.TrimPrefix(u.Path, "/")
	path = strings.TrimSuffix(path, ".git")

	return filepath.Join(s.cloneDir, host, filepath.FromSlash(path)), nil
}

func (s *RepositorySource) clone(ctx context.Context, dir string) error {
	s.logger.Info("cloning repository", slog.String("url", s.url), slog.String("dir", dir))

	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fmt.Errorf("failed to create clone directory: %w", err)
	}

	if _, err := gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
		URL:   s.url,
		Depth: 1,
	}); err != nil {
		return fmt.Errorf("failed to clone %s: %w", s.url, err)
	}

	return nil
}

func (s *RepositorySource) pull(ctx context.Context, dir string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("failed to open repository at %s: %w", dir, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	err = worktree.PullContext(ctx, &gogit.PullOptions{})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull %s: %w", s.url, err)
	}

	s.logger.Info("repository up to date", slog.String("url", s.url))
	return nil
}
