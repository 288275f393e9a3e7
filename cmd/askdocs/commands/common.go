package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jinford/askdocs/internal/infra/git"
	"github.com/jinford/askdocs/internal/platform/container"
	"github.com/jinford/askdocs/internal/platform/logger"
	"github.com/jinford/askdocs/pkg/config"
)

// AppContext はコマンド実行に必要な共通コンテキストを保持する
type AppContext struct {
	Config    *config.Config
	Container *container.ServiceContainer
}

// AppOption は設定とロガーを参照してコンテナオプションを生成する
type AppOption func(cfg *config.Config, logger *slog.Logger) []container.ContainerOption

// WithGitSource はローカルディレクトリの代わりにGitリポジトリを
// ドキュメントソースとして使用する
func WithGitSource(url string) AppOption {
	return func(cfg *config.Config, logger *slog.Logger) []container.ContainerOption {
		source := git.NewRepositorySource(url, cfg.Docs.GitCloneDir, logger)
		return []container.ContainerOption{container.WithContainerFileSource(source)}
	}
}

// NewAppContext は設定ファイルを読み込み、DBに接続して AppContext を作成する
func NewAppContext(ctx context.Context, envFile string, opts ...AppOption) (*AppContext, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	appLogger := logger.New(logger.DefaultConfig())

	containerOpts := []container.ContainerOption{
		container.WithContainerLogger(appLogger),
	}
	for _, opt := range opts {
		containerOpts = append(containerOpts, opt(cfg, appLogger)...)
	}

	cont, err := container.NewContainer(ctx, cfg, containerOpts...)
	if err != nil {
		return nil, fmt.Errorf("コンテナの初期化に失敗: %w", err)
	}

	return &AppContext{
		Config:    cfg,
		Container: cont,
	}, nil
}

// Close はAppContextが保持するリソースをクリーンアップする
func (ac *AppContext) Close() {
	if ac.Container != nil {
		ac.Container.Close()
	}
}

// Logger はAppContextのロガーを返す
func (ac *AppContext) Logger() *slog.Logger {
	if ac.Container != nil {
		return ac.Container.Logger
	}
	return slog.Default()
}
