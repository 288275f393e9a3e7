package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	docsync "github.com/jinford/askdocs/internal/core/sync"
)

// SyncAction はドキュメントソースをストアへ差分同期する
func SyncAction(ctx context.Context, cmd *cli.Command) error {
	var opts []AppOption
	if url := cmd.String("git-url"); url != "" {
		opts = append(opts, WithGitSource(url))
	}

	app, err := NewAppContext(ctx, cmd.String("env"), opts...)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Container.SyncService.Run(ctx, docsync.RunParams{
		Reset: cmd.Bool("reset"),
	})
	if err != nil {
		return fmt.Errorf("同期に失敗しました: %w", err)
	}

	fmt.Printf("同期が完了しました (run: %s)\n", result.RunID)
	fmt.Printf("  追加:     %d ファイル\n", result.Added)
	fmt.Printf("  更新:     %d ファイル\n", result.Updated)
	fmt.Printf("  削除:     %d ファイル\n", result.Deleted)
	fmt.Printf("  スキップ: %d ファイル\n", result.Skipped)
	fmt.Printf("  チャンク: 親 %d / 子 %d\n", result.Parents, result.Children)
	fmt.Printf("  所要時間: %s\n", result.Duration)

	return nil
}
