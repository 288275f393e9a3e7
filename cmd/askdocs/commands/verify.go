package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// VerifyAction はベクトルストアと親チャンクストアの整合性を検査する
func VerifyAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Container.SyncService.Verify(ctx)
	if err != nil {
		return fmt.Errorf("整合性検査に失敗しました: %w", err)
	}

	fmt.Printf("検査済みエントリ: %d 件\n", result.Scanned)
	if len(result.Orphans) == 0 {
		fmt.Println("孤児エントリはありません")
		return nil
	}

	fmt.Printf("孤児エントリ: %d 件 (親チャンクが存在しません)\n", len(result.Orphans))
	for _, orphan := range result.Orphans {
		fmt.Printf("  %s (file: %s, parentId: %d)\n",
			orphan.ID, orphan.Metadata.SourceFile, orphan.Metadata.ParentID)
	}
	fmt.Println("askdocs sync --reset で再構築できます")

	return nil
}
