package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"
)

// SourceListAction は同期済みファイルの一覧を表示する
func SourceListAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	hashes, err := app.Container.Parents().GetAllSourceFileHashes(ctx)
	if err != nil {
		return fmt.Errorf("ファイル一覧の取得に失敗しました: %w", err)
	}

	if len(hashes) == 0 {
		fmt.Println("同期済みのファイルはありません")
		return nil
	}

	names := make([]string, 0, len(hashes))
	for name := range hashes {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("同期済みファイル: %d 件\n", len(names))
	for _, name := range names {
		fmt.Printf("  %s  (hash: %.12s)\n", name, hashes[name])
	}

	return nil
}

// SourceShowAction は指定ファイルの親チャンクを表示する
func SourceShowAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	name := cmd.String("name")
	parents, err := app.Container.Parents().GetParentsBySourceFile(ctx, name)
	if err != nil {
		return fmt.Errorf("親チャンクの取得に失敗しました: %w", err)
	}

	if len(parents) == 0 {
		fmt.Printf("ファイル %s は同期されていません\n", name)
		return nil
	}

	fmt.Printf("%s: 親チャンク %d 件 (最終同期: %s)\n",
		name, len(parents), parents[0].SyncedAt.Format("2006-01-02 15:04:05"))
	for _, parent := range parents {
		fmt.Printf("--- [%d] (id: %d, %d 文字) ---\n",
			parent.ParentIndex, parent.ID, len([]rune(parent.Content)))
		fmt.Println(parent.Content)
	}

	return nil
}
