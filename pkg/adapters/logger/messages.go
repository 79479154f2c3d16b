package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Sampling %d videos with %d workers":             "%d 本の動画を %d ワーカーでサンプリング中",
		"Sampling %s":                                    "%s をサンプリング中",
		"Sampled %d clips of %d frames from %s in %d ms": "%[3]s から %[2]d フレームのクリップを %[1]d 個抽出しました (%[4]d ms)",
		"Sampling completed: %d succeeded, %d failed":    "サンプリング完了: 成功 %d, 失敗 %d",
		"Contact sheet saved for %s":                     "%s のコンタクトシートを保存しました",
		"Summary saved to %s":                            "サマリーを %s に保存しました",
		"Interrupted, shutting down...":                  "中断されました。シャットダウン中...",

		// Decoder component (debug)
		"Opened container with %d streams":                   "%d ストリームのコンテナを開きました",
		"Registered stream %d (%s, %d frames, %d keyframes)": "ストリーム %d を登録しました (%s, %d フレーム, %d キーフレーム)",
		"Seeking stream %d to keyframe %d for frame %d":      "フレーム %[3]d のためストリーム %[1]d をキーフレーム %[2]d へシーク",
		"Planned %d %s %s clips of %d frames for %s":         "%[5]s に %[1]d 個の %[2]s %[3]s クリップ (%[4]d フレーム) を計画しました",
		"Rendering %dx%d contact sheet of %d clips":          "%[3]d クリップの %[1]dx%[2]d コンタクトシートを描画中",

		// Warnings
		"Failed to save debug frame %d of clip %d: %v": "クリップ %[2]d のデバッグフレーム %[1]d の保存に失敗しました: %[3]v",
		"Failed to save debug output for %s: %s":       "%s のデバッグ出力の保存に失敗しました: %s",

		// Errors
		"Failed to sample %s: %s":          "%s のサンプリングに失敗しました: %s",
		"Failed to write summary: %s":      "サマリーの書き込みに失敗しました: %s",
		"Failed to load configuration: %s": "設定の読み込みに失敗しました: %s",

		// Summary labels
		"Sampling Summary": "サンプリング結果",
		"Run ID":           "実行ID",
		"Generated":        "生成日時",
		"Settings":         "設定",
		"Item":             "項目",
		"Value":            "値",
		"Mode":             "モード",
		"Sampler":          "サンプラー",
		"Clips x Frames":   "クリップ x フレーム",
		"Frame Size":       "フレームサイズ",
		"native rate":      "ネイティブレート",
		"Run":              "実行",
		"Videos":           "動画",
		"Succeeded":        "成功",
		"Failed":           "失敗",
		"Workers":          "ワーカー",
		"Duration":         "所要時間",
		"Video":            "動画",
		"Stream":           "ストリーム",
		"Frames":           "フレーム数",
		"Length":           "長さ",
		"Clip Starts":      "クリップ開始位置",
		"Seeks":            "シーク",
		"Time":             "処理時間",
		"Error":            "エラー",
	})
}
