// Package main provides localization for the clipsampler CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	// Runtime log messages are registered by the logger adapter.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Configuration":  "設定",
		"Frame Geometry": "フレーム形状",
		"Sampling":       "サンプリング",
		"Decoder":        "デコーダー",
		"Debug":          "デバッグ",
		"Logging":        "ログ",

		// Root command
		"Sample fixed-size clips of frames from videos":                                         "動画から固定長のフレームクリップを抽出",
		"clipsampler decodes videos at random access and extracts clips of resized RGB frames.": "clipsamplerは動画をランダムアクセスでデコードし、リサイズしたRGBフレームのクリップを抽出します。",

		// Sample command
		"Sample clips from one or more videos":                                           "1つ以上の動画からクリップを抽出",
		"Sample clips from every video and optionally write debug images and a summary.": "すべての動画からクリップを抽出し、必要に応じてデバッグ画像とサマリーを出力します。",

		// Probe command
		"Show container and stream metadata of a video":               "動画のコンテナとストリームのメタデータを表示",
		"Open a video and print its streams without decoding frames.": "フレームをデコードせずに動画を開き、ストリーム情報を表示します。",
		"Output format (json, yaml)":                                  "出力形式（json, yaml）",

		// Version command
		"Show version information":       "バージョン情報を表示",
		"clipsampler version %s (%s/%s)": "clipsampler バージョン %s (%s/%s)",

		// Configuration flags
		"YAML configuration file": "YAML設定ファイル",

		// Frame geometry flags
		"Output frame width (default: 224)":                               "出力フレームの幅（デフォルト: 224）",
		"Output frame height (default: 224)":                              "出力フレームの高さ（デフォルト: 224）",
		"Video stream index (-1 = best stream)":                           "動画ストリーム番号（-1 = 最適なストリーム）",
		"Resize kernel (nearest, approx-bilinear, bilinear, catmull-rom)": "リサイズ方式（nearest, approx-bilinear, bilinear, catmull-rom）",

		// Sampling flags
		"Sampling mode (index-based, time-based)":          "サンプリングモード（index-based, time-based）",
		"Clip distribution (uniform, random)":              "クリップの配置（uniform, random）",
		"Random seed; video n uses seed+n":                 "乱数シード（n 番目の動画は seed+n を使用）",
		"Time-based target frame rate (0 = native rate)":   "時間ベースの目標フレームレート（0 = ネイティブ）",
		"Clips per video":                                  "動画あたりのクリップ数",
		"Frames per clip":                                  "クリップあたりのフレーム数",
		"Videos sampled concurrently (0 = number of CPUs)": "同時に処理する動画数（0 = CPU数）",

		// Decoder flags
		"Path to ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)": "ffmpeg実行ファイルのパス（未指定時は FFMPEG_PATH 環境変数、次に PATH）",

		// Debug flags
		"Enable debug output":                          "デバッグ出力を有効化",
		"Directory for debug output":                   "デバッグ出力のディレクトリ",
		"Output run summary to file (Markdown format)": "実行サマリーをファイルに出力（Markdown形式）",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Log format (console, text, json)":     "ログ形式（console, text, json）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Error messages
		"At least one video argument is required": "動画引数が1つ以上必要です",
		"Exactly one video argument is required":  "動画引数は1つだけ指定してください",
		"Unknown output format %q":                "不明な出力形式 %q",
		"%d of %d videos failed":                  "%[2]d 本中 %[1]d 本の動画が失敗しました",
	})
}
