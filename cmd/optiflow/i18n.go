// Package main provides localization for the optiflow CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Interpolate inbetween animation frames with optical flow": "オプティカルフローで中割りアニメーションフレームを補間",

		// Commands
		"Synthesize inbetween frames between two keyframe images": "2枚のキーフレーム画像の間の中割りフレームを合成",
		"Render every keyframe pair of a project file":            "プロジェクトファイルの全キーフレームペアをレンダリング",
		"Show version information":                                "バージョン情報を表示",
		"optiflow version %s":                                     "optiflow バージョン %s",

		// Flags
		"YAML configuration file":                                      "YAML設定ファイル",
		"Worker pool size (0 = all CPUs)":                              "ワーカープールのサイズ（0 = 全CPU）",
		"Pyramid levels (0 = auto)":                                    "ピラミッドの階層数（0 = 自動）",
		"Refinement iterations per level":                              "各階層の反復回数",
		"Least-squares window radius in pixels":                        "最小二乗ウィンドウの半径（ピクセル）",
		"Regularization for textureless regions":                       "テクスチャのない領域の正則化項",
		"Estimate the reverse field for backward warping":              "逆方向ワープ用の逆フィールドを推定",
		"Shrink keyframes larger than this before estimation (0 = off)": "推定前にこの寸法を超えるキーフレームを縮小（0 = 無効）",
		"Save intermediate artifacts":                                  "中間成果物を保存",
		"Directory for debug artifacts":                                "デバッグ成果物のディレクトリ",
		"Log level (debug, info, warn, error)":                         "ログレベル（debug, info, warn, error）",
		"Write rotating JSON logs to this file":                        "ローテーションするJSONログをこのファイルに書き込む",
		"Suppress all log output":                                      "すべてのログ出力を抑制",
		"Output directory for synthesized frames":                      "合成フレームの出力ディレクトリ",
		"Number of inbetween frames to synthesize":                     "合成する中割りフレーム数",
		"Frame format (png or jpg)":                                    "フレーム形式（png または jpg）",
		"JPEG quality (1-100)":                                         "JPEG品質（1-100）",

		// Errors and progress
		"expected exactly two keyframe image paths": "キーフレーム画像のパスを2つ指定してください",
		"expected a project file path":              "プロジェクトファイルのパスを指定してください",
		"cancelled":                                 "キャンセルされました",
		"Rendering pair %d of %d":                   "ペア %d / %d をレンダリング中",
		"Interrupted, shutting down...":             "中断されました。シャットダウン中...",
		"Cannot create debug directory %s, debug output disabled: %s": "デバッグディレクトリ %s を作成できないため、デバッグ出力を無効にします: %s",
	})
}
