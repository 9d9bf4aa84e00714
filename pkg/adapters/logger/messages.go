package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Job level messages (info)
		"Loading keyframes %s and %s":                  "キーフレーム %s と %s を読み込み中",
		"Interpolating %d frames between %s keyframes": "%s キーフレーム間の %d フレームを補間中",
		"Synthesized %d frames":                        "%d フレームを合成しました",
		"Wrote %d frames to %s":                        "%d フレームを %s に書き出しました",
		"Job cancelled":                                "ジョブはキャンセルされました",
		"Interpolation failed: %s":                     "補間に失敗しました: %s",
		"Keyframe %s resized from %s to %s":            "キーフレーム %s を %s から %s に縮小しました",

		// Estimate stage
		"Estimating flow over %d pyramid levels (%s)":   "%d 階層のピラミッドでフローを推定中 (%s)",
		"Estimating reverse flow for symmetric warping": "対称ワープ用の逆方向フローを推定中",
		"Level %d (%dx%d): %d iterations":               "レベル %d (%dx%d): %d 回の反復",

		// Synthesize stage
		"Synthesizing %d frames with %d workers": "%d フレームを %d ワーカーで合成中",
	})
}
