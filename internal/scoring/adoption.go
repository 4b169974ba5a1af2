package scoring

import "math"

// ScorePackageAdoption scores registry download volume over 30 days,
// log-scaled between the configured floor and a ceiling representing
// market-leader SDK adoption.
func (e *Engine) ScorePackageAdoption(downloads30d int64) float64 {
	if downloads30d <= 0 {
		return 0
	}
	return Normalize(
		math.Log10(float64(downloads30d)),
		math.Log10(e.cfg.DownloadFloor),
		math.Log10(e.cfg.DownloadCeiling),
	)
}
