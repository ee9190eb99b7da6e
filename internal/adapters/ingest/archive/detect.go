package archive

import (
	"github.com/saintfish/chardet"
)

const (
	defaultDetectSample  = 256 * 1024
	defaultMinConfidence = 10
)

// Detector guesses the charset of a byte sample. It is optional; a nil Detector skips the guess
type Detector interface {
	Detect(sample []byte) (charset string, confidence int, ok bool)
}

// ChardetDetector wraps saintfish/chardet's statistical text detector
type ChardetDetector struct {
	// MinConfidence drops guesses below this score (0..100); <=0 uses the default
	MinConfidence int
	// SampleBytes caps how much of the input is scored; <=0 uses the default
	SampleBytes int
}

// NewChardetDetector returns a detector with default thresholds
func NewChardetDetector() *ChardetDetector { return &ChardetDetector{} }

// Detect returns the best guess when it clears the confidence floor
func (d *ChardetDetector) Detect(sample []byte) (string, int, bool) {
	limit := d.SampleBytes
	if limit <= 0 {
		limit = defaultDetectSample
	}
	if len(sample) > limit {
		sample = sample[:limit]
	}
	if len(sample) == 0 {
		return "", 0, false
	}
	// every candidate decodes plain ASCII identically; don't let a Latin-1 guess win
	if isASCII(sample) {
		return "UTF-8", 100, true
	}
	res, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || res == nil || res.Charset == "" {
		return "", 0, false
	}
	floor := d.MinConfidence
	if floor <= 0 {
		floor = defaultMinConfidence
	}
	if res.Confidence < floor {
		return res.Charset, res.Confidence, false
	}
	return res.Charset, res.Confidence, true
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}

// DetectorFunc adapts a plain function to Detector
type DetectorFunc func(sample []byte) (string, int, bool)

// Detect calls f
func (f DetectorFunc) Detect(sample []byte) (string, int, bool) { return f(sample) }
