package pipeline

import (
	"strings"
	"videoserver/config"
	"videoserver/models"
)

type Verdict struct {
	Status     models.VideoStatus // SAFE or FLAGGED
	Confidence float64            // in [0,1]
}

// Policy decides the sensitivity of a video from its metadata. Pure,
// no side effects - swap it for a real analyzer behind this interface.
type Policy interface {
	Classify(fileName string, size int64) Verdict
}

const (
	confidenceFlagged = 0.82
	confidenceSafe    = 0.95
)

// KeywordSizePolicy flags a video when its file name contains a
// sensitive keyword or its size crosses the configured thresholds
type KeywordSizePolicy struct {
	Keywords       []string
	LargeFileBytes int64
	LongVideoBytes int64 // size as a proxy for duration
}

func NewKeywordSizePolicy() *KeywordSizePolicy {
	keywords := []string{}
	for _, k := range strings.Split(config.SENSITIVE_KEYWORDS, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keywords = append(keywords, strings.ToLower(k))
		}
	}
	return &KeywordSizePolicy{
		Keywords:       keywords,
		LargeFileBytes: config.LARGE_FILE_BYTES,
		LongVideoBytes: config.LONG_VIDEO_BYTES,
	}
}

func (p *KeywordSizePolicy) Classify(fileName string, size int64) Verdict {
	name := strings.ToLower(fileName)
	flagged := false
	for _, keyword := range p.Keywords {
		if strings.Contains(name, keyword) {
			flagged = true
			break
		}
	}
	if size > p.LargeFileBytes || size > p.LongVideoBytes {
		flagged = true
	}
	if flagged {
		return Verdict{Status: models.StatusFlagged, Confidence: confidenceFlagged}
	}
	return Verdict{Status: models.StatusSafe, Confidence: confidenceSafe}
}
