package types

type ProcessingPlatform string

const (
	ProcessingPlatformYouTube         ProcessingPlatform = "youtube"
	ProcessingPlatformYouTubeShorts   ProcessingPlatform = "youtube-shorts"
	ProcessingPlatformTikTok          ProcessingPlatform = "tiktok"
	ProcessingPlatformInstagramReel   ProcessingPlatform = "instagram-reel"
	ProcessingPlatformInstagramSquare ProcessingPlatform = "instagram-square"
	ProcessingPlatformXTwitter        ProcessingPlatform = "x-twitter"
)

// Stage identifies which part of an assembly run a progress update belongs to.
type Stage string

const (
	StageStart    Stage = "start"
	StageProbing  Stage = "probing"
	StageBuilding Stage = "building"
	StageInvoking Stage = "invoking"
	StageFallback Stage = "fallback"
	StageDone     Stage = "done"
)

// Progress is a single update on the caller's progress stream.
type Progress struct {
	Percent  float64 // 0-100
	Stage    Stage
	Message  string
	Degraded bool // set once the run has switched to plain concatenation
}

// ProgressFunc receives progress updates. It may be nil.
type ProgressFunc func(Progress)
