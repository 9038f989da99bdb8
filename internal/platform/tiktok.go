package platform

import "github.com/ZacxDev/scene-assembler/pkg/types"

type TikTok struct{}

func init() {
	Register(&TikTok{})
}

func (p *TikTok) GetName() types.ProcessingPlatform {
	return types.ProcessingPlatformTikTok
}

func (p *TikTok) GetResolution() (width, height int) {
	return 1080, 1920
}

func (p *TikTok) GetFrameRate() uint32 {
	return 30
}

func (p *TikTok) GetMaxDuration() int {
	return 180
}

func (p *TikTok) GetVideoCodec() string {
	return "libx264" // H.264 for better compatibility
}

func (p *TikTok) GetAudioCodec() string {
	return "aac"
}

func (p *TikTok) GetAudioBitrate() string {
	return "128k"
}

func (p *TikTok) GetOutputFormat() string {
	return "mp4"
}
