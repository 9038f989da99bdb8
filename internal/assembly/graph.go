package assembly

import (
	"fmt"
	"strconv"

	"github.com/ZacxDev/scene-assembler/internal/config"
	ffmpegWrap "github.com/ZacxDev/scene-assembler/internal/ffmpeg"
	"github.com/ZacxDev/scene-assembler/internal/subtitle"
	"github.com/ZacxDev/scene-assembler/internal/timeline"
	"github.com/ZacxDev/scene-assembler/internal/transition"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const (
	audioSampleRate = "48000"
	audioLayout     = "stereo"
)

// BuildTransitionArgs serializes plan and cues into the argument list of a
// single engine invocation writing out. This is the only place a transition
// graph becomes engine syntax; escaping is left to ffmpeg-go.
func BuildTransitionArgs(plan *transition.Plan, cues []subtitle.Cue, tl *timeline.Timeline, out string) ([]string, error) {
	if plan == nil || plan.UseConcat {
		return nil, errors.New("plan has no transition chain")
	}
	if len(plan.Pads) != tl.Len() {
		return nil, fmt.Errorf("plan covers %d segments, timeline has %d", len(plan.Pads), tl.Len())
	}
	s := tl.Settings

	streams := make(map[string]*ffmpeg.Stream, tl.Len()+len(plan.Ops))
	audios := make([]*ffmpeg.Stream, 0, tl.Len())
	for i, seg := range tl.Segments {
		in := ffmpeg.Input(seg.Source)

		v := normalizeVideo(in.Video(), s)
		if pad := plan.Pads[i]; pad > 0 {
			// frozen last frame the transition plays over
			v = v.Filter("tpad", ffmpeg.Args{}, ffmpeg.KwArgs{
				"stop_mode":     "clone",
				"stop_duration": seconds(pad),
			})
		}
		streams[transition.Label(i)] = v
		audios = append(audios, normalizeAudio(in.Audio(), seg.Duration))
	}

	for i, op := range plan.Ops {
		left, ok := streams[op.Left]
		if !ok {
			return nil, fmt.Errorf("op %d: unknown left input %q", i, op.Left)
		}
		right, ok := streams[op.Right]
		if !ok {
			return nil, fmt.Errorf("op %d: unknown right input %q", i, op.Right)
		}
		streams[op.Output] = ffmpeg.Filter([]*ffmpeg.Stream{left, right}, "xfade", ffmpeg.Args{}, ffmpeg.KwArgs{
			"transition": op.Effect,
			"duration":   seconds(op.Duration),
			"offset":     seconds(op.Start),
		})
	}

	video, ok := streams[plan.Output]
	if !ok {
		return nil, fmt.Errorf("unknown plan output %q", plan.Output)
	}
	video = overlayCues(video, cues, s)

	return outputArgs(video, concatAudio(audios), s, out), nil
}

// BuildConcatArgs serializes a straight join of the segments listed in the
// concat manifest, with the same normalization and subtitle overlay as the
// transition path.
func BuildConcatArgs(manifest string, cues []subtitle.Cue, settings config.AssemblySettings, out string) []string {
	in := ffmpeg.Input(manifest, ffmpeg.KwArgs{
		"f":    "concat",
		"safe": "0",
	})

	video := overlayCues(normalizeVideo(in.Video(), settings), cues, settings)
	audio := normalizeAudio(in.Audio(), 0)

	return outputArgs(video, audio, settings, out)
}

// normalizeVideo brings a segment to the output frame size, frame rate,
// pixel format and time base so adjacent segments can be composited.
func normalizeVideo(v *ffmpeg.Stream, s config.AssemblySettings) *ffmpeg.Stream {
	w := strconv.Itoa(s.Resolution.Width)
	h := strconv.Itoa(s.Resolution.Height)

	return v.
		Filter("scale", ffmpeg.Args{}, ffmpeg.KwArgs{
			"w":                          w,
			"h":                          h,
			"force_original_aspect_ratio": "decrease",
		}).
		Filter("pad", ffmpeg.Args{}, ffmpeg.KwArgs{
			"w": w,
			"h": h,
			"x": "(ow-iw)/2",
			"y": "(oh-ih)/2",
		}).
		Filter("setsar", ffmpeg.Args{"1"}).
		Filter("fps", ffmpeg.Args{}, ffmpeg.KwArgs{"fps": strconv.Itoa(int(s.FrameRate))}).
		Filter("format", ffmpeg.Args{}, ffmpeg.KwArgs{"pix_fmts": "yuv420p"}).
		Filter("settb", ffmpeg.Args{"AVTB"})
}

// normalizeAudio resamples a narration track and, when the segment
// duration is known, pads it with silence to exactly that length so the
// concatenated audio stays aligned with the video.
func normalizeAudio(a *ffmpeg.Stream, duration float64) *ffmpeg.Stream {
	a = a.Filter("aformat", ffmpeg.Args{}, ffmpeg.KwArgs{
		"sample_fmts":     "fltp",
		"sample_rates":    audioSampleRate,
		"channel_layouts": audioLayout,
	})
	if duration > 0 {
		a = a.Filter("apad", ffmpeg.Args{}, ffmpeg.KwArgs{"whole_dur": seconds(duration)})
	}
	return a
}

// concatAudio joins narration tracks in order. Audio is never cross-mixed.
func concatAudio(audios []*ffmpeg.Stream) *ffmpeg.Stream {
	if len(audios) == 1 {
		return audios[0]
	}
	return ffmpeg.Filter(audios, "concat", ffmpeg.Args{}, ffmpeg.KwArgs{
		"n": strconv.Itoa(len(audios)),
		"v": "0",
		"a": "1",
	})
}

func overlayCues(v *ffmpeg.Stream, cues []subtitle.Cue, s config.AssemblySettings) *ffmpeg.Stream {
	if !s.SubtitlesEnabled() || len(cues) == 0 {
		return v
	}
	style := subtitle.NewStyle(*s.Subtitle, s.Resolution)
	for _, c := range cues {
		v = v.Filter("drawtext", ffmpeg.Args{}, style.DrawText(c))
	}
	return v
}

func outputArgs(video, audio *ffmpeg.Stream, s config.AssemblySettings, out string) []string {
	kwargs := ffmpegWrap.OutputKwargs(s.Encoding, s.FrameRate)
	return ffmpeg.Output([]*ffmpeg.Stream{video, audio}, out, kwargs).GetArgs()
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
