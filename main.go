package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ZacxDev/scene-assembler/internal/config"
	"github.com/ZacxDev/scene-assembler/internal/logging"
	"github.com/ZacxDev/scene-assembler/internal/probe"
	"github.com/ZacxDev/scene-assembler/internal/timeline"
	"github.com/ZacxDev/scene-assembler/internal/transition"
	"github.com/ZacxDev/scene-assembler/pkg/compositor"
	"github.com/ZacxDev/scene-assembler/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var (
	rootCmd = &cobra.Command{
		Use:   "scene-assembler",
		Short: "Assemble narrated scene clips into one video",
		Long: `scene-assembler joins independently rendered scene clips into a single video,
with fade, slide or zoom transitions and subtitles synchronized to the narration.

Examples:
  # Assemble the scenes listed in a manifest
  scene-assembler assemble -m scenes.yaml -o final.mp4

  # Vertical output for short-form platforms, slide transitions
  scene-assembler assemble -m scenes.yaml -o short.mp4 -t tiktok --transition slide

  # Show the transition plan and the ffmpeg invocation without encoding
  scene-assembler plan -m scenes.yaml`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			loaded, err := config.Load(path)
			if err != nil {
				return err
			}
			cfg = loaded

			if cmd.Flags().Changed("verbose") {
				cfg.Verbose, _ = cmd.Flags().GetBool("verbose")
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat, _ = cmd.Flags().GetString("log-format")
			}
			logging.Init(cfg.Verbose, cfg.LogFormat)
			return nil
		},
		SilenceUsage: true,
	}

	assembleCmd = &cobra.Command{
		Use:   "assemble [segment...]",
		Short: "Assemble scene segments into one video",
		Long: fmt.Sprintf(`Assemble scene segments, in order, into one video.

Segments and narration come from a manifest (-m) or, without subtitles,
from the positional arguments.

Supported profiles:
%s
Example:
  scene-assembler assemble -m scenes.yaml -o final.mp4 -t youtube-shorts --srt final.srt`,
			formatSupportedPlatforms()),
		RunE: runAssemble,
	}

	planCmd = &cobra.Command{
		Use:   "plan [segment...]",
		Short: "Print the transition plan, subtitle cues and ffmpeg arguments",
		RunE:  runPlan,
	}

	probeCmd = &cobra.Command{
		Use:   "probe <segment>...",
		Short: "Measure segment durations",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runProbe,
	}

	configCmd = &cobra.Command{
		Use:   "config [path]",
		Short: "Write the effective configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfig,
	}

	profilesCmd = &cobra.Command{
		Use:   "profiles",
		Short: "List output profiles",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(formatSupportedPlatforms())
		},
	}
)

func formatSupportedPlatforms() string {
	platforms := compositor.GetSupportedPlatforms()
	var sb strings.Builder
	for _, platform := range platforms {
		sb.WriteString(fmt.Sprintf("- %s\n", platform))
	}
	return sb.String()
}

// buildOptions merges config, manifest and flags, in that order.
func buildOptions(cmd *cobra.Command, args []string) (*compositor.AssembleOptions, error) {
	opts := &compositor.AssembleOptions{Config: cfg}
	settings := cfg.Settings
	if settings.Subtitle != nil {
		sub := *settings.Subtitle
		settings.Subtitle = &sub
	}

	manifestPath, _ := cmd.Flags().GetString("manifest")
	switch {
	case manifestPath != "" && len(args) > 0:
		return nil, fmt.Errorf("use either a manifest or positional segments, not both")
	case manifestPath != "":
		m, err := config.LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		opts.Segments = m.Segments()
		opts.Narration = m.Narration()
		opts.OutputPath = m.Output
		if m.Settings != nil {
			settings = *m.Settings
		}
	case len(args) > 0:
		opts.Segments = args
	default:
		return nil, fmt.Errorf("no segments: pass a manifest with -m or segment files")
	}

	if cmd.Flags().Changed("output") {
		opts.OutputPath, _ = cmd.Flags().GetString("output")
	}
	opts.Profile, _ = cmd.Flags().GetString("target-platform")
	opts.SubtitleFile, _ = cmd.Flags().GetString("srt")

	if cmd.Flags().Changed("transition") {
		kind, _ := cmd.Flags().GetString("transition")
		settings.Transition = config.TransitionKind(kind)
	}
	if cmd.Flags().Changed("transition-duration") {
		settings.TransitionDuration, _ = cmd.Flags().GetFloat64("transition-duration")
	}
	if cmd.Flags().Changed("format") {
		settings.Encoding.Format, _ = cmd.Flags().GetString("format")
	}

	noSubs, _ := cmd.Flags().GetBool("no-subtitles")
	if noSubs || len(opts.Narration) == 0 {
		settings.Subtitle = nil
	} else {
		if settings.Subtitle == nil {
			sub := config.DefaultSubtitleSettings()
			settings.Subtitle = &sub
		}
		if cmd.Flags().Changed("font-size") {
			settings.Subtitle.FontSize, _ = cmd.Flags().GetInt("font-size")
		}
		if cmd.Flags().Changed("subtitle-position") {
			pos, _ := cmd.Flags().GetString("subtitle-position")
			settings.Subtitle.Position = config.SubtitlePosition(pos)
		}
		if cmd.Flags().Changed("subtitle-delay") {
			settings.Subtitle.DelaySeconds, _ = cmd.Flags().GetFloat64("subtitle-delay")
		}
		if cmd.Flags().Changed("font-file") {
			settings.Subtitle.FontFile, _ = cmd.Flags().GetString("font-file")
		}
	}
	opts.Settings = &settings

	return opts, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions(cmd, args)
	if err != nil {
		return err
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("Assembling"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)
	opts.Progress = func(p types.Progress) {
		desc := string(p.Stage)
		if p.Degraded {
			desc += " (no transitions)"
		}
		bar.Describe(desc)
		_ = bar.Set(int(p.Percent))
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := compositor.Assemble(ctx, opts)
	_ = bar.Finish()
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		log.Warn().Msg(w)
	}
	fmt.Printf("Wrote %s (%.1f MB)\n", res.OutputPath, float64(res.Size)/1024/1024)
	if res.Degraded {
		fmt.Println("Segments were joined without transitions; see warnings above.")
	}
	return nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	dr, err := compositor.Plan(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Println("Segments:")
	for _, s := range dr.Timeline.Segments {
		if s.Measured {
			fmt.Printf("  %2d  %8.3fs  %s\n", s.Index, s.Duration, s.Source)
		} else {
			fmt.Printf("  %2d  %9s  %s\n", s.Index, "unknown", s.Source)
		}
	}

	printPlan(dr.Plan)

	if len(dr.Cues) > 0 {
		fmt.Println("Subtitles:")
		for _, c := range dr.Cues {
			fmt.Printf("  %2d  %8.3f -> %8.3f  %q\n", c.SceneIndex, c.Start, c.End, c.Text)
		}
	}
	for _, w := range dr.Warnings {
		fmt.Printf("warning: %s\n", w)
	}

	fmt.Println("ffmpeg arguments:")
	for _, a := range dr.Args {
		fmt.Printf("  %s\n", a)
	}
	return nil
}

func printPlan(plan *transition.Plan) {
	if plan.UseConcat {
		reason := "no transition requested"
		if plan.Reason != nil {
			reason = plan.Reason.Error()
		}
		fmt.Printf("Join: concatenation (%s)\n", reason)
		return
	}
	fmt.Printf("Join: %d transitions, total %.3fs\n", len(plan.Ops), plan.Total)
	for _, op := range plan.Ops {
		fmt.Printf("  [%s][%s] %-9s offset=%.3f start=%.3f duration=%.3f -> [%s]\n",
			op.Left, op.Right, op.Effect, op.Offset, op.Start, op.Duration, op.Output)
	}
}

func runProbe(cmd *cobra.Command, args []string) error {
	details, _ := cmd.Flags().GetBool("details")

	if details {
		for _, path := range args {
			md, err := compositor.GetVideoMetadata(path)
			if err != nil {
				return fmt.Errorf("%s: %v", path, err)
			}
			fmt.Printf("%s: %.3fs %dx%d %s @ %.2f fps, audio=%s\n",
				path, md.Duration, md.Width, md.Height, md.Codec, md.FrameRate, md.AudioCodec)
		}
		return nil
	}

	tl, err := timeline.New(args, cfg.Settings)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	engine := compositor.NewEngine(cfg.FFmpegPath, cfg.FFprobePath)
	errs := probe.ProbeAll(ctx, engine, tl, cfg.ProbeConcurrency)
	for i, s := range tl.Segments {
		if errs[i] != nil {
			fmt.Printf("%s: %v\n", s.Source, errs[i])
			continue
		}
		fmt.Printf("%s: %.3fs\n", s.Source, s.Duration)
	}
	if total := tl.Total(); total > 0 {
		fmt.Printf("total: %.3fs\n", total)
	}
	return probe.FirstError(errs)
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := "scene-assembler.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func addJobFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("manifest", "m", "", "Scene manifest (YAML)")
	cmd.Flags().StringP("output", "o", "", "Output video path")
	cmd.Flags().StringP("target-platform", "t", "",
		fmt.Sprintf("Output profile (%s)", strings.Join(compositor.GetSupportedPlatforms(), ", ")))
	cmd.Flags().String("transition", "", "Transition between scenes (none, fade, slide, zoom)")
	cmd.Flags().Float64("transition-duration", config.DefaultTransitionDuration, "Transition length in seconds")
	cmd.Flags().String("format", "", "Output container (mp4, webm)")
	cmd.Flags().Bool("no-subtitles", false, "Do not burn in subtitles")
	cmd.Flags().Int("font-size", config.DefaultFontSize, "Subtitle font size")
	cmd.Flags().String("subtitle-position", "", "Subtitle position (top, bottom, center)")
	cmd.Flags().Float64("subtitle-delay", 0, "Delay subtitles by this many seconds")
	cmd.Flags().String("font-file", "", "Font file for subtitles")
	cmd.Flags().String("srt", "", "Also write subtitles to this SubRip file")
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./scene-assembler.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")

	addJobFlags(assembleCmd)
	addJobFlags(planCmd)
	probeCmd.Flags().Bool("details", false, "Print stream details instead of durations only")
	configCmd.Flags().Bool("force", false, "Overwrite an existing file")

	rootCmd.AddCommand(assembleCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(profilesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
