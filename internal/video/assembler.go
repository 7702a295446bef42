package video

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"storytime/pkg/httputil"
)

const (
	defaultFFmpegPath = "ffmpeg"
	defaultFFprobe    = "ffprobe"
	fetchTimeout      = 60 * time.Second

	defaultWidth      = 1280
	defaultHeight     = 720
	defaultFPS        = 30
	defaultBackground = "black"
)

// Overall percent reached at the end of each pipeline step.
const (
	loadingEnd   = 10
	preparingEnd = 45
	segmentsEnd  = 75
	concatEnd    = 80
	audioEnd     = 85
)

// Scene is one unit of footage: a still image shown for a fixed duration,
// optionally with narration audio. Image and audio references may be http(s)
// URLs or local file paths.
type Scene struct {
	ImageURL string
	Duration float64
	AudioURL string
}

type Options struct {
	Width           int
	Height          int
	FPS             int
	BackgroundColor string
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = defaultWidth
	}
	if o.Height == 0 {
		o.Height = defaultHeight
	}
	if o.FPS == 0 {
		o.FPS = defaultFPS
	}
	if o.BackgroundColor == "" {
		o.BackgroundColor = defaultBackground
	}
	return o
}

// Result carries the final video bytes. Muxed reports whether narration was
// combined in; when the audio pass fails the run degrades to the silent
// video and FallbackReason records why.
type Result struct {
	Data           []byte
	Muxed          bool
	FallbackReason string
}

// Assembler drives ffmpeg through the fixed still-image pipeline: stage
// images, encode one segment per scene, concatenate, then mux narration.
// A handle owns its working directory; concurrent Assemble calls on the same
// handle are serialized internally because the work files use fixed names.
type Assembler struct {
	ffmpegPath  string
	ffprobePath string
	workDir     string
	httpClient  *httputil.RetryClient

	mu       sync.Mutex
	initOnce sync.Once
	initErr  error
}

func NewAssembler(workDir string) *Assembler {
	return &Assembler{
		ffmpegPath:  defaultFFmpegPath,
		ffprobePath: defaultFFprobe,
		workDir:     workDir,
		httpClient: httputil.NewRetryClient(
			&http.Client{Timeout: fetchTimeout},
			httputil.DefaultRetryConfig(),
		),
	}
}

// Assemble turns an ordered list of scenes into one MP4 and returns its
// bytes. Progress is reported at well-defined points with a monotonic
// percent ending at 100. Fetch and per-scene encode failures abort the run
// with the 1-based scene number; audio failures degrade to a silent video.
func (a *Assembler) Assemble(ctx context.Context, scenes []Scene, opts Options, onProgress ProgressFunc) (*Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(scenes) == 0 {
		return nil, fmt.Errorf("no scenes to assemble")
	}
	opts = opts.withDefaults()
	progress := &reporter{fn: onProgress}

	progress.report(StageLoading, 0, "Initializing encoder")
	if err := a.ensureEngine(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(a.workDir, 0755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	progress.report(StageLoading, loadingEnd, "Encoder ready")

	var workFiles []string
	defer func() { a.cleanup(workFiles) }()

	imagePaths := make([]string, len(scenes))
	for i, scene := range scenes {
		data, err := a.fetchAsset(ctx, scene.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("fetch image for scene %d: %w", i+1, err)
		}
		path := filepath.Join(a.workDir, fmt.Sprintf("scene_%d.png", i))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("stage image for scene %d: %w", i+1, err)
		}
		workFiles = append(workFiles, path)
		imagePaths[i] = path
		progress.report(StagePreparing,
			interpolate(loadingEnd, preparingEnd, i+1, len(scenes)),
			fmt.Sprintf("Prepared scene %d of %d", i+1, len(scenes)))
	}

	segmentPaths := make([]string, len(scenes))
	for i, scene := range scenes {
		segPath := filepath.Join(a.workDir, fmt.Sprintf("segment_%d.mp4", i))
		if err := a.encodeSegment(ctx, imagePaths[i], segPath, scene.Duration, opts); err != nil {
			return nil, fmt.Errorf("encode scene %d: %w", i+1, err)
		}
		workFiles = append(workFiles, segPath)
		segmentPaths[i] = segPath
		progress.report(StageEncoding,
			interpolate(preparingEnd, segmentsEnd, i+1, len(scenes)),
			fmt.Sprintf("Encoded scene %d of %d", i+1, len(scenes)))
	}

	silentPath := filepath.Join(a.workDir, "silent.mp4")
	if err := a.concatSegments(ctx, segmentPaths, silentPath); err != nil {
		return nil, fmt.Errorf("concatenate segments: %w", err)
	}
	workFiles = append(workFiles, silentPath)
	progress.report(StageEncoding, concatEnd, "Segments joined")

	finalPath := silentPath
	muxed := false
	fallbackReason := ""
	if hasAudio(scenes) {
		muxedPath, files, err := a.muxNarration(ctx, scenes, silentPath)
		workFiles = append(workFiles, files...)
		if err != nil {
			slog.Warn("Audio pass failed, keeping silent video", "error", err)
			fallbackReason = err.Error()
		} else {
			finalPath = muxedPath
			muxed = true
		}
		progress.report(StageEncoding, audioEnd, "Narration processed")
	}

	progress.report(StageFinalizing, 90, "Finalizing video")
	data, err := os.ReadFile(finalPath)
	if err != nil {
		return nil, fmt.Errorf("read final video: %w", err)
	}

	progress.report(StageComplete, 100, "Video ready")
	return &Result{Data: data, Muxed: muxed, FallbackReason: fallbackReason}, nil
}

// ensureEngine verifies the encoder once per handle; repeated calls are
// no-ops.
func (a *Assembler) ensureEngine() error {
	a.initOnce.Do(func() {
		if _, err := exec.LookPath(a.ffmpegPath); err != nil {
			a.initErr = fmt.Errorf("ffmpeg not found: %w", err)
		}
	})
	return a.initErr
}

func (a *Assembler) fetchAsset(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty asset reference")
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return a.httpClient.FetchBytes(ctx, ref)
	}
	return os.ReadFile(ref)
}

func (a *Assembler) encodeSegment(ctx context.Context, imagePath, outPath string, duration float64, opts Options) error {
	if duration <= 0 {
		return fmt.Errorf("invalid duration %.3f", duration)
	}

	args := []string{
		"-y",
		"-loop", "1",
		"-i", imagePath,
		"-t", fmt.Sprintf("%.3f", duration),
		"-vf", buildScaleFilter(opts),
		"-r", strconv.Itoa(opts.FPS),
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		outPath,
	}
	return a.runFFmpeg(ctx, args)
}

// buildScaleFilter fits the image into the target frame preserving aspect
// ratio and pads the remainder with the background color.
func buildScaleFilter(opts Options) string {
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=%s",
		opts.Width, opts.Height, opts.Width, opts.Height, opts.BackgroundColor,
	)
}

func (a *Assembler) concatSegments(ctx context.Context, paths []string, outPath string) error {
	listPath := filepath.Join(a.workDir, "segments.txt")
	if err := writeConcatList(listPath, paths); err != nil {
		return err
	}
	defer func() { _ = os.Remove(listPath) }()

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	}
	return a.runFFmpeg(ctx, args)
}

// muxNarration fetches every referenced audio asset, concatenates them in
// scene order when there is more than one, and muxes the track onto the
// silent video truncating to the shorter duration. It returns every file it
// created so the caller can clean up on either outcome.
func (a *Assembler) muxNarration(ctx context.Context, scenes []Scene, videoPath string) (string, []string, error) {
	var created []string

	var audioPaths []string
	for i, scene := range scenes {
		if scene.AudioURL == "" {
			continue
		}
		data, err := a.fetchAsset(ctx, scene.AudioURL)
		if err != nil {
			return "", created, fmt.Errorf("fetch audio for scene %d: %w", i+1, err)
		}
		path := filepath.Join(a.workDir, fmt.Sprintf("audio_%d.mp3", i))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return "", created, fmt.Errorf("stage audio for scene %d: %w", i+1, err)
		}
		created = append(created, path)
		audioPaths = append(audioPaths, path)
	}

	trackPath := audioPaths[0]
	if len(audioPaths) > 1 {
		trackPath = filepath.Join(a.workDir, "narration.mp3")
		if err := a.concatAudio(ctx, audioPaths, trackPath); err != nil {
			return "", created, fmt.Errorf("concatenate narration: %w", err)
		}
		created = append(created, trackPath)
	}

	outPath := filepath.Join(a.workDir, "muxed.mp4")
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", trackPath,
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outPath,
	}
	if err := a.runFFmpeg(ctx, args); err != nil {
		return "", created, fmt.Errorf("mux narration: %w", err)
	}
	created = append(created, outPath)

	return outPath, created, nil
}

func (a *Assembler) concatAudio(ctx context.Context, paths []string, outPath string) error {
	listPath := filepath.Join(a.workDir, "narration.txt")
	if err := writeConcatList(listPath, paths); err != nil {
		return err
	}
	defer func() { _ = os.Remove(listPath) }()

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-acodec", "libmp3lame",
		"-q:a", "2",
		outPath,
	}
	return a.runFFmpeg(ctx, args)
}

func (a *Assembler) runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, a.ffmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w, output: %s", err, string(output))
	}
	return nil
}

// probeDuration reads a media file's duration in seconds via ffprobe.
func (a *Assembler) probeDuration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	cmd := exec.CommandContext(ctx, a.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var dur float64
	if _, err := fmt.Sscanf(string(output), "%f", &dur); err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}

	return dur, nil
}

func (a *Assembler) cleanup(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove work file", "path", path, "error", err)
		}
	}
}

func writeConcatList(listPath string, paths []string) error {
	var content strings.Builder
	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		fmt.Fprintf(&content, "file '%s'\n", absPath)
	}
	if err := os.WriteFile(listPath, []byte(content.String()), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

func hasAudio(scenes []Scene) bool {
	for _, scene := range scenes {
		if scene.AudioURL != "" {
			return true
		}
	}
	return false
}

// TotalDuration is the nominal length of the assembled video in seconds.
func TotalDuration(scenes []Scene) float64 {
	var total float64
	for _, scene := range scenes {
		total += scene.Duration
	}
	return total
}
