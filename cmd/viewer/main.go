// Trajectory viewer - plays back a recorded galaxy run.
//
// Usage: go run ./cmd/viewer -in timeline.dat
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/galaxy/camera"
	"github.com/pthm-cable/galaxy/components"
	"github.com/pthm-cable/galaxy/config"
	"github.com/pthm-cable/galaxy/playback"
	"github.com/pthm-cable/galaxy/telemetry"
	"github.com/pthm-cable/galaxy/trajectory"
)

const panelHeight = 90

// tierStyle is the on-screen look of a mass tier.
type tierStyle struct {
	color  rl.Color
	radius float32 // screen pixels at the fitted zoom
}

var tierStyles = [3]tierStyle{
	components.TierPlanet: {rl.RayWhite, 1},
	components.TierGiant:  {rl.SkyBlue, 2},
	components.TierStar:   {rl.Yellow, 5},
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	inPath := flag.String("in", "timeline.dat", "Trajectory file to play")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	reader, err := trajectory.Open(*inPath)
	if err != nil {
		slog.Error("failed to open trajectory", "error", err)
		os.Exit(1)
	}
	defer reader.Close()

	scene, err := playback.NewScene(reader)
	if err != nil {
		slog.Error("failed to load trajectory", "error", err)
		os.Exit(1)
	}
	slog.Info("trajectory loaded", "path", *inPath, "capacity", reader.Capacity(), "frames", reader.Frames())

	width, height := cfg.Viewer.Width, cfg.Viewer.Height
	rl.InitWindow(int32(width), int32(height+panelHeight), "Galaxy Viewer")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Viewer.TargetFPS))

	cam := camera.New(float32(width), float32(height), float32(cfg.Derived.Border))
	player := playback.NewPlayer(scene.Frames(), float32(cfg.Viewer.MaxFrameDelayMS)/2000)
	perf := telemetry.NewPerfCollector(cfg.Viewer.TargetFPS)
	maxDelay := float32(cfg.Viewer.MaxFrameDelayMS) / 1000

	for !rl.WindowShouldClose() {
		perf.RecordFrame()
		handleInput(cam, player)

		player.Update(rl.GetFrameTime())
		if err := scene.Load(player.Day); err != nil {
			slog.Error("failed to load frame", "day", player.Day, "error", err)
			player.Playing = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		drawBodies(scene, cam)
		drawRegion(cam, float32(cfg.Derived.Border))
		drawHUD(scene, perf.Stats())
		drawPanel(player, width, height, maxDelay)

		rl.EndDrawing()
	}
}

// handleInput applies keyboard and mouse controls.
func handleInput(cam *camera.Camera, player *playback.Player) {
	if rl.IsKeyPressed(rl.KeySpace) {
		player.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyRight) {
		player.Step(1)
	}
	if rl.IsKeyPressed(rl.KeyLeft) {
		player.Step(-1)
	}
	if rl.IsKeyPressed(rl.KeyL) {
		player.Loop = !player.Loop
	}
	if rl.IsKeyPressed(rl.KeyR) {
		cam.Reset()
	}

	mouse := rl.GetMousePosition()
	if mouse.Y > cam.ViewportH {
		return
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		factor := float32(1.2)
		if wheel < 0 {
			factor = 1 / factor
		}
		cam.ZoomAt(mouse.X, mouse.Y, factor)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		cam.Pan(-d.X, -d.Y)
	}
}

func drawBodies(scene *playback.Scene, cam *camera.Camera) {
	scale := cam.Zoom / cam.MinZoom
	scene.Each(func(_ int, pos components.Position, mass int32) {
		style := tierStyles[components.TierOf(mass)]
		r := style.radius * scale
		if r > 40 {
			r = 40
		}
		if !cam.IsVisible(pos.X, pos.Y, r/cam.Zoom) {
			return
		}
		sx, sy := cam.WorldToScreen(pos.X, pos.Y)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r, style.color)
	})
}

// drawRegion outlines the bounded region.
func drawRegion(cam *camera.Camera, border float32) {
	x0, y0 := cam.WorldToScreen(-border, -border)
	x1, y1 := cam.WorldToScreen(border, border)
	rl.DrawRectangleLines(int32(x0), int32(y0), int32(x1-x0), int32(y1-y0), rl.DarkGray)
}

func drawHUD(scene *playback.Scene, perf telemetry.PerfStats) {
	tiers := scene.TierCounts()
	rl.DrawText(fmt.Sprintf("Day %d / %d", scene.Day()+1, scene.Frames()), 10, 10, 20, rl.LightGray)
	rl.DrawText(fmt.Sprintf("Bodies: %d  (stars %d, giants %d, planets %d)",
		scene.Active(), tiers[components.TierStar], tiers[components.TierGiant], tiers[components.TierPlanet]),
		10, 34, 16, rl.Gray)
	rl.DrawText(fmt.Sprintf("FPS: %d", int(perf.FPS)), 10, 54, 16, rl.Gray)
}

// drawPanel draws playback controls below the view.
func drawPanel(player *playback.Player, width, height int, maxDelay float32) {
	panelY := float32(height)
	rl.DrawRectangle(0, int32(height), int32(width), panelHeight, rl.NewColor(30, 30, 30, 255))

	label := "Play"
	if player.Playing {
		label = "Pause"
	}
	if gui.Button(rl.Rectangle{X: 10, Y: panelY + 10, Width: 80, Height: 30}, label) {
		player.Toggle()
	}

	// Frame scrubber
	sliderW := float32(width) - 200
	day := gui.SliderBar(
		rl.Rectangle{X: 140, Y: panelY + 15, Width: sliderW, Height: 20},
		"Day", fmt.Sprintf("%d", player.Day+1),
		float32(player.Day), 0, float32(player.Frames-1),
	)
	if int(day) != player.Day {
		player.Seek(int(day))
	}

	// Playback delay
	delay := gui.SliderBar(
		rl.Rectangle{X: 140, Y: panelY + 50, Width: sliderW / 2, Height: 20},
		"Delay", fmt.Sprintf("%d ms", int(player.Delay*1000)),
		player.Delay, 0, maxDelay,
	)
	if delay != player.Delay {
		player.Delay = delay
	}
}
