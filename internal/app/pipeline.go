package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/battrack/internal/analysis"
	"github.com/ayusman/battrack/internal/capture"
	"github.com/ayusman/battrack/internal/render"
	"github.com/ayusman/battrack/internal/store"
)

// runPipeline is the frame loop. Frames are processed strictly in order:
//
// 1. Read the next frame; any read failure ends the loop
// 2. Run bat, ball and pose detection concurrently on the frame
// 3. Feed the observations to the engine
// 4. Draw the overlay and write the annotated frame
// 5. Report progress
//
// It returns the per-frame samples for persistence.
func (a *Analyzer) runPipeline(ctx context.Context, src capture.Source, sink capture.Sink, engine *analysis.Engine, progress ProgressFunc) ([]store.FrameSample, error) {
	var samples []store.FrameSample

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := src.ReadFrame()
		if err != nil {
			if !errors.Is(err, capture.ErrEndOfStream) {
				a.log.Warn().Err(err).Int("frame", n).Msg("frame read failed, ending analysis")
			}
			break
		}

		result, err := a.processFrame(n, frame, sink, engine)
		frame.Close()
		if err != nil {
			return nil, err
		}

		sample := store.FrameSample{Frame: n, BatSpeedKMPH: result.BatSpeed}
		if result.HasDistance {
			d := result.MinDistance
			sample.MinDistance = &d
		}
		samples = append(samples, sample)

		if progress != nil {
			s := engine.Session()
			progress(FrameUpdate{
				Frame:               n,
				SpeedKMPH:           result.BatSpeed,
				LastImpactSpeedKMPH: s.LastImpactSpeed,
				Shots:               s.ImpactCount,
				Impact:              result.Impact,
			})
		}
	}

	return samples, nil
}

// processFrame runs one frame through detection, the engine and the overlay.
func (a *Analyzer) processFrame(n int, frame *gocv.Mat, sink capture.Sink, engine *analysis.Engine) (analysis.FrameResult, error) {
	start := time.Now()

	obs, err := a.detect(frame)
	if err != nil {
		return analysis.FrameResult{}, fmt.Errorf("frame %d: %w", n, err)
	}

	a.log.Debug().
		Int("frame", n).
		Int("bats", len(obs.Bats)).
		Int("balls", len(obs.Balls)).
		Int("people", len(obs.People)).
		Dur("detect", time.Since(start)).
		Msg("detections")

	result, err := engine.ProcessFrame(n, obs)
	if err != nil {
		return analysis.FrameResult{}, err
	}

	render.Annotate(frame, obs, result, render.StateFor(engine, result))

	if err := sink.WriteFrame(frame); err != nil {
		return analysis.FrameResult{}, fmt.Errorf("write frame %d: %w", n, err)
	}

	return result, nil
}

// detect runs the bat, ball and pose detectors concurrently. Each detector
// only reads the frame.
func (a *Analyzer) detect(frame *gocv.Mat) (analysis.Observations, error) {
	var obs analysis.Observations
	d := a.config.Detectors

	var g errgroup.Group
	g.Go(func() error {
		bats, err := d.Bat.Detect(frame)
		if err != nil {
			return fmt.Errorf("bat detection: %w", err)
		}
		obs.Bats = bats
		return nil
	})
	g.Go(func() error {
		balls, err := d.Ball.Detect(frame)
		if err != nil {
			return fmt.Errorf("ball detection: %w", err)
		}
		obs.Balls = balls
		return nil
	})
	g.Go(func() error {
		people, err := d.Pose.DetectPose(frame)
		if err != nil {
			return fmt.Errorf("pose detection: %w", err)
		}
		obs.People = people
		return nil
	})

	if err := g.Wait(); err != nil {
		return analysis.Observations{}, err
	}
	return obs, nil
}

// persist stores the finished session with its impacts and frame samples.
func (a *Analyzer) persist(report *Report, input string, frames []store.FrameSample) error {
	sum := report.Summary

	sess := &store.Session{
		InputName:        filepath.Base(input),
		OutputName:       filepath.Base(report.Output),
		FPS:              report.FPS,
		PixelsPerMeter:   report.PixelsPerMeter,
		Calibrated:       report.Calibrated,
		TotalFrames:      sum.TotalFrames,
		TotalShots:       sum.TotalShots,
		AverageSpeedKMPH: sum.AverageSpeedKMPH,
		MaxSpeedKMPH:     sum.MaxSpeedKMPH,
		PowerHitCategory: sum.PowerHitCategory,
		Impacts:          make([]store.Impact, len(sum.Impacts)),
	}
	for i, ev := range sum.Impacts {
		sess.Impacts[i] = store.Impact{
			Frame:     ev.Frame,
			SpeedKMPH: ev.SpeedKMPH,
			Category:  ev.Category,
			X:         ev.Location[0],
			Y:         ev.Location[1],
		}
	}

	sess.ID = report.SessionID

	return a.config.Store.SaveSession(sess, frames)
}
