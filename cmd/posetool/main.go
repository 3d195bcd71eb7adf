// Package main is the entry point for posetool, which resolves a scene file
// at a frame, replays its scripted edits and exports the result.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/posekit/internal/config"
	"github.com/Faultbox/posekit/internal/engine/anim"
	"github.com/Faultbox/posekit/internal/engine/model"
	"github.com/Faultbox/posekit/internal/engine/skin"
	"github.com/Faultbox/posekit/internal/engine/undo"
	"github.com/Faultbox/posekit/internal/export"
	"github.com/Faultbox/posekit/internal/logger"
	"github.com/Faultbox/posekit/internal/scenefile"
	"github.com/Faultbox/posekit/pkg/math"
)

var flagUndo = flag.Int("undo", 0, "Undo this many scripted edits before exporting")

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if path, err := config.SaveRequested(cfg); err != nil {
		logger.Error("writing config failed", zap.String("path", path), zap.Error(err))
		os.Exit(1)
	} else if path != "" {
		logger.Info("config written", zap.String("path", path))
		return
	}

	args := config.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: posetool [flags] <scene.yaml> [track...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger.Info("=== posetool ===", zap.String("scene", args[0]), zap.Int("frame", cfg.Pose.Frame))
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(os.Stdout, cfg, args[0], args[1:], *flagUndo); err != nil {
		logger.Error("posetool failed", zap.Error(err))
		os.Exit(1)
	}
}

// run loads the scene, binds the named tracks (all of them when none are
// named) at the configured frame, replays the scripted edits, undoes the last
// undoCount of them, prints a summary and exports.
func run(w io.Writer, cfg *config.Config, scenePath string, tracks []string, undoCount int) error {
	scene, err := scenefile.Load(scenePath)
	if err != nil {
		return err
	}

	m, err := newModel(cfg, scene.Definition)
	if err != nil {
		return err
	}

	selected := scene.Tracks
	if len(tracks) > 0 {
		selected = make([]anim.Track, 0, len(tracks))
		for _, name := range tracks {
			t, ok := scene.Track(name)
			if !ok {
				return fmt.Errorf("scene %s has no track %q", scenePath, name)
			}
			selected = append(selected, t)
		}
	}
	for _, t := range selected {
		if err := m.Apply(t, cfg.Pose.Frame); err != nil {
			return err
		}
	}

	session := undo.NewSession(cfg.Pose.UndoDepth)
	ref := session.AddModel(m)
	for i, e := range scene.Edits {
		if err := runEdit(session, ref, e); err != nil {
			return fmt.Errorf("edit %d: %w", i, err)
		}
	}
	for i := 0; i < undoCount; i++ {
		if err := session.Undo(); err != nil {
			var empty *undo.EmptyStackError
			if errors.As(err, &empty) {
				logger.Warn("fewer edits than requested undos", zap.Int("undone", i))
				break
			}
			return err
		}
	}

	printSummary(w, m, session)

	if cfg.Export.Output != "" {
		if err := export.Write(cfg.Export.Output, m, export.Options{IncludeBones: cfg.Export.IncludeBones}); err != nil {
			return err
		}
		fmt.Fprintf(w, "Exported:   %s\n", cfg.Export.Output)
	}
	return nil
}

// newModel builds the model, normalizing the influence table when it fails
// validation and the config allows it, and points billboards at the
// configured view.
func newModel(cfg *config.Config, def model.Definition) (*model.Model, error) {
	opts := model.Options{
		WeightTolerance: cfg.Pose.WeightTolerance,
		ApplyBillboards: cfg.Pose.ApplyBillboards,
	}
	m, err := model.New(def, opts)
	var ierr *skin.InfluenceError
	if err != nil && cfg.Pose.NormalizeWeights && errors.As(err, &ierr) {
		logger.Warn("normalizing influence weights",
			zap.Ints("vertices", ierr.Vertices),
			zap.Int("problems", len(ierr.Problems())))
		def.Influences = skin.Normalize(def.Influences, len(def.Bones))
		m, err = model.New(def, opts)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Pose.ApplyBillboards {
		view := math.QuatFromYawPitch(cfg.Pose.ViewYaw, cfg.Pose.ViewPitch)
		if err := m.SetViewRotation(view); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func runEdit(s *undo.Session, ref undo.ModelRef, e scenefile.Edit) error {
	target := undo.EditTarget{
		Model:           ref,
		UpdateBindState: e.UpdateBindState,
		UpdateBoneOnly:  e.UpdateBoneOnly,
	}
	if e.IsBone() {
		target.Bones = []int{e.Bone}
	} else {
		target.Vertices = []int{e.Vertex}
	}

	if err := s.BeginEdit(target); err != nil {
		return err
	}
	var err error
	if e.IsBone() {
		err = s.SetBoneTransform(e.Bone, e.Transform)
	} else {
		err = s.SetVertexPosition(e.Vertex, e.Position)
	}
	if err != nil {
		if aerr := s.AbortEdit(); aerr != nil {
			return errors.Join(err, aerr)
		}
		return err
	}
	return s.CommitEdit()
}

func printSummary(w io.Writer, m *model.Model, s *undo.Session) {
	st := m.Resolve()

	fmt.Fprintf(w, "Model:      %s\n", m.Name())
	fmt.Fprintf(w, "Bones:      %d\n", len(st.Bones))
	fmt.Fprintf(w, "Vertices:   %d (%d rigid)\n", len(st.Vertices), m.Influences().RigidCount())
	if st.Frame.Bound {
		fmt.Fprintf(w, "Animation:  %s @ %d\n", st.Frame.Track, st.Frame.Frame)
	}
	for k := anim.KindBone; int(k) < anim.KindCount; k++ {
		if t, frame, ok := m.Bound(k); ok {
			fmt.Fprintf(w, "  %-10s %s @ %d\n", k, t.TrackName(), frame)
		}
	}

	visible := 0
	for i := range m.Objects() {
		if m.Visibility(i) {
			visible++
		}
	}
	fmt.Fprintf(w, "Objects:    %d/%d visible\n", visible, len(m.Objects()))
	fmt.Fprintf(w, "Bounds:     %v .. %v\n", st.Bounds.Min, st.Bounds.Max)
	fmt.Fprintf(w, "History:    %d edits, undo=%v redo=%v\n", s.Stack().Len(), s.CanUndo(), s.CanRedo())
}
