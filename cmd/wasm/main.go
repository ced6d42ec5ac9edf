//go:build js && wasm

// cmd/wasm exposes internal/engine's named operations to a browser host as
// a global object, js.FuncOf bindings JSON-in/JSON-out the same way the
// teacher's inamateEngine did, substituting its document/playback commands
// for the spec's make_model/train/tiered_* vocabulary. Where the teacher
// mutated one long-lived document in place, training handles many
// independent Models and Steps at once, so each make_model/make_step call
// returns a handle and every later call on that run names it explicitly.
package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"github.com/runsascoded/shapes/internal/engine"
	"github.com/runsascoded/shapes/internal/trace"
	"github.com/runsascoded/shapes/internal/train"
	"github.com/runsascoded/shapes/internal/wire"
)

var (
	errMissingArgs   = errors.New("missing arguments")
	errUnknownHandle = errors.New("unknown handle")
)

var (
	models     = map[int]*train.Model{}
	steps      = map[int]*train.Step{}
	nextHandle = 0
)

func allocHandle() int {
	h := nextHandle
	nextHandle++
	return h
}

type response struct {
	Handle          int             `json:"handle,omitempty"`
	Step            *wire.Step      `json:"step,omitempty"`
	Targets         map[string]float64 `json:"targets,omitempty"`
	Converged       bool            `json:"converged,omitempty"`
	Issues          []string        `json:"issues,omitempty"`
	IsKeyframe      bool            `json:"isKeyframe,omitempty"`
	NearestKeyframe int             `json:"nearestKeyframe,omitempty"`
	Error           string          `json:"error,omitempty"`
}

func jsonResp(r response) js.Value {
	data, err := json.Marshal(r)
	if err != nil {
		data, _ = json.Marshal(response{Error: err.Error()})
	}
	return js.ValueOf(string(data))
}

func errResp(err error) js.Value {
	return jsonResp(response{Error: err.Error()})
}

func parseSpecs(s string) ([]engine.InputSpec, error) {
	var specs []engine.InputSpec
	if err := json.Unmarshal([]byte(s), &specs); err != nil {
		return nil, err
	}
	return specs, nil
}

func parseTargetsMap(s string) (map[string]float64, error) {
	var m map[string]float64
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func main() {
	api := js.Global().Get("Object").New()

	api.Set("make_model", js.FuncOf(makeModel))
	api.Set("make_step", js.FuncOf(makeStep))
	api.Set("step", js.FuncOf(stepFn))
	api.Set("train", js.FuncOf(trainFn))
	api.Set("train_adam", js.FuncOf(trainAdamFn))
	api.Set("train_robust", js.FuncOf(trainRobustFn))
	api.Set("expand_targets", js.FuncOf(expandTargetsFn))
	api.Set("is_converged", js.FuncOf(isConvergedFn))
	api.Set("check_polygon_validity", js.FuncOf(checkPolygonValidityFn))
	api.Set("tiered_is_keyframe", js.FuncOf(tieredIsKeyframeFn))
	api.Set("tiered_nearest_keyframe", js.FuncOf(tieredNearestKeyframeFn))

	js.Global().Set("shapesEngine", api)
	js.Global().Set("shapesWasmReady", js.ValueOf(true))

	select {}
}

// make_model(specsJSON, targetsJSON) -> {handle, step}
func makeModel(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResp(errMissingArgs)
	}
	specs, err := parseSpecs(args[0].String())
	if err != nil {
		return errResp(err)
	}
	given, err := parseTargetsMap(args[1].String())
	if err != nil {
		return errResp(err)
	}
	model, err := engine.MakeModel(specs, given)
	if err != nil {
		return errResp(err)
	}
	h := allocHandle()
	models[h] = model
	step := model.Current()
	steps[h] = step
	wireStep := wire.FromStep(step)
	return jsonResp(response{Handle: h, Step: &wireStep})
}

// make_step(specsJSON, targetsJSON) -> {handle, step}
func makeStep(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResp(errMissingArgs)
	}
	specs, err := parseSpecs(args[0].String())
	if err != nil {
		return errResp(err)
	}
	given, err := parseTargetsMap(args[1].String())
	if err != nil {
		return errResp(err)
	}
	step, err := engine.MakeStep(specs, given)
	if err != nil {
		return errResp(err)
	}
	h := allocHandle()
	steps[h] = step
	wireStep := wire.FromStep(step)
	return jsonResp(response{Handle: h, Step: &wireStep})
}

// step(handle, rate) -> {step}: one gradient-descent update of the Step at
// handle, replacing it in place.
func stepFn(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResp(errMissingArgs)
	}
	h := args[0].Int()
	cur, ok := steps[h]
	if !ok {
		return errResp(errUnknownHandle)
	}
	next, err := engine.Step(cur, args[1].Float())
	if err != nil {
		return errResp(err)
	}
	steps[h] = next
	wireStep := wire.FromStep(next)
	return jsonResp(response{Handle: h, Step: &wireStep})
}

// train(handle, rate, maxSteps) -> {step}: runs the model at handle to
// completion (or maxSteps), returning its resulting current step.
func trainFn(this js.Value, args []js.Value) interface{} {
	return runBatch(args, func(m *train.Model, rate float64, maxSteps int) error {
		return engine.Train(m, rate, maxSteps)
	})
}

// train_adam(handle, rate, maxSteps) -> {step}
func trainAdamFn(this js.Value, args []js.Value) interface{} {
	return runBatch(args, func(m *train.Model, rate float64, maxSteps int) error {
		return engine.TrainAdam(m, rate, maxSteps)
	})
}

// train_robust(handle, maxSteps) -> {step}: no rate argument, so args
// shifts down by one relative to train/train_adam.
func trainRobustFn(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResp(errMissingArgs)
	}
	h := args[0].Int()
	model, ok := models[h]
	if !ok {
		return errResp(errUnknownHandle)
	}
	maxSteps := args[1].Int()
	if err := engine.TrainRobust(model, maxSteps); err != nil {
		return errResp(err)
	}
	steps[h] = model.Current()
	wireStep := wire.FromStep(model.Current())
	return jsonResp(response{Handle: h, Step: &wireStep})
}

func runBatch(args []js.Value, run func(*train.Model, float64, int) error) interface{} {
	if len(args) < 3 {
		return errResp(errMissingArgs)
	}
	h := args[0].Int()
	model, ok := models[h]
	if !ok {
		return errResp(errUnknownHandle)
	}
	rate := args[1].Float()
	maxSteps := args[2].Int()
	if err := run(model, rate, maxSteps); err != nil {
		return errResp(err)
	}
	steps[h] = model.Current()
	wireStep := wire.FromStep(model.Current())
	return jsonResp(response{Handle: h, Step: &wireStep})
}

// expand_targets(targetsJSON) -> {targets}
func expandTargetsFn(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errResp(errMissingArgs)
	}
	given, err := parseTargetsMap(args[0].String())
	if err != nil {
		return errResp(err)
	}
	tg, err := engine.ExpandTargets(given)
	if err != nil {
		return errResp(err)
	}
	return jsonResp(response{Targets: wire.TargetsMap(tg)})
}

// is_converged(handle, threshold) -> {converged}
func isConvergedFn(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResp(errMissingArgs)
	}
	h := args[0].Int()
	step, ok := steps[h]
	if !ok {
		return errResp(errUnknownHandle)
	}
	return jsonResp(response{Converged: engine.IsConverged(step, args[1].Float())})
}

// check_polygon_validity(handle) -> {issues}
func checkPolygonValidityFn(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errResp(errMissingArgs)
	}
	h := args[0].Int()
	step, ok := steps[h]
	if !ok {
		return errResp(errUnknownHandle)
	}
	return jsonResp(response{Issues: engine.CheckPolygonValidity(step)})
}

// tiered_is_keyframe(bucketSize, index) -> {isKeyframe}
func tieredIsKeyframeFn(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResp(errMissingArgs)
	}
	cfg := trace.Config{BucketSize: args[0].Int()}
	return jsonResp(response{IsKeyframe: engine.TieredIsKeyframe(cfg, args[1].Int())})
}

// tiered_nearest_keyframe(bucketSize, index) -> {nearestKeyframe}
func tieredNearestKeyframeFn(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResp(errMissingArgs)
	}
	cfg := trace.Config{BucketSize: args[0].Int()}
	return jsonResp(response{NearestKeyframe: engine.TieredNearestKeyframe(cfg, args[1].Int())})
}

