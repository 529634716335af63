// Package form implements the form engine behind every dashboard modal.
//
// An Engine is built from an ordered list of model.Field descriptors. It
// owns the draft values (or defers to a parent through DelegatedState), the
// per-field error messages, a general banner error and the submitting flag.
// UI events arrive through OnFieldChange and OnKeyPress, Submit validates
// synchronously and then calls the injected SubmitFunc. Renderers consume
// RenderOptions and never mutate engine state.
//
//	engine, err := form.New(spec.Fields, form.WithSubmit(func(ctx context.Context, v model.Values) error {
//		return api.CreateCourse(ctx, v)
//	}))
//	...
//	outcome, err := engine.Submit(ctx)
//	if err != nil {
//		engine.ApplySubmitError(err)
//	}
package form
