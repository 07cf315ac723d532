// Package analyzer orchestrates one upload through inference,
// interpretation, and rendering.
package analyzer

import (
	"context"
	"image"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radai/radai/internal/logging"
	"github.com/radai/radai/internal/render"
	"github.com/radai/radai/internal/ultralytics"
	"github.com/radai/radai/internal/verdict"
)

// Invoker is the remote inference call used by the analyzer.
type Invoker interface {
	Predict(ctx context.Context, imageBytes []byte) (*ultralytics.InferenceResult, error)
}

// Result is the complete outcome for one analyzed upload. It is produced
// whole or not at all; a failed stage yields no partial result.
type Result struct {
	RequestID string
	Verdict   verdict.Verdict
	Annotated image.Image
	Raw       []byte
}

// Analyzer composes the three stateless analysis steps. The interpret and
// annotate seams exist so tests can observe or replace individual stages.
type Analyzer struct {
	invoker   Invoker
	interpret func(*ultralytics.InferenceResult) verdict.Verdict
	annotate  func([]byte, []ultralytics.Detection) (image.Image, error)
	logger    *zap.Logger
}

// New constructs an analyzer around the given inference invoker.
func New(invoker Invoker, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		invoker:   invoker,
		interpret: verdict.Interpret,
		annotate:  render.Annotate,
		logger:    logger.Named("analyzer"),
	}
}

// Analyze runs a single upload through predict, interpret, and annotate.
// Each invocation is independent; identical inputs produce identical
// verdicts modulo the remote service's own behavior.
func (a *Analyzer) Analyze(ctx context.Context, imageBytes []byte) (*Result, error) {
	requestID := uuid.NewString()
	opLogger := logging.WithOperation(a.logger, "analyzer.analyze", requestID)

	result, err := a.invoker.Predict(ctx, imageBytes)
	if err != nil {
		wrapped := logging.NewOperationError("analyzer.predict", requestID, err)
		opLogger.Error("inference failed", zap.Error(wrapped))
		return nil, wrapped
	}

	v := a.interpret(result)

	annotated, err := a.annotate(imageBytes, v.Detections)
	if err != nil {
		wrapped := logging.NewOperationError("analyzer.render", requestID, err)
		opLogger.Error("rendering failed", zap.Error(wrapped))
		return nil, wrapped
	}

	opLogger.Info("analysis completed",
		zap.Bool("positive", v.Positive),
		zap.Int("detections", len(v.Detections)),
		zap.String("message", v.Message))

	return &Result{
		RequestID: requestID,
		Verdict:   v,
		Annotated: annotated,
		Raw:       result.Raw,
	}, nil
}
