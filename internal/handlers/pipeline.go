package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/middleware"
	"github.com/stockroom/backend/internal/models"
)

// Exchange is the state one request carries through its stages. Earlier
// stages fill it in for later ones; nothing is read from ambient context.
type Exchange struct {
	Writer  http.ResponseWriter
	Request *http.Request

	// ID is the validated {id} path parameter.
	ID     string
	Create models.CreateItemInput
	Update models.UpdateItemInput

	// Session is nil until a session stage loads one.
	Session *models.Session
}

// Stage is one named step. Returning an error stops the pipeline and hands
// the error to the error handler.
type Stage struct {
	Name string
	Run  func(*Exchange) error
}

// Pipeline runs its stages in order and is itself an http.Handler.
type Pipeline struct {
	stages []Stage
	errors *middleware.ErrorHandler
	logger *zap.Logger
}

func NewPipeline(errors *middleware.ErrorHandler, logger *zap.Logger, stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, errors: errors, logger: logger}
}

// With returns a new pipeline running p's stages followed by stages. p is
// left unchanged.
func (p *Pipeline) With(stages ...Stage) *Pipeline {
	combined := make([]Stage, 0, len(p.stages)+len(stages))
	combined = append(combined, p.stages...)
	combined = append(combined, stages...)
	return &Pipeline{stages: combined, errors: p.errors, logger: p.logger}
}

// Names lists the stage names in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

func (p *Pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ex := &Exchange{Writer: w, Request: r}
	for _, stage := range p.stages {
		if err := stage.Run(ex); err != nil {
			p.logger.Debug("pipeline stopped", zap.String("stage", stage.Name), zap.String("path", r.URL.Path))
			p.errors.Handle(w, r, err)
			return
		}
	}
}
