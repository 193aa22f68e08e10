// Package mcp is the external interface layer: an in-process API over
// internal/model + internal/driver, and a thin MCP JSON-RPC tool surface
// built on top of it for the same operations.
package mcp

import (
	"github.com/areumfire/dcf-engine/internal/distribution"
	"github.com/areumfire/dcf-engine/internal/driver"
	"github.com/areumfire/dcf-engine/internal/model"
	"github.com/areumfire/dcf-engine/internal/rng"
	"github.com/google/uuid"
)

// API is the in-process boundary every external transport (the MCP tool
// surface in this repo, any HTTP layer built on top of it) is expected to
// mirror almost 1-to-1. It is not safe for concurrent use: the core is
// single-threaded by construction, and all model mutation happens between
// driver invocations.
type API struct {
	models map[string]*model.FinancialModel
}

// NewAPI creates an empty API with no stored models.
func NewAPI() *API {
	return &API{models: make(map[string]*model.FinancialModel)}
}

func (a *API) store(m *model.FinancialModel) string {
	id := uuid.New().String()
	a.models[id] = m
	return id
}

func (a *API) get(id string) (*model.FinancialModel, error) {
	m, ok := a.models[id]
	if !ok {
		return nil, &NotFoundError{Kind: "model", ID: id}
	}
	return m, nil
}

// LoadModel parses a model document and stores it, returning the new
// model's id. The document's own streams are re-validated via
// model.FromDocument/AddStream, so a malformed document is rejected here
// rather than later at RunDeterministic.
func (a *API) LoadModel(doc model.Document) (string, error) {
	m, err := model.FromDocument(doc)
	if err != nil {
		return "", err
	}
	if err := m.Validate(); err != nil {
		return "", err
	}
	return a.store(m), nil
}

// SaveModel snapshots the stored model back into its document form.
func (a *API) SaveModel(id string) (model.Document, error) {
	m, err := a.get(id)
	if err != nil {
		return model.Document{}, err
	}
	return m.ToDocument(), nil
}

// NewModel creates and stores an empty model with the given name and
// settings, returning its id.
func (a *API) NewModel(name string, settings model.ModelSettings) string {
	return a.store(model.New(name, settings))
}

// AddStream adds a stream to the given model.
func (a *API) AddStream(modelID string, s model.Stream) error {
	m, err := a.get(modelID)
	if err != nil {
		return err
	}
	return m.AddStream(s)
}

// UpdateStream replaces a stream in the given model.
func (a *API) UpdateStream(modelID, streamID string, s model.Stream) error {
	m, err := a.get(modelID)
	if err != nil {
		return err
	}
	return m.UpdateStream(streamID, s)
}

// RemoveStream removes a stream from the given model.
func (a *API) RemoveStream(modelID, streamID string) error {
	m, err := a.get(modelID)
	if err != nil {
		return err
	}
	return m.RemoveStream(streamID)
}

// RunDeterministic runs a single deterministic pass over the model.
func (a *API) RunDeterministic(modelID string) (*driver.DeterministicResult, error) {
	m, err := a.get(modelID)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return driver.Deterministic(m)
}

// RunMonteCarlo runs a Monte Carlo simulation with the given
// simulation count (0 selects the driver's default of 10,000) and seed.
func (a *API) RunMonteCarlo(modelID string, nSimulations int, seed int64) (*driver.MonteCarloResult, error) {
	m, err := a.get(modelID)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return driver.MonteCarlo(m, driver.MonteCarloConfig{NSimulations: nSimulations, Seed: seed})
}

// RunSensitivity runs the tornado scan.
func (a *API) RunSensitivity(modelID string) ([]driver.TornadoEntry, error) {
	m, err := a.get(modelID)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return driver.Tornado(m)
}

// EnumerateBreakevenParameters lists every parameter a breakeven search can
// target, along with its current P10/P50/P90.
func (a *API) EnumerateBreakevenParameters(modelID string) ([]driver.UncertainParameter, error) {
	m, err := a.get(modelID)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return driver.EnumerateUncertainParameters(m)
}

// RunBreakeven solves for the scalar value of req.ParameterName that
// reaches req.TargetNPV.
func (a *API) RunBreakeven(modelID string, req driver.BreakevenRequest) (*driver.BreakevenResult, error) {
	m, err := a.get(modelID)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return driver.Breakeven(m, req)
}

// PreviewRequest is the input to PreviewDistribution: the distribution
// itself plus the active window and horizon the preview covers.
type PreviewRequest struct {
	Distribution distribution.Distribution
	Horizon      int
	StartMonth   int
	EndMonth     *int
	Seed         int64
}

// PreviewDistribution produces the month-by-month preview series a caller
// can render before attaching the distribution to a stream field.
func (a *API) PreviewDistribution(req PreviewRequest) (*distribution.PreviewSeries, error) {
	var src *rng.Source
	if req.Seed != 0 {
		src = rng.New(req.Seed)
	} else {
		src = rng.New(1)
	}
	return req.Distribution.Preview(req.StartMonth, req.EndMonth, req.Horizon, src)
}
