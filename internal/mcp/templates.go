package mcp

import (
	"github.com/areumfire/dcf-engine/internal/distribution"
	"github.com/areumfire/dcf-engine/internal/model"
)

// templates holds the named starting-point documents ListTemplates/
// LoadTemplate serve, one per common model shape.
var templates = map[string]model.Document{
	"flat-revenue": {
		Name: "Flat revenue",
		Settings: model.ModelSettings{
			ForecastMonths:     12,
			DiscountRate:       fixedDist(0.12),
			TerminalGrowthRate: 0,
			CalculationMode:    model.ModeNPV,
		},
		Streams: []model.Stream{
			{ID: "revenue", Name: "Revenue", Kind: model.Revenue, StartMonth: 0, EndMonth: intPtr(11), Amount: fixedPtr(1000)},
		},
	},
	"royalty-child": {
		Name: "Parent revenue with royalty cost",
		Settings: model.ModelSettings{
			ForecastMonths:     13,
			DiscountRate:       fixedDist(0.12),
			TerminalGrowthRate: 0,
			CalculationMode:    model.ModeNPV,
		},
		Streams: []model.Stream{
			{ID: "parent", Name: "Product sales", Kind: model.Revenue, StartMonth: 0, EndMonth: intPtr(11), Amount: fixedPtr(1000)},
			{
				ID: "royalty", Name: "Royalty payment", Kind: model.Cost,
				ParentStreamID: strPtr("parent"), Amount: fixedPtr(0.2), AmountIsRatio: true,
				ConversionRate: 1, TriggerDelayMonths: 1,
			},
		},
	},
	"perpetual-saas": {
		Name: "Perpetual SaaS revenue",
		Settings: model.ModelSettings{
			ForecastMonths:     60,
			DiscountRate:       fixedDist(0.12),
			TerminalGrowthRate: 0.02,
			CalculationMode:    model.ModeNPV,
		},
		Streams: []model.Stream{
			{ID: "subscriptions", Name: "Subscription revenue", Kind: model.Revenue, StartMonth: 0, Amount: fixedPtr(100)},
		},
	},
}

// ListTemplates returns the names of every built-in starting-point
// document, in no particular order.
func (a *API) ListTemplates() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	return names
}

// LoadTemplate materializes a new model from the named template and stores
// it, returning the new model's id.
func (a *API) LoadTemplate(name string) (string, error) {
	doc, ok := templates[name]
	if !ok {
		return "", &NotFoundError{Kind: "template", ID: name}
	}
	m, err := model.FromDocument(doc)
	if err != nil {
		return "", err
	}
	return a.store(m), nil
}

func fixedDist(v float64) distribution.Distribution {
	return distribution.Distribution{Kind: distribution.Fixed, Params: map[string]float64{"value": v}}
}

func fixedPtr(v float64) *distribution.Distribution {
	d := fixedDist(v)
	return &d
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
