// Package testkit generates deterministic survey fixtures for tests.
// Everything is driven by a seed so fixtures are reproducible and
// assertions on derived statistics stay stable.
package testkit

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"switchlens/domain/survey"
)

// GeneratorConfig configures the survey respondent generator
type GeneratorConfig struct {
	RespondentCount int
	Product         survey.Product
	Insurers        []string
	AgeBands        []string
	Regions         []string
	PaymentTypes    []string
	ShopperRate     float64
	SwitcherRate    float64 // among non-new-to-market respondents
	NewToMarketRate float64
	StartYearMonth  int // YYYYMM
	Months          int // renewal months spanned from StartYearMonth
	Seed            int64
}

// DefaultConfig returns sensible defaults for a mid-size motor wave
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		RespondentCount: 1000,
		Product:         survey.ProductMotor,
		Insurers:        []string{"Alpha", "Beacon", "Crest", "Dunmore", "Everline"},
		AgeBands:        []string{"18-24", "25-34", "35-49", "50-64", "65+"},
		Regions:         []string{"North", "South", "Midlands", "Scotland", "Wales"},
		PaymentTypes:    []string{"Annual", "Monthly"},
		ShopperRate:     0.55,
		SwitcherRate:    0.20,
		NewToMarketRate: 0.05,
		StartYearMonth:  202401,
		Months:          24,
		Seed:            42,
	}
}

// Generator produces deterministic survey respondents
type Generator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewGenerator creates a generator for the given config
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate produces the configured number of respondents
func (g *Generator) Generate() []survey.Respondent {
	out := make([]survey.Respondent, 0, g.config.RespondentCount)
	for i := 0; i < g.config.RespondentCount; i++ {
		out = append(out, g.respondent(i))
	}
	return out
}

// GenerateDataset wraps Generate in a Dataset with the given optional
// question columns available.
func (g *Generator) GenerateDataset(optionalColumns ...string) *survey.Dataset {
	return survey.NewDataset(g.Generate(), optionalColumns...)
}

func (g *Generator) respondent(i int) survey.Respondent {
	current := g.pick(g.config.Insurers)
	newToMarket := g.rng.Float64() < g.config.NewToMarketRate

	r := survey.Respondent{
		UniqueID:         g.respondentID(i),
		Product:          g.config.Product,
		RenewalYearMonth: g.renewalMonth(),
		CurrentCompany:   current,
		AgeBand:          g.pick(g.config.AgeBands),
		Region:           g.pick(g.config.Regions),
		PaymentType:      g.pick(g.config.PaymentTypes),
		IsShopper:        g.rng.Float64() < g.config.ShopperRate,
		IsNewToMarket:    newToMarket,
	}
	if newToMarket {
		// No prior policy: neither switcher nor retained, no previous insurer.
		return r
	}
	if g.rng.Float64() < g.config.SwitcherRate {
		r.IsSwitcher = true
		r.IsShopper = true // switchers shopped by definition
		r.PreviousCompany = g.pickOther(g.config.Insurers, current)
	} else {
		r.IsRetained = true
		r.PreviousCompany = current
	}
	return r
}

func (g *Generator) respondentID(i int) string {
	// Stable prefix keeps fixtures greppable; uuid suffix keeps them unique.
	return fmt.Sprintf("resp_%04d_%s", i+1, uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%d:%d", g.config.Seed, i))))
}

func (g *Generator) renewalMonth() int {
	offset := g.rng.Intn(g.config.Months)
	year := g.config.StartYearMonth / 100
	month := g.config.StartYearMonth%100 + offset
	year += (month - 1) / 12
	month = (month-1)%12 + 1
	return year*100 + month
}

func (g *Generator) pick(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[g.rng.Intn(len(values))]
}

func (g *Generator) pickOther(values []string, exclude string) string {
	if len(values) < 2 {
		return exclude
	}
	for {
		v := g.pick(values)
		if v != exclude {
			return v
		}
	}
}
