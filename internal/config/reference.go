package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/risk-cli/internal/model"
)

// SectionDef defines one manual section and its selectable factor texts.
type SectionDef struct {
	Name    string   `yaml:"name"`
	Factors []string `yaml:"factors"`
}

// Reference is the immutable reference data loaded once at startup. Nothing
// mutates it afterwards, so it is shared without locking.
type Reference struct {
	// Geography risk tables. Province keys are title-cased names; the two
	// tables are merged into one lookup space by the matcher.
	Provinces map[string]model.Level `yaml:"provinces"`
	Countries map[string]model.Level `yaml:"countries"`

	// Legal-entity registry with pre-assigned levels, and the firm's own
	// client registry (names only, no level).
	Entities       []model.RegistryEntry `yaml:"entities"`
	ClientRegistry []string              `yaml:"client_registry"`

	// Professionals of the firm, used for CLI completion only.
	Professionals []string `yaml:"professionals"`

	// Keywords is the fallback table: legal-form tokens per risk level,
	// matched lowercase. GenericCategories names the synthetic suggestion
	// produced when a keyword matches. ManualCategories is the hand-pick
	// fallback when nothing matches at all.
	Keywords          map[model.Level][]string `yaml:"keywords"`
	GenericCategories map[model.Level]string   `yaml:"generic_categories"`
	ManualCategories  map[string]model.Level   `yaml:"manual_categories"`

	// Services carries the professional-service baselines and the
	// table-A-only flag set.
	Services []model.ServicePrestation `yaml:"services"`

	// Manual section definitions per group. The automatic sections
	// (legal nature, geography, amount) are not listed here.
	SectionsA []SectionDef `yaml:"sections_a"`
	SectionsB []SectionDef `yaml:"sections_b"`

	// DueDiligenceThreshold is the amount above which identity verification
	// is mandatory regardless of score (advisory note only).
	DueDiligenceThreshold float64 `yaml:"due_diligence_threshold"`
}

// DefaultReference returns the built-in reference data. It mirrors the
// published province cash-risk table and the service baseline table; a
// deployment overrides it with a reference file.
func DefaultReference() *Reference {
	return &Reference{
		Provinces: map[string]model.Level{
			"Milano":          4,
			"Roma":            4,
			"Napoli":          4,
			"Caserta":         4,
			"Reggio Calabria": 4,
			"Palermo":         3,
			"Catania":         3,
			"Bari":            3,
			"Prato":           3,
			"Imperia":         3,
			"Torino":          2,
			"Firenze":         2,
			"Brescia":         2,
			"Padova":          2,
			"Verona":          2,
			"Bologna":         1,
			"Genova":          1,
			"Trento":          1,
			"Bolzano":         1,
			"Udine":           1,
			"Aosta":           1,
		},
		Countries: map[string]model.Level{
			"Italia":         1,
			"Francia":        1,
			"Germania":       1,
			"Spagna":         1,
			"Usa":            1,
			"Regno Unito":    2,
			"Svizzera":       2,
			"Lussemburgo":    2,
			"Cina":           3,
			"Russia":         3,
			"Turchia":        3,
			"Emirati Arabi":  3,
			"Afghanistan":    4,
			"Iran":           4,
			"Corea Del Nord": 4,
			"Panama":         4,
			"Isole Cayman":   4,
			"Monaco":         3,
			"San Marino":     2,
			"Albania":        3,
			"Nigeria":        4,
		},
		Entities: []model.RegistryEntry{
			{Name: "Intesa Sanpaolo", Level: 1, Descriptor: "Italian bank, supervised entity"},
			{Name: "UniCredit", Level: 1, Descriptor: "Italian bank, supervised entity"},
			{Name: "Banca Monte dei Paschi di Siena", Level: 1, Descriptor: "Italian bank, supervised entity"},
			{Name: "Banco BPM", Level: 1, Descriptor: "Italian bank, supervised entity"},
			{Name: "Mediobanca", Level: 1, Descriptor: "Italian bank, supervised entity"},
			{Name: "Assicurazioni Generali", Level: 1, Descriptor: "insurance company, supervised entity"},
			{Name: "UnipolSai", Level: 1, Descriptor: "insurance company, supervised entity"},
			{Name: "Allianz Italia", Level: 1, Descriptor: "insurance company, supervised entity"},
			{Name: "Poste Italiane", Level: 1, Descriptor: "state-controlled listed company"},
			{Name: "ENI", Level: 1, Descriptor: "listed company, FTSE MIB"},
			{Name: "ENEL", Level: 1, Descriptor: "listed company, FTSE MIB"},
			{Name: "Leonardo", Level: 1, Descriptor: "listed company, FTSE MIB"},
			{Name: "Stellantis", Level: 1, Descriptor: "listed company"},
			{Name: "Ferrovie dello Stato", Level: 1, Descriptor: "state-controlled company"},
			{Name: "Comune di", Level: 2, Descriptor: "public administration, municipality"},
			{Name: "Regione", Level: 2, Descriptor: "public administration, region"},
			{Name: "Ministero", Level: 2, Descriptor: "public administration, ministry"},
			{Name: "Camera di Commercio", Level: 2, Descriptor: "public body"},
			{Name: "Università", Level: 2, Descriptor: "public body, university"},
		},
		ClientRegistry: []string{},
		Professionals:  []string{},
		Keywords: map[model.Level][]string{
			1: {"banca", "assicurazion", "sim", "sgr"},
			2: {"snc", "sas", "studio associato", "fondazione"},
			3: {"srl", "srls", "spa", "societa", "cooperativa"},
			4: {"trust", "fiduciaria", "offshore", "anstalt"},
		},
		GenericCategories: map[model.Level]string{
			1: "Supervised entity / large company",
			2: "Medium enterprise / professional firm",
			3: "SME / small company",
			4: "High risk / trust / offshore",
		},
		ManualCategories: map[string]model.Level{
			"Supervised entity, listed company or public administration": 1,
			"Medium enterprise or professional firm":                     2,
			"SME, small company or individual":                           3,
			"Trust, fiduciary structure or offshore vehicle":             4,
		},
		Services: []model.ServicePrestation{
			{Name: "Contract consulting", BaselineLevel: 2},
			{Name: "Tax consulting", BaselineLevel: 2},
			{Name: "Estate administration and liquidation", BaselineLevel: 2},
			{Name: "Asset custody", BaselineLevel: 2},
			{Name: "Valuations and appraisals", BaselineLevel: 2},
			{Name: "Corporate consulting", BaselineLevel: 3},
			{Name: "Business consulting", BaselineLevel: 3},
			{Name: "Company formation", BaselineLevel: 3},
			{Name: "Trust formation and administration", BaselineLevel: 3},
			{Name: "Bookkeeping", BaselineLevel: 3, TableAOnly: true},
			{Name: "Statutory audit", BaselineLevel: 3, TableAOnly: true},
			{Name: "Extraordinary finance operations", BaselineLevel: 4},
		},
		SectionsA: []SectionDef{
			{
				Name: "A.2 - Prevailing activity",
				Factors: []string{
					"Cash-intensive business sector",
					"Activity inconsistent with the declared corporate purpose",
					"Recently started or frequently changed activity",
				},
			},
			{
				Name: "A.3 - Behavior at engagement",
				Factors: []string{
					"Reluctance to provide identification documents",
					"Unjustified urgency in executing the engagement",
					"Use of intermediaries without apparent reason",
					"Inconsistent or evasive answers on the beneficial owner",
				},
			},
		},
		SectionsB: []SectionDef{
			{
				Name: "B.1 - Type of operation",
				Factors: []string{
					"Atypical or unusually complex operation",
					"Operation with no apparent economic rationale",
					"Cross-border elements without justification",
				},
			},
			{
				Name: "B.2 - Methods of execution",
				Factors: []string{
					"Settlement in cash or bearer instruments",
					"Payments from or to third parties unrelated to the operation",
					"Use of accounts in non-cooperative jurisdictions",
				},
			},
			{
				Name: "B.4 - Frequency and duration",
				Factors: []string{
					"Repeated operations of the same kind over a short period",
					"Engagement duration inconsistent with the stated purpose",
				},
			},
			{
				Name: "B.5 - Reasonableness",
				Factors: []string{
					"Amount inconsistent with the client's economic profile",
					"Conditions far from market standards",
				},
			},
		},
		DueDiligenceThreshold: 15000,
	}
}

// LoadReference reads the reference-data file at path, or returns the
// built-in defaults when path is empty. The result is validated.
func LoadReference(path string) (*Reference, error) {
	ref := DefaultReference()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrap(err, "config: read reference file")
		}
		ref = &Reference{}
		if err := yaml.Unmarshal(data, ref); err != nil {
			return nil, eris.Wrap(err, "config: parse reference file")
		}
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	return ref, nil
}

// Validate checks that every level in the reference data is on the 1-4
// scale and that the structural tables are non-empty.
func (r *Reference) Validate() error {
	var errs []string

	for name, lvl := range r.Provinces {
		if !lvl.Valid() {
			errs = append(errs, fmt.Sprintf("province %q has level %d", name, lvl))
		}
	}
	for name, lvl := range r.Countries {
		if !lvl.Valid() {
			errs = append(errs, fmt.Sprintf("country %q has level %d", name, lvl))
		}
	}
	for _, e := range r.Entities {
		if !e.Level.Valid() {
			errs = append(errs, fmt.Sprintf("entity %q has level %d", e.Name, e.Level))
		}
	}
	for lvl := range r.Keywords {
		if !lvl.Valid() {
			errs = append(errs, fmt.Sprintf("keyword table has level %d", lvl))
		}
	}
	for name, lvl := range r.ManualCategories {
		if !lvl.Valid() {
			errs = append(errs, fmt.Sprintf("manual category %q has level %d", name, lvl))
		}
	}
	if len(r.Services) == 0 {
		errs = append(errs, "no services defined")
	}
	for _, s := range r.Services {
		if !s.BaselineLevel.Valid() {
			errs = append(errs, fmt.Sprintf("service %q has baseline level %d", s.Name, s.BaselineLevel))
		}
	}
	if len(r.SectionsA) == 0 {
		errs = append(errs, "no A-section definitions")
	}
	if r.DueDiligenceThreshold < 0 {
		errs = append(errs, "due_diligence_threshold must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: reference validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ServiceByName looks up a configured professional service.
func (r *Reference) ServiceByName(name string) (model.ServicePrestation, bool) {
	for _, s := range r.Services {
		if s.Name == name {
			return s, true
		}
	}
	return model.ServicePrestation{}, false
}
