package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

// Ensure PolicyStore implements the interface.
var _ driven.PolicyStore = (*PolicyStore)(nil)

// RulesFileName is the optional policy file in the config directory.
const RulesFileName = "rules.yaml"

// rulesFile mirrors rules.yaml. Absent fields keep the built-in value;
// a present but empty hint list disables that family.
type rulesFile struct {
	Verdict struct {
		SupportedThreshold   *float64  `yaml:"supported_threshold"`
		ConditionalThreshold *float64  `yaml:"conditional_threshold"`
		MaxScoreSpread       *float64  `yaml:"max_score_spread"`
		ConditionalHints     *[]string `yaml:"conditional_hints"`
		NegativeHints        *[]string `yaml:"negative_hints"`
		PositiveHints        *[]string `yaml:"positive_hints"`
	} `yaml:"verdict"`
	Approval struct {
		MinConfidence  *float64 `yaml:"min_confidence"`
		MinReviewScore *int     `yaml:"min_review_score"`
	} `yaml:"approval"`
}

// PolicyStore reads verdict and approval policy overrides from rules.yaml.
// A missing file yields the defaults. The file is read once.
type PolicyStore struct {
	path  string
	once  sync.Once
	rules rulesFile
	err   error
}

// NewPolicyStore creates a policy store for dir/rules.yaml.
func NewPolicyStore(dir string) *PolicyStore {
	return &PolicyStore{path: filepath.Join(dir, RulesFileName)}
}

// Path returns the rules file path.
func (s *PolicyStore) Path() string {
	return s.path
}

// VerdictPolicy returns the verdict policy with overrides applied.
func (s *PolicyStore) VerdictPolicy() (domain.VerdictPolicy, error) {
	p := domain.DefaultVerdictPolicy()
	if err := s.load(); err != nil {
		return p, err
	}

	v := s.rules.Verdict
	setFloat(&p.SupportedThreshold, v.SupportedThreshold)
	setFloat(&p.ConditionalThreshold, v.ConditionalThreshold)
	setFloat(&p.MaxScoreSpread, v.MaxScoreSpread)
	setHints(&p.ConditionalHints, v.ConditionalHints)
	setHints(&p.NegativeHints, v.NegativeHints)
	setHints(&p.PositiveHints, v.PositiveHints)

	if p.ConditionalThreshold > p.SupportedThreshold {
		return domain.DefaultVerdictPolicy(), fmt.Errorf(
			"%s: conditional_threshold %.2f exceeds supported_threshold %.2f: %w",
			s.path, p.ConditionalThreshold, p.SupportedThreshold, domain.ErrInvalidInput)
	}
	return p, nil
}

// ApprovalPolicy returns the approval policy with overrides applied.
func (s *PolicyStore) ApprovalPolicy() (domain.ApprovalPolicy, error) {
	p := domain.DefaultApprovalPolicy()
	if err := s.load(); err != nil {
		return p, err
	}

	a := s.rules.Approval
	setFloat(&p.MinConfidence, a.MinConfidence)
	if a.MinReviewScore != nil {
		p.MinReviewScore = *a.MinReviewScore
	}

	if p.MinConfidence < 0 || p.MinConfidence > 1 || p.MinReviewScore < 0 || p.MinReviewScore > 100 {
		return domain.DefaultApprovalPolicy(), fmt.Errorf("%s: approval thresholds out of range: %w", s.path, domain.ErrInvalidInput)
	}
	return p, nil
}

func (s *PolicyStore) load() error {
	s.once.Do(func() {
		data, err := os.ReadFile(s.path)
		if err != nil {
			if !os.IsNotExist(err) {
				s.err = fmt.Errorf("read %s: %w", s.path, err)
			}
			return
		}
		if err := yaml.Unmarshal(data, &s.rules); err != nil {
			s.err = fmt.Errorf("parse %s: %w: %w", s.path, domain.ErrInvalidInput, err)
		}
	})
	return s.err
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setHints(dst *[]string, v *[]string) {
	if v == nil {
		return
	}
	if *v == nil {
		*dst = []string{}
		return
	}
	*dst = *v
}
