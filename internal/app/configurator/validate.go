package configurator

import (
	"fmt"
	"strings"
)

// ValidationCode classifies a failed submission gate. These are results,
// not errors: the engine never raises them.
type ValidationCode string

const (
	CodeIllegalCombination     ValidationCode = "illegal_combination"
	CodeMissingRequiredFile    ValidationCode = "missing_required_file"
	CodeUnsatisfiedRequirement ValidationCode = "unsatisfied_requirement"
)

// ValidationResult reports whether the session may be submitted, and if
// not, which line blocks it.
type ValidationResult struct {
	Valid     bool           `json:"valid"`
	Code      ValidationCode `json:"code,omitempty"`
	Attribute string         `json:"attribute,omitempty"`
	Message   string         `json:"message,omitempty"`
}

func validResult() ValidationResult {
	return ValidationResult{Valid: true}
}

// Validate runs the submission gate over every active product: the current
// combinations must be legal, every selected value demanding a file must
// have one recorded, and the gelcoat trigger/required pair must be
// satisfied. The first failure wins.
func (s *Session) Validate() ValidationResult {
	for _, p := range s.Graph.Active {
		if !IsPossibleCombination(p) {
			return ValidationResult{
				Valid:   false,
				Code:    CodeIllegalCombination,
				Message: fmt.Sprintf("%s has an invalid combination of values", p.DisplayName),
			}
		}
	}

	if res := s.validateRequiredFiles(); !res.Valid {
		return res
	}
	return s.validateGelcoatRequirement()
}

func (s *Session) validateRequiredFiles() ValidationResult {
	for _, p := range append(append([]*Product{}, s.Graph.Active...), s.Graph.Candidates...) {
		for _, line := range p.Lines {
			requiresFile := false
			for _, v := range line.SelectedValues() {
				if v.RequiredFile {
					requiresFile = true
					break
				}
			}
			if !requiresFile {
				continue
			}
			key := LineKey{TemplateID: p.TemplateID, LineID: line.ID}
			if _, ok := s.conditionalFiles[key]; !ok {
				return ValidationResult{
					Valid:     false,
					Code:      CodeMissingRequiredFile,
					Attribute: line.Attribute.Name,
					Message:   fmt.Sprintf("please upload a file for %s", line.Attribute.Name),
				}
			}
		}
	}
	return validResult()
}

// validateGelcoatRequirement enforces the trigger/required-flag pair: when
// the trigger line is set to its affirmative value, the flagged line must
// carry a real selection, not a placeholder.
func (s *Session) validateGelcoatRequirement() ValidationResult {
	for _, p := range append(append([]*Product{}, s.Graph.Active...), s.Graph.Candidates...) {
		roles := s.roles[p.TemplateID]
		if roles.gelcoatTriggerLineID == 0 || roles.gelcoatRequiredLineID == 0 {
			continue
		}
		trigger := p.LineByID(roles.gelcoatTriggerLineID)
		required := p.LineByID(roles.gelcoatRequiredLineID)
		if trigger == nil || required == nil || !s.isAffirmative(trigger) {
			continue
		}

		hasValid := false
		for _, v := range required.SelectedValues() {
			if required.Attribute.DisplayType == DisplayM2O {
				if v.M2OResID > 0 {
					hasValid = true
				}
				continue
			}
			if v.Name != "" && !isPlaceholderName(v.Name) {
				hasValid = true
			}
		}
		if !hasValid {
			return ValidationResult{
				Valid:     false,
				Code:      CodeUnsatisfiedRequirement,
				Attribute: required.Attribute.Name,
				Message: fmt.Sprintf(
					"%s is required when %s is set to yes",
					required.Attribute.Name, trigger.Attribute.Name,
				),
			}
		}
	}
	return validResult()
}

func (s *Session) isAffirmative(line *AttributeLine) bool {
	for _, v := range line.SelectedValues() {
		if strings.EqualFold(v.Name, "yes") {
			return true
		}
	}
	return false
}

func isPlaceholderName(name string) bool {
	return strings.Contains(strings.ToLower(name), "select")
}
