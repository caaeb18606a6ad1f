package domain

import "fmt"

// PromptVerbs counts the %s placeholders of a Sprintf template. A literal
// percent must be written %%; any other verb is rejected so a template can
// never consume or mangle the arguments it is formatted with.
func PromptVerbs(tmpl string) (int, error) {
	n := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		if i+1 == len(tmpl) {
			return 0, fmt.Errorf("trailing %% in prompt: %w", ErrInvalidInput)
		}
		i++
		switch tmpl[i] {
		case '%':
		case 's':
			n++
		default:
			return 0, fmt.Errorf("prompt verb %%%c at byte %d: %w", tmpl[i], i-1, ErrInvalidInput)
		}
	}
	return n, nil
}
