// Package file provides filesystem-backed driven adapters:
//
//   - ConfigStore: TOML configuration with an ANSWERDESK_* environment overlay
//   - PromptStore: user-editable LLM prompts with embedded defaults
//   - PolicyStore: optional rules.yaml overriding verdict and approval policy
//   - ContentStore: raw uploaded document bytes
package file
