package models

type WritingLength string

const (
	WritingLengthShort  WritingLength = "short"
	WritingLengthMedium WritingLength = "medium"
	WritingLengthLong   WritingLength = "long"
)

func (l WritingLength) Valid() bool {
	return l == WritingLengthShort || l == WritingLengthMedium || l == WritingLengthLong
}

type UserSettings struct {
	InputLanguage  *string        `json:"inputLanguage,omitempty"`
	OutputLanguage *string        `json:"outputLanguage,omitempty"`
	WritingStyle   *string        `json:"writingStyle,omitempty"`
	WritingLength  *WritingLength `json:"writingLength,omitempty"`
}

// Merge overlays non-nil fields of patch onto s.
func (s UserSettings) Merge(patch UserSettings) UserSettings {
	if patch.InputLanguage != nil {
		s.InputLanguage = patch.InputLanguage
	}
	if patch.OutputLanguage != nil {
		s.OutputLanguage = patch.OutputLanguage
	}
	if patch.WritingStyle != nil {
		s.WritingStyle = patch.WritingStyle
	}
	if patch.WritingLength != nil {
		s.WritingLength = patch.WritingLength
	}
	return s
}
