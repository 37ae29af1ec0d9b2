package entities

// Match is a template that cleared the threshold for one document.
// Byte offsets are half-open: the matched text is content[StartIndex:EndIndex].
type Match struct {
	Key        string  `json:"key"`
	Score      float64 `json:"score"` // 0.0-1.0
	StartLine  int     `json:"start_line"`
	EndLine    int     `json:"end_line"` // inclusive
	StartIndex int     `json:"start_index"`
	EndIndex   int     `json:"end_index"`
	Category   string  `json:"category"`
}

// CopyrightStatement is a recognized copyright notice span
type CopyrightStatement struct {
	Value      string `json:"value"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
}

// Holder is the holder name found inside a CopyrightStatement span
type Holder struct {
	Value      string `json:"value"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
}

// Contains reports whether the holder span lies within the statement span
func (s CopyrightStatement) Contains(h Holder) bool {
	return h.StartIndex >= s.StartIndex && h.EndIndex <= s.EndIndex
}
