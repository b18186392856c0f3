package entity

// FieldResult reports the outcome of one field's pattern cascade. Value is
// always the string form even when the extracted datum is numeric or a list.
type FieldResult struct {
	FieldName   string  `json:"field_name"`
	DisplayName string  `json:"display_name"`
	Required    bool    `json:"required"`
	Matched     bool    `json:"matched"`
	Value       *string `json:"value"`
	MatchMethod string  `json:"match_method,omitempty"`
}

// MatchResult is the full outcome of evaluating one template against one text.
type MatchResult struct {
	Success       bool           `json:"success"`
	MatchScore    float64        `json:"match_score"`
	FieldsMatched int            `json:"fields_matched"`
	FieldsTotal   int            `json:"fields_total"`
	ExtractedData map[string]any `json:"extracted_data"`
	FieldResults  []FieldResult  `json:"field_results"`
	DebugInfo     DebugInfo      `json:"debug_info"`
}

// DebugInfo carries operator-facing diagnostics for a single evaluation.
// It is threaded through the engine explicitly; there is no ambient debug state.
type DebugInfo struct {
	TextSample    string                `json:"text_sample"`
	MarkerScore   float64               `json:"marker_score"`
	MarkerResults []MarkerResult        `json:"marker_results"`
	Fields        map[string]FieldDebug `json:"fields"`
}

// MarkerResult records whether one identification marker was found.
type MarkerResult struct {
	Text     string `json:"text"`
	Required bool   `json:"required"`
	Matched  bool   `json:"matched"`
}

// FieldDebug lists every pattern attempted for a field and every raw match
// found, kept even for unmatched fields.
type FieldDebug struct {
	PatternsTried []PatternAttempt `json:"patterns_tried"`
	MatchesFound  []PatternMatch   `json:"matches_found"`
}

type PatternAttempt struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Error   string `json:"error,omitempty"`
}

type PatternMatch struct {
	PatternName string   `json:"pattern_name"`
	Value       string   `json:"value"`
	Groups      []string `json:"groups,omitempty"`
}

// LineItem is the materialized form of one entry of an items array.
type LineItem struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Condition   string  `json:"condition"`
	ItemType    string  `json:"item_type"`
	ProductLink string  `json:"product_link,omitempty"`
}
