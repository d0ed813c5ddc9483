package feedback

// AnalyzeRequest asks for a full feedback analysis of a transcript.
type AnalyzeRequest struct {
	Transcript string `json:"transcript" validate:"required"`
	Depth      string `json:"depth,omitempty" validate:"omitempty,oneof=basic standard comprehensive expert"`
	FocusArea  string `json:"focus_area,omitempty" validate:"omitempty,oneof=clarity engagement structure energy professionalism"`
	// DurationSeconds of the source recording, for the speaking pace
	// estimate. Zero omits pace from the metrics.
	DurationSeconds float64 `json:"duration_seconds,omitempty" validate:"omitempty,min=0"`
}

// FocusRequest asks for feedback narrowed to one scoring dimension.
type FocusRequest struct {
	Transcript string `json:"transcript" validate:"required"`
	FocusArea  string `json:"focus_area" validate:"required,oneof=clarity engagement structure energy professionalism"`
	Depth      string `json:"depth,omitempty" validate:"omitempty,oneof=basic standard comprehensive expert"`
}

// CompareRequest asks for a structural comparison of two recordings.
type CompareRequest struct {
	TranscriptA string `json:"transcript_a" validate:"required"`
	TranscriptB string `json:"transcript_b" validate:"required"`
}
