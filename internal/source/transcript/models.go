package transcript

// apiResponse represents the transcript provider response structure.
type apiResponse struct {
	Transcript *[]Segment `json:"transcript"`
	Error      *apiError  `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Segment is one transcript fragment. Offset is a string-encoded number of
// seconds; provider order is not guaranteed.
type Segment struct {
	Text     string `json:"text"`
	Offset   string `json:"offset"`
	Duration string `json:"duration"`
}
